// Command kycbatch verifies every person found in a data directory, or in a
// file of pre-extracted records, and writes the results as JSON.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/Aashish23092/kyc-document-verification/config"
	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/metrics"
	"github.com/Aashish23092/kyc-document-verification/service"
	"github.com/Aashish23092/kyc-document-verification/store"

	"github.com/prometheus/client_golang/prometheus"
)

const personPrefixLen = 4

func main() {
	dataDir := flag.String("data", "data/raw", "directory of document files named <person id prefix>...")
	outPath := flag.String("out", "outputs/results.json", "results file")
	recordsPath := flag.String("records", "", "JSON file of pre-extracted person records; skips OCR")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(ctx, cfg, *dataDir, *outPath, *recordsPath); err != nil {
		log.Fatalf("Batch verification failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, dataDir, outPath, recordsPath string) error {
	m := metrics.New(prometheus.NewRegistry())

	stores := store.MultiStore{store.NewJSONFileStore(outPath)}
	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		stores = append(stores, store.NewPostgresStore(db))
	}
	validator := service.NewValidator(cfg.Rules)

	var results []dto.PersonResult
	if recordsPath != "" {
		f, err := os.Open(recordsPath)
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := dto.DecodePersonRecords(f)
		if err != nil {
			return err
		}
		log.Printf("Verifying %d pre-extracted records from %s", len(records), recordsPath)

		results, err = service.NewKYCService(validator, nil, stores, m, cfg.Workers).VerifyRecords(ctx, records)
		if err != nil {
			return err
		}
	} else {
		people, err := service.GroupDocuments(dataDir, personPrefixLen, cfg.MaxDocuments)
		if err != nil {
			return err
		}
		log.Printf("Found %d people in %s", len(people), dataDir)

		extractor, cleanup, err := service.NewExtractorFromConfig(ctx, cfg, m)
		if err != nil {
			return err
		}
		defer cleanup()

		results, err = service.NewKYCService(validator, extractor, stores, m, cfg.Workers).ProcessBatch(ctx, people)
		if err != nil {
			return err
		}
	}

	verified := 0
	for _, r := range results {
		if r.OverallStatus == dto.StatusVerified {
			verified++
		}
	}
	log.Printf("Wrote %d results to %s (%d verified, %d failed)", len(results), outPath, verified, len(results)-verified)
	return nil
}
