package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Aashish23092/kyc-document-verification/cache"
	"github.com/Aashish23092/kyc-document-verification/client"
	"github.com/Aashish23092/kyc-document-verification/config"
	"github.com/Aashish23092/kyc-document-verification/metrics"
)

// NewExtractorFromConfig wires the OCR engines, the field parser and the
// optional Redis cache named by cfg. The returned cleanup releases clients.
func NewExtractorFromConfig(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*OCRExtractor, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	recognizers, err := newRecognizers(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var parser FieldParser = HeuristicParser{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := client.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { gemini.Close() })
		parser = FallbackParser{Primary: gemini, Fallback: HeuristicParser{}}
		log.Printf("Field parsing with Gemini model %s", cfg.GeminiModel)
	}

	opts := []OCRExtractorOption{
		WithMetrics(m),
		WithRetryPolicy(cfg.ExtractTimeout, cfg.ExtractRetries),
	}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		opts = append(opts, WithCache(cache.NewRedisCache(rdb, cfg.CacheTTL)))
		log.Printf("Extraction cache enabled (ttl %s)", cfg.CacheTTL)
	}

	chain := NewRecognizerChain(m, recognizers...)
	log.Printf("OCR engines: %s", chain.Name())

	extractor := NewOCRExtractor(NewDocumentLoader(NewPDFProcessor()), chain, parser, opts...)
	return extractor, cleanup, nil
}

func newRecognizers(ctx context.Context, cfg *config.Config, closers *[]func()) ([]TextRecognizer, error) {
	if len(cfg.OCREngines) == 0 {
		return nil, fmt.Errorf("no OCR engine configured")
	}

	var recognizers []TextRecognizer
	for _, engine := range cfg.OCREngines {
		switch engine {
		case "tesseract":
			tc := client.NewTesseractClient(cfg.TesseractDataPath, cfg.TesseractLanguage)
			*closers = append(*closers, tc.Close)
			recognizers = append(recognizers, tc)
		case "paddle":
			recognizers = append(recognizers, client.NewPaddleClient(cfg.PaddleAPIURL))
		case "vision":
			vc, err := client.NewVisionClient(ctx, cfg.VisionCredentialsFile)
			if err != nil {
				return nil, err
			}
			*closers = append(*closers, func() { vc.Close() })
			recognizers = append(recognizers, vc)
		default:
			return nil, fmt.Errorf("unknown OCR engine %q", engine)
		}
	}
	return recognizers, nil
}
