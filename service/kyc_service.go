package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/metrics"
	"github.com/Aashish23092/kyc-document-verification/store"
)

// KYCService runs extraction and cross-document validation for people and
// persists the verdicts.
type KYCService struct {
	validator *Validator
	extractor FieldExtractor
	store     store.ResultStore
	metrics   *metrics.Metrics
	workers   int
}

// NewKYCService creates a new KYCService instance. extractor and resultStore
// may be nil when only pre-extracted records are verified or nothing is persisted.
func NewKYCService(validator *Validator, extractor FieldExtractor, resultStore store.ResultStore, m *metrics.Metrics, workers int) *KYCService {
	if workers < 1 {
		workers = 1
	}
	return &KYCService{
		validator: validator,
		extractor: extractor,
		store:     resultStore,
		metrics:   m,
		workers:   workers,
	}
}

// PersonDocuments is one person's document set awaiting extraction.
type PersonDocuments struct {
	PersonID  string
	Documents []Document
}

// VerifyRecords validates pre-extracted records concurrently. Results keep the
// input order. Any malformed record fails the whole call before persisting.
func (s *KYCService) VerifyRecords(ctx context.Context, records []dto.PersonRecord) ([]dto.PersonResult, error) {
	results := make([]dto.PersonResult, len(records))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, record := range records {
		g.Go(func() error {
			result, err := s.verify(record)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.save(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessPerson extracts every document of one person, validates the set and
// persists the verdict.
func (s *KYCService) ProcessPerson(ctx context.Context, person PersonDocuments) (dto.PersonResult, error) {
	result, err := s.processPerson(ctx, person)
	if err != nil {
		return dto.PersonResult{}, err
	}
	if err := s.save(ctx, []dto.PersonResult{result}); err != nil {
		return dto.PersonResult{}, err
	}
	return result, nil
}

// ProcessBatch runs ProcessPerson for every group with bounded concurrency and
// saves all results together, in input order.
func (s *KYCService) ProcessBatch(ctx context.Context, people []PersonDocuments) ([]dto.PersonResult, error) {
	results := make([]dto.PersonResult, len(people))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, person := range people {
		g.Go(func() error {
			result, err := s.processPerson(gctx, person)
			if err != nil {
				return fmt.Errorf("person %s: %w", person.PersonID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.save(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *KYCService) processPerson(ctx context.Context, person PersonDocuments) (dto.PersonResult, error) {
	if s.extractor == nil {
		return dto.PersonResult{}, errors.New("no field extractor configured")
	}
	log.Printf("Processing %s with %d documents", person.PersonID, len(person.Documents))

	docs := make([]dto.ExtractedFields, len(person.Documents))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range person.Documents {
		g.Go(func() error {
			fields, err := s.extractor.Extract(gctx, doc)
			if errors.Is(err, dto.ErrUnsupportedFile) {
				return err
			}
			if err != nil {
				// an unreadable document contributes no values
				log.Printf("Extraction failed for %s: %v", doc.Name, err)
				fields = dto.NewExtractedFields()
			}
			docs[i] = fields
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.PersonResult{}, err
	}

	return s.verify(dto.PersonRecord{PersonID: person.PersonID, Documents: docs})
}

func (s *KYCService) verify(record dto.PersonRecord) (dto.PersonResult, error) {
	start := time.Now()
	result, err := s.validator.Validate(record)
	if err != nil {
		return dto.PersonResult{}, err
	}
	s.metrics.ObserveValidateLatency(time.Since(start))
	s.metrics.ObserveResult(result)

	log.Printf("Person %s: %s (%d failed rules)", record.PersonID, result.OverallStatus, result.FailedRules)
	return dto.NewPersonResult(record, result), nil
}

func (s *KYCService) save(ctx context.Context, results []dto.PersonResult) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, results); err != nil {
		return fmt.Errorf("failed to persist results: %w", err)
	}
	return nil
}
