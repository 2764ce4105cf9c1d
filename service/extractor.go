package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/metrics"
	"github.com/Aashish23092/kyc-document-verification/utils"
)

// ErrNoText is returned when no recognizer produced text for a document.
var ErrNoText = errors.New("no text recognized")

const (
	DefaultExtractTimeout = 60 * time.Second
	DefaultExtractRetries = 2
)

// FieldExtractor turns one document into its identity fields.
type FieldExtractor interface {
	Extract(ctx context.Context, doc Document) (dto.ExtractedFields, error)
}

// TextRecognizer runs OCR on a single encoded image.
type TextRecognizer interface {
	Name() string
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// FieldParser turns recognized text into identity fields.
type FieldParser interface {
	Parse(ctx context.Context, text string) (dto.ExtractedFields, error)
}

// ExtractionCache stores extracted fields keyed by document content hash.
type ExtractionCache interface {
	Get(ctx context.Context, key string) (dto.ExtractedFields, bool, error)
	Set(ctx context.Context, key string, fields dto.ExtractedFields) error
}

// RecognizerChain tries each recognizer in order; the first non-empty text wins.
type RecognizerChain struct {
	recognizers []TextRecognizer
	metrics     *metrics.Metrics
}

func NewRecognizerChain(m *metrics.Metrics, recognizers ...TextRecognizer) *RecognizerChain {
	return &RecognizerChain{recognizers: recognizers, metrics: m}
}

func (c *RecognizerChain) Name() string {
	names := make([]string, len(c.recognizers))
	for i, r := range c.recognizers {
		names[i] = r.Name()
	}
	return strings.Join(names, ",")
}

func (c *RecognizerChain) RecognizeText(ctx context.Context, image []byte) (string, error) {
	var errs []error
	for _, r := range c.recognizers {
		start := time.Now()
		text, err := r.RecognizeText(ctx, image)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrNoText
		}
		c.metrics.ObserveExtract(r.Name(), time.Since(start), err)

		if err == nil {
			return text, nil
		}
		log.Printf("%s OCR failed: %v", r.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", ErrNoText
	}
	return "", errors.Join(errs...)
}

// HeuristicParser extracts fields with label and pattern rules.
type HeuristicParser struct{}

func (HeuristicParser) Parse(_ context.Context, text string) (dto.ExtractedFields, error) {
	return utils.ParseKYCFields(text), nil
}

// FallbackParser overlays the primary parser's values on the fallback's. When
// the primary fails the fallback result is used alone.
type FallbackParser struct {
	Primary  FieldParser
	Fallback FieldParser
}

func (p FallbackParser) Parse(ctx context.Context, text string) (dto.ExtractedFields, error) {
	base, err := p.Fallback.Parse(ctx, text)
	if err != nil {
		return nil, err
	}

	primary, err := p.Primary.Parse(ctx, text)
	if err != nil {
		log.Printf("Primary field parser failed, using heuristic fields: %v", err)
		return base, nil
	}
	return base.Merge(primary), nil
}

// OCRExtractor is the production FieldExtractor: load, recognize, clean, parse.
type OCRExtractor struct {
	loader     *DocumentLoader
	recognizer TextRecognizer
	parser     FieldParser
	cache      ExtractionCache
	metrics    *metrics.Metrics

	timeout time.Duration
	retries int
	backoff func() backoff.BackOff
}

// OCRExtractorOption configures optional collaborators.
type OCRExtractorOption func(*OCRExtractor)

func WithCache(cache ExtractionCache) OCRExtractorOption {
	return func(e *OCRExtractor) { e.cache = cache }
}

func WithMetrics(m *metrics.Metrics) OCRExtractorOption {
	return func(e *OCRExtractor) { e.metrics = m }
}

// WithRetryPolicy sets the per-attempt timeout and the number of retries
// after the first attempt.
func WithRetryPolicy(timeout time.Duration, retries int) OCRExtractorOption {
	return func(e *OCRExtractor) {
		e.timeout = timeout
		e.retries = retries
	}
}

func NewOCRExtractor(loader *DocumentLoader, recognizer TextRecognizer, parser FieldParser, opts ...OCRExtractorOption) *OCRExtractor {
	e := &OCRExtractor{
		loader:     loader,
		recognizer: recognizer,
		parser:     parser,
		timeout:    DefaultExtractTimeout,
		retries:    DefaultExtractRetries,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			return b
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the fields of doc, consulting the cache first. Unsupported
// files fail immediately; recognition errors are retried with backoff.
func (e *OCRExtractor) Extract(ctx context.Context, doc Document) (dto.ExtractedFields, error) {
	key := cacheKey(doc.Data)
	if e.cache != nil {
		fields, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Extraction cache read failed for %s: %v", doc.Name, err)
		}
		e.metrics.IncrementCacheLookup(ok)
		if ok {
			log.Printf("Extraction cache hit for %s", doc.Name)
			return fields, nil
		}
	}

	start := time.Now()
	var fields dto.ExtractedFields
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		var err error
		fields, err = e.extractOnce(attemptCtx, doc)
		if errors.Is(err, dto.ErrUnsupportedFile) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("Extraction of %s failed, retrying in %s: %v", doc.Name, wait, err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(e.backoff(), uint64(e.retries)), ctx)
	err := backoff.RetryNotify(operation, policy, notify)
	e.metrics.ObserveExtract("document", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", doc.Name, err)
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, fields); err != nil {
			log.Printf("Extraction cache write failed for %s: %v", doc.Name, err)
		}
	}
	return fields, nil
}

func (e *OCRExtractor) extractOnce(ctx context.Context, doc Document) (dto.ExtractedFields, error) {
	content, err := e.loader.Load(doc)
	if err != nil {
		return nil, err
	}

	text := content.Text
	if strings.TrimSpace(text) == "" {
		var pages []string
		for idx, img := range content.Images {
			pageText, err := e.recognizer.RecognizeText(ctx, img)
			if err != nil {
				log.Printf("OCR failed for %s page %d: %v", doc.Name, idx+1, err)
				continue
			}
			pages = append(pages, pageText)
		}
		text = strings.Join(pages, "\n")
	}
	text = utils.CleanOCRText(text)

	if text == "" && content.QRFields == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w in %s", ErrNoText, doc.Name)
	}
	log.Printf("Recognized %d characters from %s", len(text), doc.Name)

	fields := dto.NewExtractedFields()
	if text != "" {
		parsed, err := e.parser.Parse(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fields: %w", err)
		}
		fields.Merge(parsed)
	}
	// QR values override parsed ones
	if content.QRFields != nil {
		fields.Merge(content.QRFields)
	}
	return fields, nil
}

func cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StaticExtractor serves pre-extracted fields by document name. It stands in
// for OCR in tests and in batch runs over already extracted records.
type StaticExtractor struct {
	Fields map[string]dto.ExtractedFields
}

func (s StaticExtractor) Extract(_ context.Context, doc Document) (dto.ExtractedFields, error) {
	fields, ok := s.Fields[doc.Name]
	if !ok {
		return nil, fmt.Errorf("no fixture for document %s", doc.Name)
	}
	return dto.NewExtractedFields().Merge(fields), nil
}
