package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

// Metrics provides observability for extraction and verification.
type Metrics struct {
	// Rule outcomes by rule id and status
	RuleOutcome *prometheus.CounterVec

	// Person verdicts by overall status
	PersonOutcome *prometheus.CounterVec

	// Extraction latency by stage ("paddle", "tesseract", "vision", "gemini", "document")
	ExtractLatency *prometheus.HistogramVec

	// Extraction failures by stage
	ExtractErrors *prometheus.CounterVec

	// Extraction cache lookups by result ("hit", "miss")
	CacheLookups *prometheus.CounterVec

	ValidateLatency prometheus.Histogram
}

// New registers every metric on reg. Pass prometheus.DefaultRegisterer for the
// process-wide registry or a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RuleOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_rule_outcomes_total",
			Help: "Total rule outcomes by rule and status",
		}, []string{"rule", "status"}),

		PersonOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_person_outcomes_total",
			Help: "Total person verdicts by overall status",
		}, []string{"status"}),

		ExtractLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_extract_duration_seconds",
			Help:    "Duration of document extraction stages",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),

		ExtractErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_extract_errors_total",
			Help: "Total extraction failures by stage",
		}, []string{"stage"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_extract_cache_lookups_total",
			Help: "Extraction cache lookups by result",
		}, []string{"result"}),

		ValidateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_validate_duration_seconds",
			Help:    "Duration of cross-document validation per person",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

// ObserveResult records every rule outcome and the overall verdict of one person.
func (m *Metrics) ObserveResult(result dto.VerificationResult) {
	if m == nil {
		return
	}
	for id, outcome := range result.Rules {
		m.RuleOutcome.WithLabelValues(string(id), string(outcome.Status)).Inc()
	}
	m.PersonOutcome.WithLabelValues(string(result.OverallStatus)).Inc()
}

// ObserveExtract records the duration of one extraction stage and counts it
// as a failure when err is non-nil.
func (m *Metrics) ObserveExtract(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ExtractLatency.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.ExtractErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncrementCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveValidateLatency(d time.Duration) {
	if m != nil {
		m.ValidateLatency.Observe(d.Seconds())
	}
}
