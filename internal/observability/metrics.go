package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets       = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	generationDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60}
)

// Metrics holds all Prometheus metric instruments for the wizard service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Wizard metrics
	SessionsStartedTotal *prometheus.CounterVec
	StepAdvancesTotal    *prometheus.CounterVec
	StepRefusalsTotal    *prometheus.CounterVec
	SubmissionsTotal     *prometheus.CounterVec

	// Draft metrics
	DraftSavesTotal *prometheus.CounterVec
	DraftLoadsTotal *prometheus.CounterVec

	// Generation metrics
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram

	// Scrape metrics
	ScrapeFetchesTotal *prometheus.CounterVec
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fashionos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		// Wizard
		SessionsStartedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_wizard_sessions_started_total",
			Help: "Total number of wizard sessions started.",
		}, []string{"variant"}),
		StepAdvancesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_wizard_step_advances_total",
			Help: "Total number of forward step transitions.",
		}, []string{"variant", "step_id"}),
		StepRefusalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_wizard_step_refusals_total",
			Help: "Total number of forward transitions refused by validation.",
		}, []string{"variant", "step_id"}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_wizard_submissions_total",
			Help: "Total number of completed wizard submissions.",
		}, []string{"variant"}),

		// Drafts
		DraftSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_draft_saves_total",
			Help: "Total number of draft persistence writes.",
		}, []string{"status"}),
		DraftLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_draft_loads_total",
			Help: "Total number of draft loads.",
		}, []string{"status"}),

		// Generation
		GenerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_generations_total",
			Help: "Total number of AI generation attempts.",
		}, []string{"status"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fashionos_generation_duration_seconds",
			Help:    "AI generation duration in seconds.",
			Buckets: generationDurationBuckets,
		}),

		// Scrape
		ScrapeFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fashionos_scrape_fetches_total",
			Help: "Total number of venue page fetch attempts.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		// HTTP
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		// Wizard
		m.SessionsStartedTotal,
		m.StepAdvancesTotal,
		m.StepRefusalsTotal,
		m.SubmissionsTotal,
		// Drafts
		m.DraftSavesTotal,
		m.DraftLoadsTotal,
		// Generation
		m.GenerationsTotal,
		m.GenerationDuration,
		// Scrape
		m.ScrapeFetchesTotal,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordSessionStarted records a new wizard session.
func (m *Metrics) RecordSessionStarted(variant string) {
	m.SessionsStartedTotal.WithLabelValues(variant).Inc()
}

// RecordStepAdvance records a successful forward transition out of a step.
func (m *Metrics) RecordStepAdvance(variant, stepID string) {
	m.StepAdvancesTotal.WithLabelValues(variant, stepID).Inc()
}

// RecordStepRefusal records a forward transition refused by validation.
func (m *Metrics) RecordStepRefusal(variant, stepID string) {
	m.StepRefusalsTotal.WithLabelValues(variant, stepID).Inc()
}

// RecordSubmission records a completed submission.
func (m *Metrics) RecordSubmission(variant string) {
	m.SubmissionsTotal.WithLabelValues(variant).Inc()
}

// RecordDraftSave records a draft write with its outcome.
func (m *Metrics) RecordDraftSave(status string) {
	m.DraftSavesTotal.WithLabelValues(status).Inc()
}

// RecordDraftLoad records a draft load with its outcome.
func (m *Metrics) RecordDraftLoad(status string) {
	m.DraftLoadsTotal.WithLabelValues(status).Inc()
}

// RecordGeneration records an AI generation attempt.
func (m *Metrics) RecordGeneration(status string, duration time.Duration) {
	m.GenerationsTotal.WithLabelValues(status).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
}

// RecordScrapeFetch records a venue page fetch attempt with its outcome.
func (m *Metrics) RecordScrapeFetch(status string) {
	m.ScrapeFetchesTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
