package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AppMetrics holds every metric family the platform records.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Harvest
	HarvestsTotal     CounterVec
	HarvestDuration   HistogramVec
	HarvestedCases    CounterVec
	UpstreamDuration  HistogramVec
	UpstreamErrors    CounterVec
	StoreConflicts    CounterVec
	RouterFallbacks   CounterVec
	QueuedHarvests    CounterVec
	QueueProcessTotal CounterVec

	// Classification
	ClassifyRunsTotal CounterVec
	ClassifyUpdated   CounterVec

	// Adherence
	AdherenceTotal    CounterVec
	AdherenceScore    HistogramVec
	EmbeddingDuration HistogramVec

	// Text generation
	LLMRequestsTotal   CounterVec
	LLMRequestDuration HistogramVec

	// Caches
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Health
	HealthCheckStatus GaugeVec
}

var (
	HTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	UpstreamDurationBuckets = []float64{.1, .25, .5, 1, 2, 5, 10, 30}
	LLMDurationBuckets      = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	ScoreBuckets            = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
)

// NewAppMetrics registers the platform metric families on collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = c.RegisterCounter("http_requests_total", "HTTP requests served", "method", "route", "status_code")
	m.HTTPRequestDuration = c.RegisterHistogram("http_request_duration_seconds", "HTTP request latency", HTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = c.RegisterGauge("http_active_requests", "HTTP requests in flight", "method")

	m.HarvestsTotal = c.RegisterCounter("harvests_total", "Profile harvests by outcome", "court", "outcome")
	m.HarvestDuration = c.RegisterHistogram("harvest_duration_seconds", "Profile harvest latency", UpstreamDurationBuckets, "court")
	m.HarvestedCases = c.RegisterCounter("harvested_cases_total", "Case records written by the store writer", "kind")
	m.UpstreamDuration = c.RegisterHistogram("upstream_duration_seconds", "Case-record API call latency", UpstreamDurationBuckets, "court", "operation")
	m.UpstreamErrors = c.RegisterCounter("upstream_errors_total", "Case-record API failures", "court", "reason")
	m.StoreConflicts = c.RegisterCounter("store_conflicts_total", "Get-or-create races resolved by re-lookup", "entity")
	m.RouterFallbacks = c.RegisterCounter("router_fallbacks_total", "Identifiers routed to the fallback court", "reason")
	m.QueuedHarvests = c.RegisterCounter("queued_harvests_total", "Harvest requests published to the queue", "status")
	m.QueueProcessTotal = c.RegisterCounter("queue_messages_total", "Queue messages handled by the worker", "topic", "status")

	m.ClassifyRunsTotal = c.RegisterCounter("classify_runs_total", "Batch classification runs", "status")
	m.ClassifyUpdated = c.RegisterCounter("classify_updated_total", "Case labels rewritten by the classifier")

	m.AdherenceTotal = c.RegisterCounter("adherence_requests_total", "Adherence evaluations by outcome", "outcome")
	m.AdherenceScore = c.RegisterHistogram("adherence_score", "Adherence scores produced", ScoreBuckets)
	m.EmbeddingDuration = c.RegisterHistogram("embedding_duration_seconds", "Embedding batch latency", UpstreamDurationBuckets, "model")

	m.LLMRequestsTotal = c.RegisterCounter("llm_requests_total", "Text-generation requests", "model", "operation", "status")
	m.LLMRequestDuration = c.RegisterHistogram("llm_request_duration_seconds", "Text-generation latency", LLMDurationBuckets, "operation")

	m.CacheHitsTotal = c.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = c.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.HealthCheckStatus = c.RegisterGauge("health_check_status", "Component health (1=up, 0=down)", "component")

	return m
}

// NewNopMetrics returns metrics that record nothing.
func NewNopMetrics() *AppMetrics {
	c := nopCollector{}
	return NewAppMetrics(c)
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordHarvest records the outcome of one profile harvest.
func (m *AppMetrics) RecordHarvest(court string, ok bool, created, withText int, d time.Duration) {
	m.HarvestsTotal.WithLabelValues(court, outcome(ok)).Inc()
	m.HarvestDuration.WithLabelValues(court).Observe(d.Seconds())
	if created > 0 {
		m.HarvestedCases.WithLabelValues("new").Add(float64(created))
	}
	if withText > 0 {
		m.HarvestedCases.WithLabelValues("with_text").Add(float64(withText))
	}
}

// RecordUpstreamCall records one case-record API call.
func (m *AppMetrics) RecordUpstreamCall(court, operation string, d time.Duration) {
	m.UpstreamDuration.WithLabelValues(court, operation).Observe(d.Seconds())
}

// RecordLLMCall records one text-generation request.
func (m *AppMetrics) RecordLLMCall(model, operation string, ok bool, d time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(model, operation, outcome(ok)).Inc()
	m.LLMRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordCacheAccess counts a hit or a miss on the named cache.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordHealth sets the health gauge for a component.
func (m *AppMetrics) RecordHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

type nopCollector struct{}

func (nopCollector) RegisterCounter(string, string, ...string) CounterVec { return noopCounterVec{} }
func (nopCollector) RegisterGauge(string, string, ...string) GaugeVec     { return noopGaugeVec{} }
func (nopCollector) RegisterHistogram(string, string, []float64, ...string) HistogramVec {
	return noopHistogramVec{}
}
func (nopCollector) Handler() http.Handler { return http.NotFoundHandler() }
func (nopCollector) Registry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

//Personal.AI order the ending
