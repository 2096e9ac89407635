package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lyceo/charge-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the scheduling domain.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	auditWarnings   *prometheus.GaugeVec
	extractedTotal  prometheus.Counter
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summary_cache_hits_total",
		Help: "Total workload summary cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summary_cache_misses_total",
		Help: "Total workload summary cache misses",
	})

	auditWarnings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dst_schedule_warnings",
		Help: "Warnings raised by the latest DST schedule audit, by severity",
	}, []string{"severity"})

	extractedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dst_extracted_records_total",
		Help: "DST records synthesized by the text extractor",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, auditWarnings, extractedTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		auditWarnings:   auditWarnings,
		extractedTotal:  extractedTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveCache counts a summary cache lookup.
func (m *MetricsService) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordAudit publishes the warning counts of the latest schedule audit.
func (m *MetricsService) RecordAudit(audit models.ScheduleAudit) {
	if m == nil {
		return
	}
	counts := map[models.Severity]int{
		models.SeverityInfo:     0,
		models.SeverityLow:      0,
		models.SeverityMedium:   0,
		models.SeverityHigh:     0,
		models.SeverityCritical: 0,
	}
	for _, w := range audit.Warnings {
		counts[w.Severity]++
	}
	for severity, count := range counts {
		m.auditWarnings.WithLabelValues(string(severity)).Set(float64(count))
	}
}

// ObserveExtraction counts records synthesized by the text extractor.
func (m *MetricsService) ObserveExtraction(records int) {
	if m == nil || records <= 0 {
		return
	}
	m.extractedTotal.Add(float64(records))
}
