package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loanwb"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
	rateLimited     *prometheus.CounterVec

	dscrCalculations    *prometheus.CounterVec
	documentTransitions *prometheus.CounterVec
	eventPublishTotal   *prometheus.CounterVec
	checklistProgress   *prometheus.HistogramVec

	*resilienceCollectors
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	rateLimited := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
		[]string{"service"},
	)
	dscrCalculations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dscr",
			Name:      "calculations_total",
			Help:      "DSCR evaluations served, by band.",
		},
		[]string{"service", "band"},
	)
	documentTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "transitions_total",
			Help:      "Document lifecycle commands applied, by action.",
		},
		[]string{"service", "action"},
	)
	eventPublishTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_total",
			Help:      "Loan events published, by action and status.",
		},
		[]string{"service", "action", "status"},
	)
	checklistProgress := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checklist",
			Name:      "progress_percent",
			Help:      "Checklist progress reported on reads.",
			Buckets:   []float64{0, 10, 25, 50, 75, 90, 100},
		},
		[]string{"service"},
	)
	resilience := newResilienceCollectors(service)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		rateLimited,
		dscrCalculations,
		documentTransitions,
		eventPublishTotal,
		checklistProgress,
	)
	resilience.register(registry)

	return &HTTPServerMetrics{
		registry:             registry,
		service:              service,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		rateLimited:          rateLimited,
		dscrCalculations:     dscrCalculations,
		documentTransitions:  documentTransitions,
		eventPublishTotal:    eventPublishTotal,
		checklistProgress:    checklistProgress,
		resilienceCollectors: resilience,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := routeLabel(r)
		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routeLabel prefers the matched mux pattern so ids do not explode label
// cardinality.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		if _, path, ok := strings.Cut(r.Pattern, " "); ok {
			return path
		}
		return r.Pattern
	}
	return normalizePath(r.URL.Path)
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{id}"
	case strings.HasPrefix(path, "/v1/loans/"):
		return "/v1/loans/{id}"
	case strings.HasPrefix(path, "/v1/lenders/"):
		return "/v1/lenders/{lender}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRateLimited() {
	m.rateLimited.WithLabelValues(m.service).Inc()
}

func (m *HTTPServerMetrics) RecordDSCR(band string) {
	if band == "" {
		band = "none"
	}
	m.dscrCalculations.WithLabelValues(m.service, band).Inc()
}

func (m *HTTPServerMetrics) RecordDocumentTransition(action string) {
	m.documentTransitions.WithLabelValues(m.service, action).Inc()
}

func (m *HTTPServerMetrics) RecordEventPublish(action string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventPublishTotal.WithLabelValues(m.service, action, status).Inc()
}

func (m *HTTPServerMetrics) ObserveChecklistProgress(percent float64) {
	m.checklistProgress.WithLabelValues(m.service).Observe(percent)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
