package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	ingestChunks         prometheus.Histogram
	ingestDuration       prometheus.Histogram
	chatRequestsTotal    prometheus.Counter
	chatRetrievalHit     prometheus.Counter
	chatNoContextTotal   prometheus.Counter
	chatRetrievedChunks  prometheus.Histogram
	chatDuration         prometheus.Histogram
	sessionRestoresTotal prometheus.Counter
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docchat",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "docchat",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "docchat",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	ingestChunks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docchat",
			Subsystem:   "ingest",
			Name:        "chunks",
			Help:        "Distribution of chunks produced per ingested document.",
			Buckets:     []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			ConstLabels: constLabels,
		},
	)
	ingestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docchat",
			Subsystem:   "ingest",
			Name:        "duration_seconds",
			Help:        "Ingestion pipeline duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)
	chatRequestsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docchat",
			Subsystem:   "chat",
			Name:        "requests_total",
			Help:        "Total successful chat requests.",
			ConstLabels: constLabels,
		},
	)
	chatRetrievalHit := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docchat",
			Subsystem:   "chat",
			Name:        "retrieval_hit_total",
			Help:        "Chat requests with at least one retrieved chunk.",
			ConstLabels: constLabels,
		},
	)
	chatNoContextTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docchat",
			Subsystem:   "chat",
			Name:        "no_context_total",
			Help:        "Chat requests answered without retrieved context.",
			ConstLabels: constLabels,
		},
	)
	chatRetrievedChunks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docchat",
			Subsystem:   "chat",
			Name:        "retrieved_chunks",
			Help:        "Distribution of retrieved chunks per chat request.",
			Buckets:     []float64{0, 1, 2, 3, 5, 8},
			ConstLabels: constLabels,
		},
	)
	chatDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docchat",
			Subsystem:   "chat",
			Name:        "duration_seconds",
			Help:        "Chat request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)
	sessionRestoresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docchat",
			Subsystem:   "sessions",
			Name:        "restores_total",
			Help:        "Total sessions restored from the persistent store.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		ingestChunks,
		ingestDuration,
		chatRequestsTotal,
		chatRetrievalHit,
		chatNoContextTotal,
		chatRetrievedChunks,
		chatDuration,
		sessionRestoresTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		ingestChunks:         ingestChunks,
		ingestDuration:       ingestDuration,
		chatRequestsTotal:    chatRequestsTotal,
		chatRetrievalHit:     chatRetrievalHit,
		chatNoContextTotal:   chatNoContextTotal,
		chatRetrievedChunks:  chatRetrievedChunks,
		chatDuration:         chatDuration,
		sessionRestoresTotal: sessionRestoresTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/sessions/") {
		rest := strings.TrimPrefix(path, "/api/sessions/")
		if strings.HasSuffix(rest, "/restore") {
			return "/api/sessions/{session_id}/restore"
		}
		return "/api/sessions/{session_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordIngest(chunks int, duration time.Duration) {
	m.ingestChunks.Observe(float64(chunks))
	m.ingestDuration.Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordChat(retrievedChunks int, duration time.Duration) {
	m.chatRequestsTotal.Inc()
	m.chatRetrievedChunks.Observe(float64(retrievedChunks))
	m.chatDuration.Observe(duration.Seconds())

	if retrievedChunks > 0 {
		m.chatRetrievalHit.Inc()
		return
	}
	m.chatNoContextTotal.Inc()
}

func (m *HTTPServerMetrics) RecordSessionRestore() {
	m.sessionRestoresTotal.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
