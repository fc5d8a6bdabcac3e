package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phraser_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "phraser_http_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phraser_http_in_flight",
		Help: "In-flight HTTP requests",
	})
	RequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phraser_http_request_errors_total",
			Help: "Total errors by type",
		}, []string{"type"},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phraser_analyses_total",
			Help: "Analyzed texts by outcome",
		}, []string{"outcome"},
	)
	AnalysisLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "phraser_analysis_duration_seconds",
		Help:    "Time spent analyzing one text",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	PhraseMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phraser_phrase_matches_total",
			Help: "Texts in which a phrase was found, by phrase",
		}, []string{"phrase"},
	)
	SnapshotPhrases = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phraser_snapshot_phrases",
		Help: "Phrases in the active snapshot",
	})
	SnapshotBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phraser_snapshot_builds_total",
			Help: "Snapshot builds by result",
		}, []string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal, Latency, InFlight, RequestErrors,
		AnalysesTotal, AnalysisLatency, PhraseMatches, SnapshotPhrases, SnapshotBuilds,
	)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

// ObserveAnalysis records one Analyze call. phrases lists the matched phrase names.
func ObserveAnalysis(start time.Time, phrases []string, err error) {
	AnalysisLatency.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		AnalysesTotal.WithLabelValues("error").Inc()
	case len(phrases) > 0:
		AnalysesTotal.WithLabelValues("matched").Inc()
	default:
		AnalysesTotal.WithLabelValues("clean").Inc()
	}
	for _, p := range phrases {
		PhraseMatches.WithLabelValues(p).Inc()
	}
}

// ObserveSnapshot records a snapshot build; phrases is ignored on error.
func ObserveSnapshot(phrases int, err error) {
	if err != nil {
		SnapshotBuilds.WithLabelValues("error").Inc()
		return
	}
	SnapshotBuilds.WithLabelValues("ok").Inc()
	SnapshotPhrases.Set(float64(phrases))
}

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
		if rr.code >= 400 {
			RequestErrors.WithLabelValues(strconv.Itoa(rr.code / 100 * 100)).Inc()
		}
	})
}
