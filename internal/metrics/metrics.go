package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signalbot_cycles_total", Help: "Evaluation cycles completed"},
	)
	SymbolsEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signalbot_symbols_evaluated_total", Help: "Symbol evaluations attempted"},
	)
	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbot_signals_emitted_total", Help: "Signals produced"},
		[]string{"direction"},
	)
	SoftFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbot_soft_failures_total", Help: "Per-symbol failures absorbed within a cycle"},
		[]string{"kind"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signalbot_cycle_duration_seconds",
			Help:    "Wall time of a full evaluation cycle",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, SymbolsEvaluated, SignalsEmitted, SoftFailures, CycleDuration)
}

// Serve exposes /metrics on addr in the background and returns the
// server so the caller can shut it down.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
