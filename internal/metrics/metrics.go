package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	UpdatesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of inbound updates by kind.",
		},
		[]string{"kind"},
	)
	TurnsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_turns_total",
			Help: "Total number of relayed turns by outcome.",
		},
		[]string{"outcome"},
	)
	ResponderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_responder_duration_seconds",
			Help:    "Duration of responder calls in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)
)

const (
	OutcomeAnswered = "answered"
	OutcomeFailed   = "failed"
	OutcomeGated    = "gated"
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(UpdatesCounter)
		prometheus.MustRegister(TurnsCounter)
		prometheus.MustRegister(ResponderDuration)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
