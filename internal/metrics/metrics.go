package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Answer outcomes.
const (
	OutcomeCorrect = "correct"
	OutcomeWrong   = "wrong"
	OutcomeTimeout = "timeout"
)

// Metrics groups the game counters exposed on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	answers         *prometheus.CounterVec
	hints           prometheus.Counter
	sessions        prometheus.Counter
	finished        prometheus.Counter
	persistFailures *prometheus.CounterVec
}

// New registers the game counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riddle",
			Name:      "answers_total",
			Help:      "Resolved questions by theme and outcome.",
		}, []string{"theme", "outcome"}),
		hints: f.NewCounter(prometheus.CounterOpts{
			Namespace: "riddle",
			Name:      "hints_revealed_total",
			Help:      "Picture hints revealed.",
		}),
		sessions: f.NewCounter(prometheus.CounterOpts{
			Namespace: "riddle",
			Name:      "sessions_started_total",
			Help:      "Game sessions started.",
		}),
		finished: f.NewCounter(prometheus.CounterOpts{
			Namespace: "riddle",
			Name:      "sessions_exhausted_total",
			Help:      "Sessions that ran out of unseen questions.",
		}),
		persistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riddle",
			Name:      "stats_persistence_failures_total",
			Help:      "Statistics load/save failures.",
		}, []string{"op"}),
	}
}

func (m *Metrics) Answer(theme, outcome string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(theme, outcome).Inc()
}

func (m *Metrics) HintRevealed() {
	if m == nil {
		return
	}
	m.hints.Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionExhausted() {
	if m == nil {
		return
	}
	m.finished.Inc()
}

// PersistFailed counts a failed statistics operation ("load" or "save").
func (m *Metrics) PersistFailed(op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}
