package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Answer("Animals", OutcomeCorrect)
	m.Answer("Animals", OutcomeCorrect)
	m.Answer("Food", OutcomeTimeout)
	m.HintRevealed()
	m.SessionStarted()
	m.SessionExhausted()
	m.PersistFailed("save")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.answers.WithLabelValues("Animals", OutcomeCorrect)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answers.WithLabelValues("Food", OutcomeTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hints))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.finished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("save")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Answer("Animals", OutcomeWrong)
		m.HintRevealed()
		m.SessionStarted()
		m.SessionExhausted()
		m.PersistFailed("load")
	})
}
