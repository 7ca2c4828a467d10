package stats

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/picture-riddle/internal/metrics"
)

const defaultPersistTimeout = 2 * time.Second

// Tracker owns the in-memory statistics and writes every change through to the store.
// Store failures are logged and counted, never returned: the in-memory value stays authoritative.
type Tracker struct {
	mu      sync.Mutex
	store   Store
	current Statistics
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// TrackerOptions tunes persistence.
type TrackerOptions struct {
	PersistTimeout time.Duration
	Metrics        *metrics.Metrics
}

func NewTracker(store Store, logger zerolog.Logger, opts TrackerOptions) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	timeout := opts.PersistTimeout
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	return &Tracker{
		store:   store,
		current: Empty(),
		timeout: timeout,
		logger:  logger.With().Str("component", "stats").Logger(),
		metrics: opts.Metrics,
	}
}

// Load replaces the in-memory value with the stored one. An absent key or a
// failed read leaves zeroed statistics; the error is returned for the caller to log.
func (t *Tracker) Load(ctx context.Context) error {
	loaded, err := t.store.Load(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.metrics.PersistFailed("load")
		t.logger.Warn().Err(err).Msg("statistics load failed, starting from zero")
		t.current = Empty()
		return err
	}
	if loaded == nil {
		t.current = Empty()
		return nil
	}
	t.current = loaded.Clone()
	t.logger.Debug().
		Int("total_questions", t.current.TotalQuestions).
		Int("correct_answers", t.current.CorrectAnswers).
		Msg("statistics loaded")
	return nil
}

// RecordAnswer counts one resolution and persists the result.
func (t *Tracker) RecordAnswer(theme string, correct bool) Statistics {
	return t.update(func(s *Statistics) { s.RecordAnswer(theme, correct) })
}

// RecordHint counts one revealed hint and persists the result.
func (t *Tracker) RecordHint() Statistics {
	return t.update(func(s *Statistics) { s.RecordHint() })
}

// Reset zeroes every counter and persists the zeroed value.
func (t *Tracker) Reset() Statistics {
	out := t.update(func(s *Statistics) { *s = Empty() })
	t.logger.Info().Msg("statistics reset")
	return out
}

// Snapshot returns a copy of the current statistics.
func (t *Tracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.Clone()
}

func (t *Tracker) update(apply func(*Statistics)) Statistics {
	t.mu.Lock()
	apply(&t.current)
	snapshot := t.current.Clone()
	t.mu.Unlock()

	t.persist(snapshot)
	return snapshot
}

func (t *Tracker) persist(s Statistics) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.store.Save(ctx, s); err != nil {
		t.metrics.PersistFailed("save")
		t.logger.Warn().Err(err).Msg("statistics save failed")
	}
}
