package stats

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/metrics"
)

type stubStore struct {
	loaded  *Statistics
	loadErr error
	saveErr error
	saved   []Statistics
}

func (s *stubStore) Load(context.Context) (*Statistics, error) {
	return s.loaded, s.loadErr
}

func (s *stubStore) Save(_ context.Context, st Statistics) error {
	s.saved = append(s.saved, st.Clone())
	return s.saveErr
}

func newTestTracker(store Store) *Tracker {
	return NewTracker(store, zerolog.New(io.Discard), TrackerOptions{
		Metrics: metrics.New(prometheus.NewRegistry()),
	})
}

func TestTrackerLoad(t *testing.T) {
	loaded := sample()
	tr := newTestTracker(&stubStore{loaded: &loaded})
	require.NoError(t, tr.Load(context.Background()))
	assert.Equal(t, sample(), tr.Snapshot())

	tr = newTestTracker(&stubStore{})
	require.NoError(t, tr.Load(context.Background()))
	assert.Equal(t, Empty(), tr.Snapshot())
}

func TestTrackerLoadFailureFallsBackToEmpty(t *testing.T) {
	tr := newTestTracker(&stubStore{loadErr: errors.New("disk gone")})
	err := tr.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Empty(), tr.Snapshot())
}

func TestTrackerPersistsEveryChange(t *testing.T) {
	store := &stubStore{}
	tr := newTestTracker(store)

	tr.RecordAnswer("Animals", true)
	tr.RecordAnswer("Food", false)
	tr.RecordHint()

	require.Len(t, store.saved, 3)
	last := store.saved[2]
	assert.Equal(t, 2, last.TotalQuestions)
	assert.Equal(t, 1, last.CorrectAnswers)
	assert.Equal(t, 1, last.TotalHintsUsed)
	assert.Equal(t, last, tr.Snapshot())
}

func TestTrackerSaveFailureKeepsMemoryValue(t *testing.T) {
	store := &stubStore{saveErr: errors.New("read-only")}
	tr := newTestTracker(store)

	got := tr.RecordAnswer("Animals", true)
	assert.Equal(t, 1, got.TotalQuestions)
	assert.Equal(t, 1, tr.Snapshot().CorrectAnswers)
}

func TestTrackerReset(t *testing.T) {
	loaded := sample()
	store := &stubStore{loaded: &loaded}
	tr := newTestTracker(store)
	require.NoError(t, tr.Load(context.Background()))

	tr.Reset()
	assert.Equal(t, Empty(), tr.Snapshot())
	require.Len(t, store.saved, 1)
	assert.Equal(t, Empty(), store.saved[0])
}

func TestTrackerWithMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	tr := newTestTracker(store)
	tr.RecordAnswer("Music", true)
	tr.RecordHint()

	reopened := newTestTracker(store)
	require.NoError(t, reopened.Load(context.Background()))
	assert.Equal(t, tr.Snapshot(), reopened.Snapshot())
}

func TestBuildReport(t *testing.T) {
	themes := []catalog.Theme{
		{ID: "Animals", Label: "Animals"},
		{ID: "Food", Label: "Food"},
		{ID: "Music", Label: "Music"},
	}
	r := BuildReport(sample(), themes)

	assert.Equal(t, 58, r.Accuracy)
	require.Len(t, r.Themes, 3)
	assert.Equal(t, ThemeReport{Theme: "Animals", Label: "Animals", Attempted: 8, Correct: 5, Accuracy: 63, Band: BandFair}, r.Themes[0])
	assert.Equal(t, BandFair, r.Themes[1].Band, "2 of 4 is exactly 50%")
	assert.Equal(t, ThemeReport{Theme: "Music", Label: "Music", Band: BandPoor}, r.Themes[2])
	assert.Equal(t, BandGood, Band(70))
}
