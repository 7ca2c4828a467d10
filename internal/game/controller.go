package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/game/scoring"
	"github.com/gokatarajesh/picture-riddle/internal/metrics"
	"github.com/gokatarajesh/picture-riddle/internal/question"
	"github.com/gokatarajesh/picture-riddle/internal/stats"
)

// Controller owns the game and statistics state and serialises every
// transition: user actions and timer ticks all take the same lock.
type Controller struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	selector *question.Selector
	tracker  *stats.Tracker
	engine   *scoring.Engine
	opts     Options
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	phase     Phase
	session   Session
	selection map[string]struct{}
	timer     countdown
	seq       uint64

	// emitMu is taken before mu is released so events reach subscribers
	// in the order their transitions committed.
	emitMu      sync.Mutex
	subMu       sync.RWMutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// NewController builds a controller in the START phase with every theme selected.
func NewController(c *catalog.Catalog, sel *question.Selector, tracker *stats.Tracker, opts Options, logger zerolog.Logger) *Controller {
	opts = opts.withDefaults()
	ctrl := &Controller{
		catalog:     c,
		selector:    sel,
		tracker:     tracker,
		engine:      scoring.NewEngine(opts.Scoring),
		opts:        opts,
		logger:      logger.With().Str("component", "game").Logger(),
		metrics:     opts.Metrics,
		phase:       PhaseStart,
		session:     newSession(opts.HintsPerSession),
		selection:   make(map[string]struct{}),
		subscribers: make(map[int]func(Event)),
	}
	for _, id := range c.ThemeIDs() {
		ctrl.selection[id] = struct{}{}
	}
	return ctrl
}

// Subscribe registers fn for every event. Events are delivered after the state
// lock is released, in the goroutine that caused them and in Seq order; fn must
// not call controller actions. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	c.subMu.RLock()
	subs := make([]func(Event), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.subMu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// transition runs fn under the lock and publishes the events it produced.
func (c *Controller) transition(fn func() []Event) {
	c.mu.Lock()
	events := fn()
	if len(events) == 0 {
		c.mu.Unlock()
		return
	}
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()
	c.emit(events)
}

func (c *Controller) event(t EventType) Event {
	c.seq++
	return Event{Seq: c.seq, Type: t, Snapshot: c.snapshotLocked()}
}

// Start begins a new session with the current theme selection.
func (c *Controller) Start() error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhaseStart {
			err = fmt.Errorf("start from %s: %w", c.phase, ErrInvalidPhase)
			return nil
		}
		if len(c.selection) == 0 {
			err = ErrEmptyThemeSelection
			return nil
		}

		c.resetLocked()
		c.phase = PhasePlaying
		c.metrics.SessionStarted()
		c.logger.Info().
			Str("session_id", c.session.ID.String()).
			Strs("themes", c.selectedLocked()).
			Msg("session started")

		return c.nextQuestionLocked()
	})
	return err
}

// Next replaces an answered question with a new one, or finishes the session.
func (c *Controller) Next() error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhasePlaying || c.session.Current == nil || !c.session.Current.Answered {
			err = fmt.Errorf("next question: %w", ErrInvalidPhase)
			return nil
		}
		return c.nextQuestionLocked()
	})
	return err
}

// Restart abandons the session and returns to START.
func (c *Controller) Restart() {
	c.transition(func() []Event {
		c.timer.disarm()
		c.resetLocked()
		c.phase = PhaseStart
		c.logger.Info().Str("session_id", c.session.ID.String()).Msg("session restarted")
		return []Event{c.event(EventState)}
	})
}

// Answer resolves the pending question with option. It is a no-op (Applied=false)
// when no question is pending or the question was already resolved.
func (c *Controller) Answer(option string) (Resolution, error) {
	var (
		res Resolution
		err error
	)
	c.transition(func() []Event {
		q := c.session.Current
		if c.phase != PhasePlaying || q == nil || q.Answered {
			return nil
		}
		if !q.HasOption(option) {
			err = fmt.Errorf("%q: %w", option, ErrUnknownOption)
			return nil
		}
		var events []Event
		res, events = c.resolveLocked(&option)
		return events
	})
	return res, err
}

// Tick advances the armed countdown by one unit; at zero the question is
// resolved as a timeout. Without an armed countdown it does nothing.
func (c *Controller) Tick() {
	c.transition(func() []Event {
		return c.tickLocked(c.timer.generation)
	})
}

func (c *Controller) tickFromTimer(gen uint64) {
	c.transition(func() []Event {
		return c.tickLocked(gen)
	})
}

func (c *Controller) tickLocked(gen uint64) []Event {
	if !c.timer.armed || gen != c.timer.generation {
		return nil
	}
	q := c.session.Current
	if c.phase != PhasePlaying || q == nil || q.Answered {
		c.timer.disarm()
		return nil
	}

	c.session.TimeLeft--
	if c.session.TimeLeft > 0 {
		return []Event{c.event(EventTick)}
	}
	c.session.TimeLeft = 0
	_, events := c.resolveLocked(nil)
	return events
}

// resolveLocked applies the resolution contract; option is nil on timeout.
func (c *Controller) resolveLocked(option *string) (Resolution, []Event) {
	q := c.session.Current
	correct, ok := q.Resolve(option)
	if !ok {
		return Resolution{}, nil
	}
	c.timer.disarm()

	points := c.engine.CalculateScore(correct)
	c.session.Score += points

	record := scoring.AnswerRecord{
		QuestionOrder: c.session.QuestionCount,
		Theme:         q.Theme,
		Answer:        q.Item.Name,
		TimedOut:      option == nil,
		IsCorrect:     correct,
		ScoreEarned:   points,
		TimeLeft:      c.session.TimeLeft,
	}
	if option != nil {
		record.Selected = *option
	}
	c.session.History = append(c.session.History, record)

	c.tracker.RecordAnswer(q.Theme, correct)

	outcome := metrics.OutcomeWrong
	switch {
	case correct:
		outcome = metrics.OutcomeCorrect
	case option == nil:
		outcome = metrics.OutcomeTimeout
	}
	c.metrics.Answer(q.Theme, outcome)
	c.logger.Debug().
		Str("session_id", c.session.ID.String()).
		Str("theme", q.Theme).
		Str("outcome", outcome).
		Int("score", c.session.Score).
		Msg("question resolved")

	res := Resolution{
		Applied:  true,
		Correct:  correct,
		TimedOut: option == nil,
		Points:   points,
		Answer:   q.Item.Name,
	}
	ev := c.event(EventResolved)
	ev.Resolution = &res
	return res, []Event{ev}
}

// RevealHint uncovers the picture of the pending question, consuming one hint.
// It reports whether a hint was spent.
func (c *Controller) RevealHint() bool {
	var revealed bool
	c.transition(func() []Event {
		q := c.session.Current
		if c.phase != PhasePlaying || q == nil || q.Answered || c.session.HintRevealed || c.session.HintsRemaining <= 0 {
			return nil
		}
		c.session.HintRevealed = true
		c.session.HintsRemaining--
		c.session.HintsUsed++
		c.tracker.RecordHint()
		c.metrics.HintRevealed()
		revealed = true
		return []Event{c.event(EventHint)}
	})
	return revealed
}

// ToggleTheme flips a theme in the selection. Only allowed in START.
func (c *Controller) ToggleTheme(id string) error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhaseStart {
			err = fmt.Errorf("toggle theme: %w", ErrInvalidPhase)
			return nil
		}
		if !c.catalog.Has(id) {
			err = fmt.Errorf("%q: %w", id, catalog.ErrUnknownTheme)
			return nil
		}
		if _, ok := c.selection[id]; ok {
			delete(c.selection, id)
		} else {
			c.selection[id] = struct{}{}
		}
		return []Event{c.event(EventState)}
	})
	return err
}

func (c *Controller) SelectAllThemes() error {
	return c.setSelection(c.catalog.ThemeIDs())
}

func (c *Controller) DeselectAllThemes() error {
	return c.setSelection(nil)
}

func (c *Controller) setSelection(ids []string) error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhaseStart {
			err = fmt.Errorf("change selection: %w", ErrInvalidPhase)
			return nil
		}
		c.selection = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			c.selection[id] = struct{}{}
		}
		return []Event{c.event(EventState)}
	})
	return err
}

// OpenStats shows the statistics overlay. A pending question is abandoned
// unresolved and its countdown stops.
func (c *Controller) OpenStats() error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhaseStart && c.phase != PhasePlaying {
			err = fmt.Errorf("open stats: %w", ErrInvalidPhase)
			return nil
		}
		c.timer.disarm()
		c.phase = PhaseStats
		return []Event{c.event(EventState)}
	})
	return err
}

// CloseStats leaves the overlay for START with a fresh session.
func (c *Controller) CloseStats() error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhaseStats {
			err = fmt.Errorf("close stats: %w", ErrInvalidPhase)
			return nil
		}
		c.resetLocked()
		c.phase = PhaseStart
		return []Event{c.event(EventState)}
	})
	return err
}

// ResetStats zeroes and persists the lifetime statistics. Only allowed in STATS.
func (c *Controller) ResetStats() error {
	var err error
	c.transition(func() []Event {
		if c.phase != PhaseStats {
			err = fmt.Errorf("reset stats: %w", ErrInvalidPhase)
			return nil
		}
		c.tracker.Reset()
		return []Event{c.event(EventStatsReset)}
	})
	return err
}

// Statistics returns the lifetime aggregate.
func (c *Controller) Statistics() stats.Statistics {
	return c.tracker.Snapshot()
}

// Report builds the statistics view over every catalog theme.
func (c *Controller) Report() stats.Report {
	return stats.BuildReport(c.tracker.Snapshot(), c.catalog.Themes())
}

// State returns the current snapshot tagged with the Seq of the last event
// produced, so clients can discard older events that arrive afterwards.
func (c *Controller) State() Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Event{Seq: c.seq, Type: EventState, Snapshot: c.snapshotLocked()}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the countdown goroutine, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	c.timer.disarm()
	c.mu.Unlock()
}

func (c *Controller) nextQuestionLocked() []Event {
	c.timer.disarm()

	q, err := c.selector.Select(c.selectedLocked(), c.session.Asked)
	if errors.Is(err, question.ErrExhausted) {
		c.session.Current = nil
		c.session.HintRevealed = false
		c.session.TimeLeft = 0
		c.phase = PhaseFinished
		c.metrics.SessionExhausted()
		c.logger.Info().
			Str("session_id", c.session.ID.String()).
			Int("score", c.session.Score).
			Int("questions", c.session.QuestionCount).
			Msg("all questions completed")
		return []Event{c.event(EventFinished)}
	}

	c.session.Asked[q.Key()] = struct{}{}
	c.session.QuestionCount++
	c.session.Current = &q
	c.session.HintRevealed = false
	c.session.TimeLeft = c.opts.QuestionTime
	c.timer.arm(c.opts.TickInterval, c.tickFromTimer)

	c.logger.Debug().
		Str("session_id", c.session.ID.String()).
		Str("theme", q.Theme).
		Int("question", c.session.QuestionCount).
		Msg("question generated")
	return []Event{c.event(EventQuestion)}
}

func (c *Controller) resetLocked() {
	c.session = newSession(c.opts.HintsPerSession)
}

// selectedLocked lists the selected themes in catalog order.
func (c *Controller) selectedLocked() []string {
	out := make([]string, 0, len(c.selection))
	for _, id := range c.catalog.ThemeIDs() {
		if _, ok := c.selection[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:          c.phase,
		SessionID:      c.session.ID.String(),
		Score:          c.session.Score,
		QuestionCount:  c.session.QuestionCount,
		HintsRemaining: c.session.HintsRemaining,
		HintsUsed:      c.session.HintsUsed,
		TimeLeft:       c.session.TimeLeft,
		SelectedThemes: c.selectedLocked(),
		CanStart:       c.phase == PhaseStart && len(c.selection) > 0,
		Summary:        scoring.Summarize(c.session.History),
	}
	if q := c.session.Current; q != nil && c.phase == PhasePlaying {
		view := &QuestionView{
			Theme:        q.Theme,
			Riddle:       q.Item.Hint,
			Options:      append([]string(nil), q.Options...),
			Answered:     q.Answered,
			HintRevealed: c.session.HintRevealed,
		}
		if q.SelectedOption != nil {
			selected := *q.SelectedOption
			view.SelectedOption = &selected
		}
		if q.IsCorrect != nil {
			correct := *q.IsCorrect
			view.IsCorrect = &correct
		}
		if c.session.HintRevealed || q.Answered {
			view.Image = q.Item.Image
		}
		if q.Answered {
			view.Answer = q.Item.Name
		}
		s.Question = view
	}
	return s
}
