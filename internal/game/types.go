package game

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/game/scoring"
	"github.com/gokatarajesh/picture-riddle/internal/metrics"
	"github.com/gokatarajesh/picture-riddle/internal/question"
)

// Phase is the lifecycle state of the game.
type Phase string

const (
	PhaseStart    Phase = "START"
	PhasePlaying  Phase = "PLAYING"
	PhaseFinished Phase = "FINISHED"
	PhaseStats    Phase = "STATS"
)

// Defaults for Options.
const (
	DefaultQuestionTime    = 15
	DefaultHintsPerSession = 3
)

var (
	ErrEmptyThemeSelection = errors.New("no themes selected")
	ErrInvalidPhase        = errors.New("action not allowed in current phase")
	ErrUnknownOption       = errors.New("option is not offered for the current question")
)

// Options configures a Controller.
type Options struct {
	QuestionTime    int           // countdown length in ticks
	TickInterval    time.Duration // 0 disables the internal ticker; call Tick manually
	HintsPerSession int
	Scoring         scoring.ScoringConfig
	Metrics         *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.QuestionTime <= 0 {
		o.QuestionTime = DefaultQuestionTime
	}
	if o.HintsPerSession <= 0 {
		o.HintsPerSession = DefaultHintsPerSession
	}
	return o
}

// Session is one play-through from start to finish or restart.
type Session struct {
	ID             uuid.UUID
	Score          int
	QuestionCount  int
	Current        *question.Question
	Asked          map[catalog.QuestionKey]struct{}
	HintsRemaining int
	HintsUsed      int
	HintRevealed   bool
	TimeLeft       int
	History        []scoring.AnswerRecord
}

func newSession(hints int) Session {
	return Session{
		ID:             uuid.New(),
		Asked:          make(map[catalog.QuestionKey]struct{}),
		HintsRemaining: hints,
	}
}

// Resolution is the outcome of answering (or timing out on) a question.
// Applied is false when the call was a no-op.
type Resolution struct {
	Applied  bool   `json:"applied"`
	Correct  bool   `json:"correct"`
	TimedOut bool   `json:"timed_out"`
	Points   int    `json:"points"`
	Answer   string `json:"answer,omitempty"`
}

// QuestionView is the presentation-safe view of the current question.
// Image and Answer stay empty until the hint is revealed or the question is answered.
type QuestionView struct {
	Theme          string   `json:"theme"`
	Riddle         string   `json:"riddle"`
	Options        []string `json:"options"`
	Answered       bool     `json:"answered"`
	SelectedOption *string  `json:"selected_option"`
	IsCorrect      *bool    `json:"is_correct"`
	HintRevealed   bool     `json:"hint_revealed"`
	Image          string   `json:"image,omitempty"`
	Answer         string   `json:"answer,omitempty"`
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Phase          Phase           `json:"phase"`
	SessionID      string          `json:"session_id"`
	Score          int             `json:"score"`
	QuestionCount  int             `json:"question_count"`
	HintsRemaining int             `json:"hints_remaining"`
	HintsUsed      int             `json:"hints_used"`
	TimeLeft       int             `json:"time_left"`
	Question       *QuestionView   `json:"question,omitempty"`
	SelectedThemes []string        `json:"selected_themes"`
	CanStart       bool            `json:"can_start"`
	Summary        scoring.Summary `json:"summary"`
}

// EventType names controller notifications.
type EventType string

const (
	EventState      EventType = "state"
	EventQuestion   EventType = "question"
	EventTick       EventType = "tick"
	EventResolved   EventType = "resolved"
	EventHint       EventType = "hint"
	EventFinished   EventType = "finished"
	EventStatsReset EventType = "stats_reset"
)

// Event is delivered to subscribers after every state change. Seq increases
// with every event the controller produces.
type Event struct {
	Seq        uint64      `json:"seq"`
	Type       EventType   `json:"type"`
	Snapshot   Snapshot    `json:"snapshot"`
	Resolution *Resolution `json:"resolution,omitempty"`
}
