package scoring

import "github.com/gokatarajesh/picture-riddle/internal/stats"

// ScoringConfig holds the scoring constants.
type ScoringConfig struct {
	PointsPerCorrect int // default: 10
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{PointsPerCorrect: 10}
}

// Engine computes points for resolved questions.
type Engine struct {
	config ScoringConfig
}

// NewEngine creates a scoring engine; a zero config falls back to the defaults.
func NewEngine(config ScoringConfig) *Engine {
	if config.PointsPerCorrect <= 0 {
		config = DefaultScoringConfig()
	}
	return &Engine{config: config}
}

// CalculateScore returns the points for one answer. Wrong answers and timeouts earn nothing.
func (e *Engine) CalculateScore(isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return e.config.PointsPerCorrect
}

// AnswerRecord is one resolved question of a session.
type AnswerRecord struct {
	QuestionOrder int    `json:"question_order"`
	Theme         string `json:"theme"`
	Answer        string `json:"answer"`
	Selected      string `json:"selected,omitempty"`
	TimedOut      bool   `json:"timed_out"`
	IsCorrect     bool   `json:"is_correct"`
	ScoreEarned   int    `json:"score_earned"`
	TimeLeft      int    `json:"time_left"`
}

// Summary aggregates a session for the finished screen.
type Summary struct {
	Score      int `json:"score"`
	Answered   int `json:"answered"`
	Correct    int `json:"correct"`
	TimedOut   int `json:"timed_out"`
	Accuracy   int `json:"accuracy"`
	BestStreak int `json:"best_streak"`
}

// Summarize totals the answers of a session.
func Summarize(answers []AnswerRecord) Summary {
	var s Summary
	streak := 0
	for _, ans := range answers {
		s.Answered++
		s.Score += ans.ScoreEarned
		if ans.TimedOut {
			s.TimedOut++
		}
		if ans.IsCorrect {
			s.Correct++
			streak++
			if streak > s.BestStreak {
				s.BestStreak = streak
			}
		} else {
			streak = 0
		}
	}
	s.Accuracy = stats.Accuracy(s.Correct, s.Answered)
	return s
}
