package stats

import (
	"encoding/json"
	"fmt"
	"math"
)

// DefaultKey is the fixed storage key of the statistics blob.
const DefaultKey = "nepGameStats"

// CategoryStats counts answers for one theme.
type CategoryStats struct {
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
}

// Statistics is the lifetime aggregate persisted between sessions.
type Statistics struct {
	TotalQuestions int                      `json:"totalQuestions"`
	CorrectAnswers int                      `json:"correctAnswers"`
	TotalHintsUsed int                      `json:"totalHintsUsed"`
	CategoryStats  map[string]CategoryStats `json:"categoryStats"`
}

// Empty returns zeroed statistics.
func Empty() Statistics {
	return Statistics{CategoryStats: map[string]CategoryStats{}}
}

// Clone deep-copies the category map.
func (s Statistics) Clone() Statistics {
	out := s
	out.CategoryStats = make(map[string]CategoryStats, len(s.CategoryStats))
	for k, v := range s.CategoryStats {
		out.CategoryStats[k] = v
	}
	return out
}

// RecordAnswer counts one resolved question for theme.
func (s *Statistics) RecordAnswer(theme string, correct bool) {
	if s.CategoryStats == nil {
		s.CategoryStats = map[string]CategoryStats{}
	}
	s.TotalQuestions++
	cs := s.CategoryStats[theme]
	cs.Attempted++
	if correct {
		s.CorrectAnswers++
		cs.Correct++
	}
	s.CategoryStats[theme] = cs
}

func (s *Statistics) RecordHint() {
	s.TotalHintsUsed++
}

// Accuracy is the rounded percentage of correct over attempted, 0 when nothing was attempted.
func Accuracy(correct, attempted int) int {
	if attempted <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(attempted) * 100))
}

// Encode serialises statistics in the storage format.
func Encode(s Statistics) ([]byte, error) {
	if s.CategoryStats == nil {
		s.CategoryStats = map[string]CategoryStats{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal statistics: %w", err)
	}
	return data, nil
}

// Decode parses the storage format. Missing fields decode as zero.
func Decode(data []byte) (Statistics, error) {
	var s Statistics
	if err := json.Unmarshal(data, &s); err != nil {
		return Statistics{}, fmt.Errorf("unmarshal statistics: %w", err)
	}
	if s.CategoryStats == nil {
		s.CategoryStats = map[string]CategoryStats{}
	}
	return s, nil
}
