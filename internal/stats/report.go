package stats

import "github.com/gokatarajesh/picture-riddle/internal/catalog"

// Accuracy bands used by the statistics view.
const (
	BandGood = "good"
	BandFair = "fair"
	BandPoor = "poor"
)

// Band classifies an accuracy percentage.
func Band(accuracy int) string {
	switch {
	case accuracy >= 70:
		return BandGood
	case accuracy >= 50:
		return BandFair
	default:
		return BandPoor
	}
}

type ThemeReport struct {
	Theme     string `json:"theme"`
	Label     string `json:"label"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
	Accuracy  int    `json:"accuracy"`
	Band      string `json:"band"`
}

// Report is the read-only statistics view.
type Report struct {
	TotalQuestions int           `json:"total_questions"`
	CorrectAnswers int           `json:"correct_answers"`
	TotalHintsUsed int           `json:"total_hints_used"`
	Accuracy       int           `json:"accuracy"`
	Themes         []ThemeReport `json:"themes"`
}

// BuildReport lists every catalog theme in order, including never-attempted ones.
func BuildReport(s Statistics, themes []catalog.Theme) Report {
	r := Report{
		TotalQuestions: s.TotalQuestions,
		CorrectAnswers: s.CorrectAnswers,
		TotalHintsUsed: s.TotalHintsUsed,
		Accuracy:       Accuracy(s.CorrectAnswers, s.TotalQuestions),
		Themes:         make([]ThemeReport, 0, len(themes)),
	}
	for _, t := range themes {
		cs := s.CategoryStats[t.ID]
		acc := Accuracy(cs.Correct, cs.Attempted)
		r.Themes = append(r.Themes, ThemeReport{
			Theme:     t.ID,
			Label:     t.Label,
			Attempted: cs.Attempted,
			Correct:   cs.Correct,
			Accuracy:  acc,
			Band:      Band(acc),
		})
	}
	return r
}
