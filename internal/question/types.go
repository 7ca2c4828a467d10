package question

import (
	"errors"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
)

// OptionsPerQuestion is the size of a full answer set.
const OptionsPerQuestion = 4

// ErrExhausted signals that every question of the eligible themes was already asked.
var ErrExhausted = errors.New("no unseen questions remain")

// Question is the riddle currently in front of the player.
type Question struct {
	Theme          string       `json:"theme"`
	Item           catalog.Item `json:"item"`
	Options        []string     `json:"options"`
	Answered       bool         `json:"answered"`
	SelectedOption *string      `json:"selected_option"`
	IsCorrect      *bool        `json:"is_correct"`
}

// Key is the de-duplication key of the question.
func (q *Question) Key() catalog.QuestionKey {
	return catalog.Key(q.Theme, q.Item.Name)
}

// Resolve records the chosen option (nil on timeout). It returns ok=false and
// leaves the question untouched when it was already answered.
func (q *Question) Resolve(option *string) (correct bool, ok bool) {
	if q == nil || q.Answered {
		return false, false
	}
	correct = option != nil && *option == q.Item.Name
	if option != nil {
		chosen := *option
		q.SelectedOption = &chosen
	}
	q.Answered = true
	q.IsCorrect = &correct
	return correct, true
}

// HasOption reports whether option is one of the offered answers.
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
