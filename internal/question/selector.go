package question

import (
	"math/rand/v2"
	"time"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
)

// Rand is the randomness the selector needs. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a PCG-backed source. A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type candidate struct {
	theme catalog.Theme
	item  catalog.Item
}

// Selector picks unseen questions and builds their answer sets.
// It is not safe for concurrent use; the game controller serialises access.
type Selector struct {
	catalog *catalog.Catalog
	rng     Rand
}

func NewSelector(c *catalog.Catalog, rng Rand) *Selector {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Selector{catalog: c, rng: rng}
}

// Select returns a question from the given themes whose key is not in excluding.
// An empty (or entirely unknown) theme list means the whole catalog.
func (s *Selector) Select(themes []string, excluding map[catalog.QuestionKey]struct{}) (Question, error) {
	var candidates []candidate
	for _, t := range s.eligible(themes) {
		for _, it := range t.Items {
			if _, asked := excluding[catalog.Key(t.ID, it.Name)]; asked {
				continue
			}
			candidates = append(candidates, candidate{theme: t, item: it})
		}
	}
	if len(candidates) == 0 {
		return Question{}, ErrExhausted
	}

	pick := candidates[s.rng.IntN(len(candidates))]
	return Question{
		Theme:   pick.theme.ID,
		Item:    pick.item,
		Options: s.buildOptions(pick.theme, pick.item.Name),
	}, nil
}

func (s *Selector) eligible(themes []string) []catalog.Theme {
	var out []catalog.Theme
	for _, id := range themes {
		if t, ok := s.catalog.Theme(id); ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return s.catalog.Themes()
	}
	return out
}

// buildOptions draws same-theme distractors first and tops up from the whole
// catalog. Catalogs with fewer than OptionsPerQuestion distinct names yield
// a shorter list rather than failing.
func (s *Selector) buildOptions(theme catalog.Theme, correct string) []string {
	options := make([]string, 0, OptionsPerQuestion)
	options = append(options, correct)
	chosen := map[string]struct{}{correct: {}}

	var sameTheme []string
	for _, it := range theme.Items {
		if _, ok := chosen[it.Name]; !ok {
			sameTheme = append(sameTheme, it.Name)
		}
	}
	for _, name := range sample(s.rng, sameTheme, OptionsPerQuestion-1) {
		options = append(options, name)
		chosen[name] = struct{}{}
	}

	if missing := OptionsPerQuestion - len(options); missing > 0 {
		var pool []string
		for _, name := range s.catalog.Names() {
			if _, ok := chosen[name]; !ok {
				pool = append(pool, name)
			}
		}
		options = append(options, sample(s.rng, pool, missing)...)
	}

	shuffle(s.rng, options)
	return options
}

// sample draws up to k elements without replacement using a partial Fisher–Yates pass.
func sample(rng Rand, pool []string, k int) []string {
	if k > len(pool) {
		k = len(pool)
	}
	work := append([]string(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}

// shuffle is an in-place Fisher–Yates permutation.
func shuffle(rng Rand, s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
