package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
)

func items(names ...string) []catalog.Item {
	out := make([]catalog.Item, len(names))
	for i, n := range names {
		out[i] = catalog.Item{Name: n, Hint: "hint " + n, Image: "img/" + n}
	}
	return out
}

func testCatalog(t *testing.T, themes ...catalog.Theme) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(themes)
	require.NoError(t, err)
	return c
}

func abCatalog(t *testing.T) *catalog.Catalog {
	return testCatalog(t,
		catalog.Theme{ID: "A", Items: items("x", "y", "z", "w")},
		catalog.Theme{ID: "B", Items: items("p", "q")},
	)
}

func assertWellFormed(t *testing.T, q Question, wantLen int) {
	t.Helper()
	assert.Len(t, q.Options, wantLen)
	seen := map[string]int{}
	for _, o := range q.Options {
		seen[o]++
	}
	assert.Len(t, seen, len(q.Options), "options must be distinct")
	assert.Equal(t, 1, seen[q.Item.Name], "correct answer appears exactly once")
	assert.False(t, q.Answered)
	assert.Nil(t, q.SelectedOption)
	assert.Nil(t, q.IsCorrect)
}

func TestSelectExhaustsSelectedTheme(t *testing.T) {
	sel := NewSelector(abCatalog(t), NewRand(42))
	asked := map[catalog.QuestionKey]struct{}{}

	got := map[string]struct{}{}
	for i := 0; i < 4; i++ {
		q, err := sel.Select([]string{"A"}, asked)
		require.NoError(t, err)
		assert.Equal(t, "A", q.Theme)
		assertWellFormed(t, q, OptionsPerQuestion)
		for _, o := range q.Options {
			assert.Contains(t, []string{"x", "y", "z", "w"}, o, "theme A has enough distractors of its own")
		}

		_, dup := asked[q.Key()]
		assert.False(t, dup, "excluded key was reissued")
		asked[q.Key()] = struct{}{}
		got[q.Item.Name] = struct{}{}
		assert.Len(t, asked, i+1)
	}
	assert.Len(t, got, 4)

	_, err := sel.Select([]string{"A"}, asked)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSelectTopsUpFromCatalog(t *testing.T) {
	sel := NewSelector(abCatalog(t), NewRand(7))
	asked := map[catalog.QuestionKey]struct{}{}

	for i := 0; i < 2; i++ {
		q, err := sel.Select([]string{"B"}, asked)
		require.NoError(t, err)
		assertWellFormed(t, q, OptionsPerQuestion)

		other := "p"
		if q.Item.Name == "p" {
			other = "q"
		}
		assert.Contains(t, q.Options, other, "the only same-theme distractor is always used")
		asked[q.Key()] = struct{}{}
	}
}

func TestSelectEmptySelectionUsesWholeCatalog(t *testing.T) {
	sel := NewSelector(abCatalog(t), NewRand(3))
	asked := map[catalog.QuestionKey]struct{}{}
	themes := map[string]struct{}{}

	for i := 0; i < 6; i++ {
		q, err := sel.Select(nil, asked)
		require.NoError(t, err)
		asked[q.Key()] = struct{}{}
		themes[q.Theme] = struct{}{}
	}
	assert.Len(t, themes, 2)

	_, err := sel.Select([]string{"nope"}, asked)
	assert.ErrorIs(t, err, ErrExhausted, "unknown themes fall back to the full catalog, which is used up")
}

func TestSelectIssuesEveryPairWhenNamesContainSeparators(t *testing.T) {
	c := testCatalog(t,
		catalog.Theme{ID: "a-b", Items: items("c", "d")},
		catalog.Theme{ID: "a", Items: items("b-c", "e")},
	)
	sel := NewSelector(c, NewRand(9))
	asked := map[catalog.QuestionKey]struct{}{}

	issued := map[string]struct{}{}
	for i := 0; i < 4; i++ {
		q, err := sel.Select(nil, asked)
		require.NoError(t, err, "question %d", i+1)
		asked[q.Key()] = struct{}{}
		issued[q.Theme+"/"+q.Item.Name] = struct{}{}
	}
	assert.Len(t, issued, 4)

	_, err := sel.Select(nil, asked)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSelectDegenerateCatalog(t *testing.T) {
	c := testCatalog(t, catalog.Theme{ID: "tiny", Items: items("a", "b", "c")})
	sel := NewSelector(c, NewRand(1))

	q, err := sel.Select([]string{"tiny"}, nil)
	require.NoError(t, err)
	assertWellFormed(t, q, 3)
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)

	first, err := NewSelector(c, NewRand(99)).Select(nil, nil)
	require.NoError(t, err)
	second, err := NewSelector(c, NewRand(99)).Select(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCorrectAnswerPositionVaries(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	sel := NewSelector(c, NewRand(2024))

	positions := map[int]int{}
	for i := 0; i < 200; i++ {
		q, err := sel.Select(nil, nil)
		require.NoError(t, err)
		for idx, o := range q.Options {
			if o == q.Item.Name {
				positions[idx]++
			}
		}
	}
	assert.Len(t, positions, OptionsPerQuestion)
}

func TestResolveIsIdempotent(t *testing.T) {
	q := Question{Theme: "A", Item: catalog.Item{Name: "x"}, Options: []string{"x", "y", "z", "w"}}

	wrong := "y"
	correct, ok := q.Resolve(&wrong)
	assert.True(t, ok)
	assert.False(t, correct)
	require.NotNil(t, q.IsCorrect)
	assert.False(t, *q.IsCorrect)
	assert.Equal(t, "y", *q.SelectedOption)

	right := "x"
	correct, ok = q.Resolve(&right)
	assert.False(t, ok)
	assert.False(t, correct)
	assert.Equal(t, "y", *q.SelectedOption, "second resolution leaves the question unchanged")
}

func TestResolveTimeout(t *testing.T) {
	q := Question{Theme: "A", Item: catalog.Item{Name: "x"}}
	correct, ok := q.Resolve(nil)
	assert.True(t, ok)
	assert.False(t, correct)
	assert.Nil(t, q.SelectedOption)
	assert.True(t, q.Answered)

	var missing *Question
	_, ok = missing.Resolve(nil)
	assert.False(t, ok)
}
