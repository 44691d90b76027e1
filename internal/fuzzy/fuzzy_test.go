package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullProcess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Harvard University", "harvard university"},
		{"  MIT  ", "mit"},
		{"Université de Montréal!", "universite de montreal"},
		{"U.C. Berkeley", "u c berkeley"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FullProcess(tt.in))
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "abc", "abc", 100},
		{"empty left", "", "abc", 0},
		{"empty right", "abc", "", 0},
		{"one substitution", "abcd", "abce", 75},
		{"kitten sitting", "kitten", "sitting", 62},
		{"disjoint", "abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestRatio_IsCaseSensitive(t *testing.T) {
	assert.Less(t, Ratio("MIT", "mit"), 100)
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"reordered words", "new york mets", "mets new york", 100},
		{"subset with qualifier", "Stanford U", "STANFORD", 100},
		{"case and punctuation", "M.I.T.", "m i t", 100},
		{"disjoint", "abc", "xyz", 0},
		{"empty", "", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b))
		})
	}
}

func TestTokenSetRatio_IsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"carnegie mellon", "mellon carnegie institute"},
		{"eth zurich", "ETH Zürich"},
		{"georgia tech", "georgia institute of technology"},
	}
	for _, p := range pairs {
		assert.Equal(t, TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestExtractOne(t *testing.T) {
	choices := []string{"HARVARD", "MIT", "STANFORD"}

	m, ok := ExtractOne("stanford", choices, Ratio)
	require.True(t, ok)
	assert.Equal(t, "STANFORD", m.Choice)
	assert.Equal(t, 2, m.Index)
	assert.Equal(t, 100, m.Score)
}

func TestExtractOne_EmptyChoices(t *testing.T) {
	_, ok := ExtractOne("anything", nil, Ratio)
	assert.False(t, ok)
}

func TestExtractOne_TieKeepsFirst(t *testing.T) {
	constant := func(string, string) int { return 50 }
	m, ok := ExtractOne("q", []string{"first", "second", "third"}, constant)
	require.True(t, ok)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "first", m.Choice)
}

func TestExtractOne_EmptyQueryStillMatches(t *testing.T) {
	m, ok := ExtractOne("", []string{"MIT"}, Ratio)
	require.True(t, ok)
	assert.Equal(t, 0, m.Score)
}

func TestScorerByName(t *testing.T) {
	s, ok := ScorerByName(ScorerRatio)
	require.True(t, ok)
	assert.Equal(t, 100, s("abc", "abc"))

	s, ok = ScorerByName(ScorerTokenSet)
	require.True(t, ok)
	assert.Equal(t, 100, s("b a", "a b"))

	_, ok = ScorerByName("levenshtein")
	assert.False(t, ok)
}

func TestFullProcess_Idempotent(t *testing.T) {
	for _, s := range []string{"Harvard University", "ETH Zürich", "u  c berkeley", " mit", "mit2", ""} {
		once := FullProcess(s)
		assert.Equal(t, once, FullProcess(once), "%q", s)
	}
}

func TestChoices_ProcessesCandidatesOnce(t *testing.T) {
	raw := []string{"HARVARD MEDICAL SCHOOL", "ÉCOLE POLYTECHNIQUE", "MIT", "STANFORD"}
	choices := NewChoices(raw)
	require.Equal(t, 4, choices.Len())

	var seen []string
	recording := func(q, c string) int {
		seen = append(seen, c)
		return TokenSetRatio(q, c)
	}
	m, ok := choices.ExtractOne("Ecole Polytechnique", recording)
	require.True(t, ok)
	assert.Equal(t, "ÉCOLE POLYTECHNIQUE", m.Choice)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, []string{"harvard medical school", "ecole polytechnique", "mit", "stanford"}, seen)

	for _, q := range []string{"harvard", "Stanford U", "M.I.T.", "polytechnique"} {
		for _, scorer := range []Scorer{Ratio, TokenSetRatio} {
			want, _ := ExtractOne(q, raw, scorer)
			got, _ := choices.ExtractOne(q, scorer)
			assert.Equal(t, want, got, "%q", q)
		}
	}

	_, ok = NewChoices(nil).ExtractOne("anything", Ratio)
	assert.False(t, ok)
}
