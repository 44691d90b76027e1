// Package fuzzy scores the similarity of short free-text names.
//
// Two scorers are provided. [Ratio] compares whole strings and suits
// person names. [TokenSetRatio] ignores word order and tolerates extra
// qualifiers, which suits institution names such as "Univ. of X at Y".
// Both return an integer in [0, 100] where 100 means identical after
// normalisation.
package fuzzy

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Scorer compares two strings and returns a similarity in [0, 100].
type Scorer func(a, b string) int

// Scorer names accepted by ScorerByName.
const (
	ScorerRatio    = "ratio"
	ScorerTokenSet = "token_set"
)

// ScorerByName returns the scorer registered under name.
func ScorerByName(name string) (Scorer, bool) {
	switch name {
	case ScorerRatio:
		return Ratio, true
	case ScorerTokenSet:
		return TokenSetRatio, true
	default:
		return nil, false
	}
}

// Match is the best candidate found by ExtractOne.
type Match struct {
	Choice string // the candidate as supplied by the caller
	Index  int    // position of Choice in the candidate slice
	Score  int
}

// FullProcess lower-cases s, strips accents, replaces every rune that is not
// a letter or digit with a space and trims the result.
func FullProcess(s string) string {
	if processed(s) {
		return s
	}
	decomposed := norm.NFKD.String(s)
	var sb strings.Builder
	sb.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

// Ratio returns the SequenceMatcher similarity of a and b scaled to
// [0, 100] and rounded half away from zero. Empty input scores 0.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(runes(a), runes(b))
	return int(math.Round(100 * m.Ratio()))
}

// TokenSetRatio compares the word sets of a and b. The shared words, sorted,
// form a common prefix that is compared against the shared words followed by
// each side's remaining words; the best of the three pairwise ratios wins.
// Identical word sets, or one being a subset of the other, score 100.
func TokenSetRatio(a, b string) int {
	pa, pb := FullProcess(a), FullProcess(b)
	if pa == "" || pb == "" {
		return 0
	}

	ta, tb := tokenSet(pa), tokenSet(pb)
	var shared, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	slices.Sort(shared)
	slices.Sort(onlyA)
	slices.Sort(onlyB)

	sect := strings.Join(shared, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(
		Ratio(sect, combinedA),
		Ratio(sect, combinedB),
		Ratio(combinedA, combinedB),
	)
}

// processed reports whether s is already FullProcess output in plain ASCII.
func processed(s string) bool {
	if s == "" {
		return true
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != ' ' {
			return false
		}
	}
	return true
}

// ExtractOne scores query against every choice after running both through
// FullProcess and returns the highest scoring choice. The first choice wins
// ties. It reports false only when choices is empty.
func ExtractOne(query string, choices []string, scorer Scorer) (Match, bool) {
	return NewChoices(choices).ExtractOne(query, scorer)
}

// Choices is a candidate list with FullProcess applied once, for scoring
// many queries against the same candidates.
type Choices struct {
	raw       []string
	processed []string
}

// NewChoices processes every candidate in choices.
func NewChoices(choices []string) Choices {
	c := Choices{raw: choices, processed: make([]string, len(choices))}
	for i, choice := range choices {
		c.processed[i] = FullProcess(choice)
	}
	return c
}

// Len returns the number of candidates.
func (c Choices) Len() int {
	return len(c.raw)
}

// ExtractOne behaves like the package-level ExtractOne over the candidates.
func (c Choices) ExtractOne(query string, scorer Scorer) (Match, bool) {
	if len(c.raw) == 0 {
		return Match{}, false
	}
	q := FullProcess(query)
	best := Match{Index: -1, Score: -1}
	for i, choice := range c.processed {
		score := scorer(q, choice)
		if score > best.Score {
			best = Match{Choice: c.raw[i], Index: i, Score: score}
		}
	}
	return best, true
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
