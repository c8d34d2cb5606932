// Package matching implements deterministic fuzzy string matching used
// to join community names against independently curated survey tables.
// Scores are on a 0..100 scale; callers decide the acceptance threshold.
package matching

import (
	"sort"
	"strings"
	"unicode"
)

// Match is a scored candidate returned by ExtractOne.
type Match struct {
	Value string
	Score int
}

// Matcher scores string similarity. It is stateless and safe for reuse.
type Matcher struct{}

// New constructs a Matcher.
func New() *Matcher {
	return &Matcher{}
}

// ExtractOne returns the best-matching candidate from the pool and its
// score. Ties resolve to the earliest candidate, so identical inputs
// always produce identical results. An empty pool scores zero.
func (m *Matcher) ExtractOne(query string, pool []string) Match {
	if len(pool) == 0 {
		return Match{}
	}
	best := Match{Value: pool[0], Score: m.Score(query, pool[0])}
	for _, candidate := range pool[1:] {
		if score := m.Score(query, candidate); score > best.Score {
			best = Match{Value: candidate, Score: score}
		}
	}
	return best
}

// Score returns the similarity of two strings: the better of the plain
// ratio and the token-sort ratio, so word order does not penalize names
// like "Census Area, Northern" vs "Northern Census Area".
func (m *Matcher) Score(a, b string) int {
	plain := Ratio(normalize(a), normalize(b))
	sorted := Ratio(tokenSort(a), tokenSort(b))
	if sorted > plain {
		return sorted
	}
	return plain
}

// Ratio is the edit-distance similarity of two strings scaled to
// 0..100. Substitutions cost two (one delete plus one insert), which
// makes the score equal to twice the matched length over the combined
// length, the conventional sequence-matcher ratio.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	dist := indelDistance(ra, rb)
	total := len(ra) + len(rb)
	return int(float64(total-dist)/float64(total)*100 + 0.5)
}

// normalize lowercases, strips non-alphanumeric runes and collapses
// whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSort(s string) string {
	tokens := strings.Fields(normalize(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func indelDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 2
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
