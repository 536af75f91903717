// Package title normalizes movie titles and matches them loosely against
// user queries.
package title

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the Jaro-Winkler score at which a query counts as a match.
const DefaultThreshold = 0.88

// Normalize lowercases, folds accents, turns "&" into "and", drops
// punctuation and leading articles, and collapses whitespace.
// "Léon: The Professional" becomes "leon professional".
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = foldAccents(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")

	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(clean(part))
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func clean(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}

// Similarity returns the Jaro-Winkler similarity of two normalized titles.
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(Normalize(a), Normalize(b)))
}

// Matcher reports whether a title matches a fixed query.
type Matcher struct {
	query     string
	words     int
	threshold float64
}

// NewMatcher prepares a matcher for query. A threshold <= 0 uses DefaultThreshold.
func NewMatcher(query string, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	q := Normalize(query)
	return &Matcher{query: q, words: len(strings.Fields(q)), threshold: threshold}
}

// Match is true when the normalized title contains the query, or when any
// run of words in the title of the query's length is similar enough to it.
// An empty query matches everything.
func (m *Matcher) Match(t string) bool {
	if m.query == "" {
		return true
	}
	norm := Normalize(t)
	if strings.Contains(norm, m.query) {
		return true
	}

	words := strings.Fields(norm)
	if len(words) <= m.words {
		return m.score(norm) >= m.threshold
	}
	for i := 0; i+m.words <= len(words); i++ {
		if m.score(strings.Join(words[i:i+m.words], " ")) >= m.threshold {
			return true
		}
	}
	return false
}

func (m *Matcher) score(candidate string) float64 {
	return float64(edlib.JaroWinklerSimilarity(m.query, candidate))
}
