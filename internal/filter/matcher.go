package filter

import (
	"sort"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/unicode/norm"
)

// patternSet finds which configured substrings occur in a text in one pass.
// Matching is byte-exact: case-sensitive, no tokenizing.
type patternSet struct {
	patterns []string
	matcher  *ahocorasick.Matcher
}

func newPatternSet(patterns []string) *patternSet {
	ps := &patternSet{}
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		p = norm.NFC.String(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		ps.patterns = append(ps.patterns, p)
	}
	if len(ps.patterns) > 0 {
		ps.matcher = ahocorasick.NewStringMatcher(ps.patterns)
	}
	return ps
}

// match returns every pattern contained in text, in configured order.
func (ps *patternSet) match(text string) []string {
	if ps.matcher == nil || text == "" {
		return nil
	}
	hits := ps.matcher.MatchThreadSafe([]byte(text))
	if len(hits) == 0 {
		return nil
	}
	sort.Ints(hits)
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		out = append(out, ps.patterns[i])
	}
	return out
}

func (ps *patternSet) any(text string) bool {
	return len(ps.match(text)) > 0
}
