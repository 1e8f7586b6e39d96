package filter

import (
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/models"
)

// Filter holds the immutable keyword lists the pipeline filters with.
type Filter struct {
	negative  *patternSet
	adTitle   *patternSet
	adAuthor  *patternSet
	relevance *patternSet
}

// Lists are the inputs of a Filter.
type Lists struct {
	NegativePatterns []string
	AdTitle          []string
	AdAuthor         []string
	Context          []string
}

func New(l Lists) *Filter {
	return &Filter{
		negative:  newPatternSet(l.NegativePatterns),
		adTitle:   newPatternSet(l.AdTitle),
		adAuthor:  newPatternSet(l.AdAuthor),
		relevance: newPatternSet(l.Context),
	}
}

// FromConfig builds a Filter from the configured lists.
func FromConfig(cfg *config.Config) *Filter {
	return New(Lists{
		NegativePatterns: cfg.NegativePatterns,
		AdTitle:          cfg.AdTitleKeywords,
		AdAuthor:         cfg.AdAuthorKeywords,
		Context:          cfg.ContextKeywords,
	})
}

// MatchNegativePatterns returns the negative patterns contained in text.
// Never nil.
func (f *Filter) MatchNegativePatterns(text string) []string {
	m := f.negative.match(text)
	if m == nil {
		return []string{}
	}
	return m
}

// IsAdPost reports whether the title or the author hits an ad list.
func (f *Filter) IsAdPost(title, author string) bool {
	return f.adTitle.any(title) || f.adAuthor.any(author)
}

// IsRelevant reports whether at least one context keyword appears in title+content.
func (f *Filter) IsRelevant(title, content string) bool {
	return f.relevance.any(content + " " + title)
}

// TagNegative recomputes MatchedNegative and IsNegative from the post text.
func (f *Filter) TagNegative(p *models.Post) {
	p.SetNegativeMatches(f.MatchNegativePatterns(p.MatchText()))
}
