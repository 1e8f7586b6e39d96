package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors maps a field name (item, title, author, ...) to CSS selector
// fallbacks, tried in order.
type Selectors map[string][]string

// Field names used in selector tables.
const (
	FieldItem    = "item"
	FieldTitle   = "title"
	FieldLink    = "link"
	FieldAuthor  = "author"
	FieldDate    = "date"
	FieldViews   = "views"
	FieldBoard   = "board"
	FieldPreview = "preview"
	FieldContent = "content"
	FieldLogin   = "logged_in"
)

// Merge returns a copy of s where every field present in overrides replaces
// the default list.
func (s Selectors) Merge(overrides map[string][]string) Selectors {
	out := make(Selectors, len(s)+len(overrides))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range overrides {
		if len(v) > 0 {
			out[k] = v
		}
	}
	return out
}

// FirstMatch evaluates lookup for each candidate in order and returns the
// first non-empty result, or "" when none matches.
func FirstMatch(candidates []string, lookup func(candidate string) string) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(lookup(c)); v != "" {
			return v
		}
	}
	return ""
}

// Text returns the cleaned text of the first selector of field that matches inside sel.
func (s Selectors) Text(sel *goquery.Selection, field string) string {
	return FirstMatch(s[field], func(css string) string {
		return CleanText(sel.Find(css).First().Text())
	})
}

// Attr returns attribute attr of the first selector of field that matches inside sel.
func (s Selectors) Attr(sel *goquery.Selection, field, attr string) string {
	return FirstMatch(s[field], func(css string) string {
		v, _ := sel.Find(css).First().Attr(attr)
		return v
	})
}

// Block returns the multi-line text of the first selector of field that matches in doc.
func (s Selectors) Block(doc *goquery.Document, field string) string {
	return FirstMatch(s[field], func(css string) string {
		return BlockText(doc.Find(css).First())
	})
}

// Items returns the item nodes of the first item selector that matches anything.
func (s Selectors) Items(doc *goquery.Document) *goquery.Selection {
	for _, css := range s[FieldItem] {
		if found := doc.Find(css); found.Length() > 0 {
			return found
		}
	}
	return doc.Find("__none__")
}

// Has reports whether any selector of field matches in doc.
func (s Selectors) Has(doc *goquery.Document, field string) bool {
	for _, css := range s[field] {
		if doc.Find(css).Length() > 0 {
			return true
		}
	}
	return false
}
