package models

import "unicode/utf8"

// PreviewLength is the maximum number of characters kept in Post.Preview.
const PreviewLength = 300

// ContentUnavailable is the preview placeholder for posts whose body could not be fetched.
const ContentUnavailable = "[본문을 가져오지 못했습니다]"

// Post is one discovered community item and the metadata accumulated during a run.
type Post struct {
	PostID          string   `json:"post_id"`
	Platform        string   `json:"platform"`
	BoardName       string   `json:"board_name"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Date            string   `json:"date"`
	ViewCount       string   `json:"view_count"`
	URL             string   `json:"url"`
	Preview         string   `json:"preview"`
	FullContent     string   `json:"full_content"`
	SearchKeywords  []string `json:"search_keywords"`
	MatchedNegative []string `json:"matched_negative"`
	IsNegative      bool     `json:"is_negative"`
}

// HasKeyword reports whether keyword already surfaced this post.
func (p *Post) HasKeyword(keyword string) bool {
	for _, k := range p.SearchKeywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// AddKeyword appends keyword unless it is already present.
// Returns true when the list grew.
func (p *Post) AddKeyword(keyword string) bool {
	if keyword == "" || p.HasKeyword(keyword) {
		return false
	}
	p.SearchKeywords = append(p.SearchKeywords, keyword)
	return true
}

// SetContent stores a fetched body and refreshes the preview from it.
func (p *Post) SetContent(content string) {
	p.FullContent = content
	p.Preview = Truncate(content, PreviewLength)
}

// MarkContentUnavailable keeps the body empty and fills the preview placeholder
// only when the search result did not already provide one.
func (p *Post) MarkContentUnavailable() {
	p.FullContent = ""
	if p.Preview == "" {
		p.Preview = ContentUnavailable
	}
}

// SetNegativeMatches records matched negative patterns; IsNegative follows the list.
func (p *Post) SetNegativeMatches(matches []string) {
	if matches == nil {
		matches = []string{}
	}
	p.MatchedNegative = matches
	p.IsNegative = len(matches) > 0
}

// MatchText is the text the negative and relevance filters scan.
func (p *Post) MatchText() string {
	return p.FullContent + " " + p.Title
}

// Truncate cuts s to at most n characters (runes, not bytes).
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
