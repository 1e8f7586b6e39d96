package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPost_AddKeyword(t *testing.T) {
	p := &Post{PostID: "dc_1"}

	assert.True(t, p.AddKeyword("해설 오류"))
	assert.True(t, p.AddKeyword("해설 이상"))
	assert.False(t, p.AddKeyword("해설 오류"), "duplicate keyword must not be appended")
	assert.False(t, p.AddKeyword(""))
	assert.Equal(t, []string{"해설 오류", "해설 이상"}, p.SearchKeywords)
}

func TestPost_SetContent_TruncatesPreviewByCharacters(t *testing.T) {
	p := &Post{Preview: "검색 결과 요약"}
	body := strings.Repeat("가", 350)

	p.SetContent(body)

	assert.Equal(t, body, p.FullContent)
	assert.Equal(t, PreviewLength, len([]rune(p.Preview)))
}

func TestPost_MarkContentUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		preview string
		want    string
	}{
		{name: "keeps existing preview", preview: "목록 미리보기", want: "목록 미리보기"},
		{name: "fills placeholder", preview: "", want: ContentUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{Preview: tt.preview}
			p.MarkContentUnavailable()
			assert.Equal(t, tt.want, p.Preview)
			assert.Empty(t, p.FullContent)
		})
	}
}

func TestPost_SetNegativeMatches(t *testing.T) {
	p := &Post{}

	p.SetNegativeMatches([]string{"논란"})
	assert.True(t, p.IsNegative)

	p.SetNegativeMatches(nil)
	assert.False(t, p.IsNegative)
	assert.NotNil(t, p.MatchedNegative)
	assert.Empty(t, p.MatchedNegative)
}
