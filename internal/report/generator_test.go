package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/storage"
)

type fakePrinter struct {
	html string
	err  error
}

func (f *fakePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func sampleExport() *storage.Export {
	neg := &models.Post{PostID: "dc_1", Platform: "dcinside", Title: "해설 <오류>", URL: "https://gall.dcinside.com/x?id=leet&no=1"}
	neg.SetNegativeMatches([]string{"해설 오류", "논란"})
	ok := &models.Post{PostID: "orbi_1", Platform: "orbi", Title: "평범한 질문"}
	ok.SetNegativeMatches(nil)
	results := []storage.PlatformResults{
		{Platform: "orbi", Posts: []*models.Post{ok}},
		{Platform: "dcinside", Posts: []*models.Post{neg}},
	}
	return &storage.Export{
		CollectionDatetime: "2024-08-01T09:30:15",
		Settings:           storage.Settings{Platforms: []string{"orbi", "dcinside"}, KeywordCount: 2, FetchContent: true},
		Summary:            storage.Summarize(results),
		Posts:              storage.Flatten(results),
	}
}

func TestHTML(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	html, err := g.HTML(sampleExport())
	require.NoError(t, err)

	assert.Contains(t, html, "해설 &lt;오류&gt;")
	assert.Contains(t, html, "해설 오류, 논란")
	assert.Contains(t, html, "부정 게시글 (1)")
	assert.NotContains(t, html, "평범한 질문")
	// run order, not alphabetical
	assert.Less(t, strings.Index(html, "<td>orbi</td>"), strings.Index(html, "<td>dcinside</td>"))
}

func TestHTMLEmptyExport(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	html, err := g.HTML(&storage.Export{Summary: storage.Summarize(nil)})
	require.NoError(t, err)
	assert.Contains(t, html, "부정 게시글 (0)")
}

func TestWriteHTMLAndPDF(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)
	jsonPath := filepath.Join(t.TempDir(), "results_20240801_093015.json")

	htmlPath, err := g.WriteHTML(sampleExport(), jsonPath)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(jsonPath, ".json")+".html", htmlPath)
	assert.FileExists(t, htmlPath)

	printer := &fakePrinter{}
	pdfPath, err := g.WritePDF(context.Background(), printer, sampleExport(), jsonPath)
	require.NoError(t, err)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Contains(t, printer.html, "해설 비판 수집 결과")

	_, err = g.WritePDF(context.Background(), &fakePrinter{err: errors.New("no browser")}, sampleExport(), jsonPath)
	assert.ErrorContains(t, err, "no browser")
}
