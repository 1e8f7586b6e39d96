package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/storage"
)

type stubSource struct {
	export *storage.Export
	files  []string
	err    error
}

func (s *stubSource) LatestResults() (*storage.Export, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	// handlers filter in place; hand out a copy
	cp := *s.export
	return &cp, "results.json", nil
}

func (s *stubSource) ResultFiles() ([]string, error) {
	return s.files, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, src ResultSource, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	New(src, zaptest.NewLogger(t).Sugar()).Router().ServeHTTP(w, req)
	return w
}

func sampleExport() *storage.Export {
	neg := &models.Post{PostID: "dc_1", Platform: "dcinside", Title: "해설 오류"}
	neg.SetNegativeMatches([]string{"해설 오류"})
	ok := &models.Post{PostID: "orbi_1", Platform: "orbi", Title: "질문"}
	ok.SetNegativeMatches(nil)
	results := []storage.PlatformResults{
		{Platform: "dcinside", Posts: []*models.Post{neg}},
		{Platform: "orbi", Posts: []*models.Post{ok}},
	}
	return &storage.Export{
		CollectionDatetime: "2024-08-01T09:30:15",
		Settings:           storage.Settings{Platforms: []string{"dcinside", "orbi"}, KeywordCount: 1},
		Summary:            storage.Summarize(results),
		Posts:              storage.Flatten(results),
	}
}

func TestHealth(t *testing.T) {
	w := get(t, &stubSource{}, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestLatestResultsFilters(t *testing.T) {
	src := &stubSource{export: sampleExport()}

	tests := []struct {
		name  string
		path  string
		posts []string
	}{
		{"all", "/results/latest", []string{"dc_1", "orbi_1"}},
		{"platform", "/results/latest?platform=orbi", []string{"orbi_1"}},
		{"negative", "/results/latest?negative=true", []string{"dc_1"}},
		{"both", "/results/latest?platform=orbi&negative=1", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, src, tt.path)
			require.Equal(t, http.StatusOK, w.Code)

			var export storage.Export
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
			ids := []string{}
			for _, p := range export.Posts {
				ids = append(ids, p.PostID)
			}
			assert.Equal(t, tt.posts, ids)
			assert.Equal(t, 2, export.Summary.TotalCollected)
		})
	}
}

func TestLatestResultsBadFlag(t *testing.T) {
	w := get(t, &stubSource{export: sampleExport()}, "/results/latest?negative=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestResultsMissing(t *testing.T) {
	w := get(t, &stubSource{err: storage.ErrNoResults}, "/results/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, &stubSource{err: errors.New("disk gone")}, "/results/latest/summary")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLatestSummary(t *testing.T) {
	w := get(t, &stubSource{export: sampleExport()}, "/results/latest/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Summary storage.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.TotalNegative)
	assert.Equal(t, storage.PlatformSummary{Collected: 1, Negative: 0}, body.Summary.Platforms["orbi"])
}

func TestListResultsAgainstStore(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir, nil).WithClock(func() time.Time { return time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC) })

	w := get(t, store, "/results")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"files":[]}`, w.Body.String())

	_, _, err := store.SaveCombinedResults(nil, storage.Settings{})
	require.NoError(t, err)

	w = get(t, store, "/results")
	assert.JSONEq(t, `{"files":["results_20240801_000000.json"]}`, w.Body.String())

	w = get(t, store, "/results/latest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_collected":0`)
}
