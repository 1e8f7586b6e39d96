package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-critique-crawler/internal/models"
)

func TestUpsertArgs(t *testing.T) {
	at := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	rec := models.NewPostRecord(&models.Post{
		PostID:   "dc_leet_1",
		Platform: "dcinside",
		Title:    "해설 오류",
		URL:      "https://gall.dcinside.com/x",
	}, "run-1", at)

	args := upsertArgs(rec)
	require.Len(t, args, strings.Count(upsertPost, ", $")+1)
	assert.Equal(t, "dc_leet_1", args[0])
	assert.Equal(t, []string{}, args[10])
	assert.Equal(t, []string{}, args[11])
	assert.Equal(t, "run-1", args[13])
	assert.Equal(t, at, args[14])
}

// TestSavePostsIntegration runs against a real database when
// TEST_DATABASE_URL is set.
func TestSavePostsIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	repo, err := ConnectDB(ctx, dsn)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.EnsureSchema(ctx))

	p := &models.Post{PostID: "test_it_1", Platform: "orbi", Title: "t", URL: "u", SearchKeywords: []string{"a"}}
	p.SetNegativeMatches([]string{"논란"})
	n, err := repo.SavePosts(ctx, []models.PostRecord{models.NewPostRecord(p, "run-it", time.Now())})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := repo.CountNegative(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts["orbi"], 1)
}
