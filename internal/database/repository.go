package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-critique-crawler/internal/models"
)

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Poolers in transaction mode (PgBouncer, Supabase) break the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS critique_posts (
	post_id          TEXT PRIMARY KEY,
	platform         TEXT NOT NULL,
	board_name       TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL,
	author           TEXT NOT NULL DEFAULT '',
	post_date        TEXT NOT NULL DEFAULT '',
	view_count       TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL,
	preview          TEXT NOT NULL DEFAULT '',
	full_content     TEXT NOT NULL DEFAULT '',
	search_keywords  TEXT[] NOT NULL DEFAULT '{}',
	matched_negative TEXT[] NOT NULL DEFAULT '{}',
	is_negative      BOOLEAN NOT NULL DEFAULT FALSE,
	run_id           TEXT NOT NULL,
	collected_at     TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS critique_posts_platform_idx ON critique_posts (platform);
CREATE INDEX IF NOT EXISTS critique_posts_negative_idx ON critique_posts (is_negative) WHERE is_negative;
`

// EnsureSchema creates the posts table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// upsertPost keeps the first collected_at of a post and refreshes the rest.
// Keywords from the new run are unioned with the stored ones.
const upsertPost = `
INSERT INTO critique_posts (
	post_id, platform, board_name, title, author, post_date, view_count, url,
	preview, full_content, search_keywords, matched_negative, is_negative,
	run_id, collected_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (post_id) DO UPDATE SET
	title            = EXCLUDED.title,
	board_name       = EXCLUDED.board_name,
	view_count       = EXCLUDED.view_count,
	preview          = EXCLUDED.preview,
	full_content     = CASE WHEN EXCLUDED.full_content <> '' THEN EXCLUDED.full_content ELSE critique_posts.full_content END,
	search_keywords  = ARRAY(SELECT DISTINCT unnest(critique_posts.search_keywords || EXCLUDED.search_keywords)),
	matched_negative = EXCLUDED.matched_negative,
	is_negative      = EXCLUDED.is_negative,
	run_id           = EXCLUDED.run_id,
	updated_at       = EXCLUDED.updated_at`

// SavePosts upserts every record in one batch and returns how many were written.
func (r *Repository) SavePosts(ctx context.Context, records []models.PostRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertPost, upsertArgs(rec)...)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("failed to save post %s: %w", records[i].PostID, err)
		}
	}
	return len(records), nil
}

func upsertArgs(rec models.PostRecord) []any {
	keywords := rec.SearchKeywords
	if keywords == nil {
		keywords = []string{}
	}
	negative := rec.MatchedNegative
	if negative == nil {
		negative = []string{}
	}
	return []any{
		rec.PostID, rec.Platform, rec.BoardName, rec.Title, rec.Author, rec.Date,
		rec.ViewCount, rec.URL, rec.Preview, rec.FullContent, keywords, negative,
		rec.IsNegative, rec.RunID, rec.CollectedAt, rec.UpdatedAt,
	}
}

// CountNegative returns how many stored posts are flagged negative, per platform.
func (r *Repository) CountNegative(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT platform, count(*) FROM critique_posts WHERE is_negative GROUP BY platform`)
	if err != nil {
		return nil, fmt.Errorf("failed to count negative posts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[platform] = n
	}
	return counts, rows.Err()
}
