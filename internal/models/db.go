package models

import (
	"time"
)

// PostRecord is a Post as stored by the database sink.
type PostRecord struct {
	Post
	RunID       string    `json:"run_id"`
	CollectedAt time.Time `json:"collected_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPostRecord stamps a post with the run that produced it.
func NewPostRecord(p *Post, runID string, collectedAt time.Time) PostRecord {
	return PostRecord{
		Post:        *p,
		RunID:       runID,
		CollectedAt: collectedAt,
		UpdatedAt:   collectedAt,
	}
}
