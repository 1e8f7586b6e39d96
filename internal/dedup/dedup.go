package dedup

import (
	"go-critique-crawler/internal/models"
)

// PostSet is a platform-scoped collection keyed by post_id that keeps
// first-seen insertion order through every filter stage.
// Not safe for concurrent use; a platform run owns its set exclusively.
type PostSet struct {
	order []string
	seen  map[string]*models.Post
}

func NewPostSet() *PostSet {
	return &PostSet{seen: make(map[string]*models.Post)}
}

// Merge inserts post under keyword, or records keyword on the post already
// stored under the same post_id. Returns true when the post is new.
func (s *PostSet) Merge(post *models.Post, keyword string) bool {
	if existing, ok := s.seen[post.PostID]; ok {
		existing.AddKeyword(keyword)
		return false
	}

	post.AddKeyword(keyword)
	s.seen[post.PostID] = post
	s.order = append(s.order, post.PostID)
	return true
}

// Get returns the post stored under id.
func (s *PostSet) Get(id string) (*models.Post, bool) {
	p, ok := s.seen[id]
	return p, ok
}

func (s *PostSet) Len() int {
	return len(s.order)
}

// Posts returns the stored posts in insertion order.
func (s *PostSet) Posts() []*models.Post {
	out := make([]*models.Post, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.seen[id])
	}
	return out
}

// Retain keeps the posts for which keep returns true, preserving order.
// Returns how many posts were removed.
func (s *PostSet) Retain(keep func(*models.Post) bool) int {
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if keep(s.seen[id]) {
			kept = append(kept, id)
			continue
		}
		delete(s.seen, id)
		removed++
	}
	s.order = kept
	return removed
}

// Count returns how many posts satisfy pred.
func (s *PostSet) Count(pred func(*models.Post) bool) int {
	n := 0
	for _, id := range s.order {
		if pred(s.seen[id]) {
			n++
		}
	}
	return n
}
