package scraper

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-critique-crawler/internal/browser"
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/dedup"
	"go-critique-crawler/internal/filter"
	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/models"
)

// Autosaver writes non-overwriting snapshots during the content phase.
type Autosaver interface {
	AutosaveBatch(posts []*models.Post, platform string) (string, error)
}

// Runner executes the shared crawl-and-filter sequence against any Scraper.
type Runner struct {
	filter        *filter.Filter
	delays        config.Delays
	autosaveEvery int
	saver         Autosaver
	log           *zap.SugaredLogger
	sleep         func(ctx context.Context, r config.Range)
}

func NewRunner(f *filter.Filter, cfg *config.Config, saver Autosaver, log *zap.SugaredLogger) *Runner {
	every := cfg.AutosaveEvery
	if every < 1 {
		every = 20
	}
	return &Runner{
		filter:        f,
		delays:        cfg.Delays,
		autosaveEvery: every,
		saver:         saver,
		log:           logger.OrNop(log),
		sleep:         browser.RandomDelay,
	}
}

// WithSleep replaces the delay function; tests use it to skip waiting.
func (r *Runner) WithSleep(sleep func(ctx context.Context, r config.Range)) *Runner {
	r.sleep = sleep
	return r
}

// Run logs in, searches every keyword, merges, drops ads, fetches bodies,
// tags negative posts and drops irrelevant ones. It always returns a set,
// possibly empty; failures below the platform level only reduce results.
func (r *Runner) Run(ctx context.Context, s Scraper, keywords []string, maxPages int, fetchContent bool) *dedup.PostSet {
	name := s.Name()
	log := r.log.With("platform", name)
	set := dedup.NewPostSet()

	log.Infof("🔐 Logging in to %s...", name)
	if !r.login(ctx, s) {
		log.Errorf("❌ Login failed for %s. Skipping platform.", name)
		return set
	}

	for _, keyword := range keywords {
		if ctx.Err() != nil {
			log.Warnf("⏹️ Stopping search: %v", ctx.Err())
			break
		}
		log.Infof("  🔍 Searching %q", keyword)
		posts, err := r.search(ctx, s, keyword, maxPages)
		if err != nil {
			log.Warnf("  ⚠️ Search %q failed: %v", keyword, err)
		} else {
			added := 0
			for _, p := range posts {
				if p == nil || p.PostID == "" {
					continue
				}
				if set.Merge(p, keyword) {
					added++
				}
			}
			log.Infof("  📋 %q: %d results, %d new (total %d)", keyword, len(posts), added, set.Len())
		}
		r.sleep(ctx, r.delays.BetweenSearches)
	}

	if removed := set.Retain(func(p *models.Post) bool { return !r.filter.IsAdPost(p.Title, p.Author) }); removed > 0 {
		log.Infof("🚫 Removed %d ad posts", removed)
	}

	if fetchContent {
		r.fetchAll(ctx, s, set, log)
	}

	for _, p := range set.Posts() {
		r.filter.TagNegative(p)
	}

	if removed := set.Retain(func(p *models.Post) bool { return r.filter.IsRelevant(p.Title, p.FullContent) }); removed > 0 {
		log.Infof("🧹 Removed %d off-topic posts", removed)
	}

	negative := set.Count(func(p *models.Post) bool { return p.IsNegative })
	log.Infof("✅ %s finished: %d posts, %d negative", name, set.Len(), negative)
	return set
}

func (r *Runner) fetchAll(ctx context.Context, s Scraper, set *dedup.PostSet, log *zap.SugaredLogger) {
	posts := set.Posts()
	log.Infof("📄 Fetching content for %d posts", len(posts))

	for i, p := range posts {
		if ctx.Err() != nil {
			log.Warnf("⏹️ Stopping content fetch at %d/%d: %v", i, len(posts), ctx.Err())
			for _, rest := range posts[i:] {
				rest.MarkContentUnavailable()
			}
			return
		}

		content, err := r.fetch(ctx, s, p.URL)
		switch {
		case err != nil:
			log.Debugf("    content %s failed: %v", p.PostID, err)
			p.MarkContentUnavailable()
		case strings.TrimSpace(content) == "":
			p.MarkContentUnavailable()
		default:
			p.SetContent(content)
		}
		// autosaves must carry the flags for the body just stored
		r.filter.TagNegative(p)
		r.sleep(ctx, r.delays.BetweenPosts)

		if (i+1)%r.autosaveEvery == 0 {
			r.autosave(posts[:i+1], s.Name(), log)
		}
	}
}

func (r *Runner) autosave(posts []*models.Post, platform string, log *zap.SugaredLogger) {
	if r.saver == nil {
		return
	}
	path, err := r.saver.AutosaveBatch(posts, platform)
	if err != nil {
		log.Warnf("⚠️ Autosave failed: %v", err)
		return
	}
	log.Infof("💾 Autosaved %d posts to %s", len(posts), path)
}

// login, search and fetch turn adapter panics into ordinary failures.

func (r *Runner) login(ctx context.Context, s Scraper) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("❌ %s login panicked: %v", s.Name(), rec)
			ok = false
		}
	}()
	return s.Login(ctx)
}

func (r *Runner) search(ctx context.Context, s Scraper, keyword string, maxPages int) (posts []*models.Post, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			posts, err = nil, fmt.Errorf("search panicked: %v", rec)
		}
	}()
	return s.Search(ctx, keyword, maxPages)
}

func (r *Runner) fetch(ctx context.Context, s Scraper, url string) (content string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			content, err = "", fmt.Errorf("fetch panicked: %v", rec)
		}
	}()
	return s.FetchContent(ctx, url)
}
