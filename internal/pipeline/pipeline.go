// Package pipeline runs every enabled platform in order and exports the
// combined results.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-critique-crawler/internal/browser"
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/dedup"
	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/scraper"
	"go-critique-crawler/internal/storage"
)

// Builder returns the adapter for a platform key.
type Builder func(name string) (scraper.Scraper, error)

type Options struct {
	Platforms    []string
	Keywords     []string
	MaxPages     int
	FetchContent bool
	// RateLimits are logged next to each platform; they are not enforced.
	RateLimits map[string]int
}

type Result struct {
	Platforms []storage.PlatformResults
	CSVPath   string
	JSONPath  string
}

type Pipeline struct {
	runner  *scraper.Runner
	store   *storage.Store
	build   Builder
	between config.Range
	sleep   func(ctx context.Context, r config.Range)
	log     *zap.SugaredLogger
}

func New(runner *scraper.Runner, store *storage.Store, build Builder, between config.Range, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		runner:  runner,
		store:   store,
		build:   build,
		between: between,
		sleep:   browser.RandomDelay,
		log:     logger.OrNop(log),
	}
}

// WithSleep replaces the between-platforms delay; tests use it to skip waiting.
func (p *Pipeline) WithSleep(sleep func(ctx context.Context, r config.Range)) *Pipeline {
	p.sleep = sleep
	return p
}

// Run crawls each platform in turn. A platform that fails or panics
// contributes an empty result; only the final export can fail the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}
	p.log.Infof("🚀 Crawling %d platforms with %d keywords (max %d pages, content=%t)",
		len(opts.Platforms), len(opts.Keywords), opts.MaxPages, opts.FetchContent)

	for i, name := range opts.Platforms {
		if ctx.Err() != nil {
			p.log.Warnf("⏹️ Stopping before %s: %v", name, ctx.Err())
			break
		}

		p.log.Infof("\n▶️ [%d/%d] %s", i+1, len(opts.Platforms), name)
		if limit, ok := opts.RateLimits[name]; ok {
			p.log.Debugf("   advisory rate ceiling %d req/min", limit)
		}

		set, err := p.runPlatform(ctx, name, opts)
		if err != nil {
			p.log.Errorf("❌ %s failed: %v", name, err)
			set = dedup.NewPostSet()
		}

		if _, err := p.store.SavePlatformResults(set, name); err != nil {
			p.log.Warnf("⚠️ Could not save %s snapshot: %v", name, err)
		}
		result.Platforms = append(result.Platforms, storage.PlatformResults{Platform: name, Posts: set.Posts()})

		if i < len(opts.Platforms)-1 {
			p.sleep(ctx, p.between)
		}
	}

	settings := storage.Settings{
		Platforms:    opts.Platforms,
		KeywordCount: len(opts.Keywords),
		FetchContent: opts.FetchContent,
	}
	csvPath, jsonPath, err := p.store.SaveCombinedResults(result.Platforms, settings)
	if err != nil {
		return result, fmt.Errorf("export results: %w", err)
	}
	result.CSVPath, result.JSONPath = csvPath, jsonPath

	p.log.Infof("🏁 Done. %s / %s", csvPath, jsonPath)
	return result, nil
}

func (p *Pipeline) runPlatform(ctx context.Context, name string, opts Options) (set *dedup.PostSet, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			set, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	s, err := p.build(name)
	if err != nil {
		return nil, err
	}
	return p.runner.Run(ctx, s, opts.Keywords, opts.MaxPages, opts.FetchContent), nil
}

// Total is the number of posts across all platforms.
func (r *Result) Total() int {
	n := 0
	for _, pr := range r.Platforms {
		n += len(pr.Posts)
	}
	return n
}
