// Define an interface for all platform adapters
// Shared dependencies and helpers every adapter embeds

package scraper

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-critique-crawler/internal/browser"
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/models"
)

// ErrNoContent is returned by FetchContent when no content selector matched.
var ErrNoContent = errors.New("no content found")

// Scraper defines the interface that all platform adapters must implement
type Scraper interface {
	//Name is the platform key (navercafe, dcinside, ...)
	Name() string

	//Login prepares access. False aborts the platform run.
	Login(ctx context.Context) bool

	//Search returns posts for one keyword across pages 1..maxPages
	Search(ctx context.Context, keyword string, maxPages int) ([]*models.Post, error)

	//FetchContent returns the body text of one post
	FetchContent(ctx context.Context, url string) (string, error)
}

// Browser is the rendering surface adapters use. browser.Session implements it.
type Browser interface {
	Render(ctx context.Context, url string) (string, error)
	RenderFrame(ctx context.Context, url, frame string) (string, error)
	SubmitForm(ctx context.Context, form browser.LoginForm) error
	LoadCredentials(path string) bool
	SaveCredentials(path string)
	Capture(name, message string)
}

// Fetcher is a lightweight HTTP getter. fetcher.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Deps are the shared collaborators handed to every adapter constructor.
type Deps struct {
	Browser Browser
	Fetcher Fetcher
	Log     *zap.SugaredLogger
	// PagePause runs after every search page. Defaults to the configured
	// between-pages delay.
	PagePause func(ctx context.Context)
}

// WithPageDelay sets PagePause from a delay range.
func (d Deps) WithPageDelay(r config.Range) Deps {
	d.PagePause = func(ctx context.Context) { browser.RandomDelay(ctx, r) }
	return d
}

// Base carries what every adapter needs; adapters embed it.
type Base struct {
	Platform  string
	Prefix    string
	Cfg       config.Platform
	Selectors Selectors
	Browser   Browser
	Fetcher   Fetcher
	Log       *zap.SugaredLogger
	pause     func(ctx context.Context)
}

// NewBase merges configured selector overrides over the adapter defaults.
func NewBase(platform, prefix string, cfg config.Platform, defaults Selectors, deps Deps) Base {
	pause := deps.PagePause
	if pause == nil {
		pause = func(context.Context) {}
	}
	return Base{
		Platform:  platform,
		Prefix:    prefix,
		Cfg:       cfg,
		Selectors: defaults.Merge(cfg.Selectors),
		Browser:   deps.Browser,
		Fetcher:   deps.Fetcher,
		Log:       logger.OrNop(deps.Log).With("platform", platform),
		pause:     pause,
	}
}

func (b *Base) Name() string {
	return b.Platform
}

// ID builds the platform-prefixed post id.
func (b *Base) ID(nativeID string) string {
	return PostID(b.Prefix, nativeID)
}

// Paginate runs fetchPage for pages 1..maxPages with the between-pages pause.
func (b *Base) Paginate(ctx context.Context, keyword string, maxPages int, fetchPage PageFunc) []*models.Post {
	return Paginate(ctx, b.Log, keyword, maxPages, b.pause, fetchPage)
}
