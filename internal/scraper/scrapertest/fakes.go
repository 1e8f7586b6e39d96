// Package scrapertest provides in-memory Browser and Fetcher doubles for
// adapter tests.
package scrapertest

import (
	"context"
	"errors"
	"fmt"

	"go-critique-crawler/internal/browser"
)

// ErrNotFound is returned for URLs without a registered page.
var ErrNotFound = errors.New("scrapertest: no page registered")

// FakeBrowser serves registered HTML by URL and records every call.
type FakeBrowser struct {
	Pages  map[string]string
	Frames map[string]map[string]string // url -> frame name -> html

	Rendered     []string
	FrameRenders []string
	Submitted    []browser.LoginForm
	SubmitErr    error
	Credentials  map[string]bool // path -> LoadCredentials result
	Saved        []string
	Captures     []string

	// AfterSubmit replaces Pages entries once a form is submitted.
	AfterSubmit map[string]string
}

func NewFakeBrowser() *FakeBrowser {
	return &FakeBrowser{
		Pages:       map[string]string{},
		Frames:      map[string]map[string]string{},
		Credentials: map[string]bool{},
		AfterSubmit: map[string]string{},
	}
}

func (b *FakeBrowser) Render(ctx context.Context, url string) (string, error) {
	b.Rendered = append(b.Rendered, url)
	html, ok := b.Pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return html, nil
}

func (b *FakeBrowser) RenderFrame(ctx context.Context, url, frame string) (string, error) {
	b.FrameRenders = append(b.FrameRenders, url+"#"+frame)
	html, ok := b.Frames[url][frame]
	if !ok {
		return "", fmt.Errorf("%w: %s#%s", ErrNotFound, url, frame)
	}
	return html, nil
}

// SetFrame registers html for frame of url.
func (b *FakeBrowser) SetFrame(url, frame, html string) {
	if b.Frames[url] == nil {
		b.Frames[url] = map[string]string{}
	}
	b.Frames[url][frame] = html
}

func (b *FakeBrowser) SubmitForm(ctx context.Context, form browser.LoginForm) error {
	b.Submitted = append(b.Submitted, form)
	if b.SubmitErr != nil {
		return b.SubmitErr
	}
	for url, html := range b.AfterSubmit {
		b.Pages[url] = html
	}
	return nil
}

func (b *FakeBrowser) LoadCredentials(path string) bool {
	return b.Credentials[path]
}

func (b *FakeBrowser) SaveCredentials(path string) {
	b.Saved = append(b.Saved, path)
}

func (b *FakeBrowser) Capture(name, message string) {
	b.Captures = append(b.Captures, name)
}

// FakeFetcher serves registered bodies by URL.
type FakeFetcher struct {
	Bodies  map[string]string
	Fetched []string
}

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{Bodies: map[string]string{}}
}

func (f *FakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.Fetched = append(f.Fetched, url)
	body, ok := f.Bodies[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return body, nil
}
