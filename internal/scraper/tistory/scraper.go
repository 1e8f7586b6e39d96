// Search Tistory blogs through Daum blog search
// Each blog runs its own skin, so content extraction tries a list of
// known skin containers in order

package tistory

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/scraper"
)

const (
	Platform  = "tistory"
	prefix    = "tstory"
	searchURL = "https://search.daum.net/search"
)

var DefaultSelectors = scraper.Selectors{
	scraper.FieldItem:    {"ul.c-list-basic > li", "div.c-item-doc", "ul#blogResultUL > li"},
	scraper.FieldTitle:   {"div.item-title a", "strong.tit-g a", "a.f_link_b"},
	scraper.FieldLink:    {"div.item-title a", "strong.tit-g a", "a.f_link_b"},
	scraper.FieldAuthor:  {"a.item-writer", "span.txt_info.clickable", "a.f_url"},
	scraper.FieldDate:    {"span.gem-subinfo span.txt_info", "span.txt_info", "span.f_nb.date"},
	scraper.FieldPreview: {"p.conts-desc", "p.desc", "p.f_eb.desc"},
	scraper.FieldContent: {
		"div.tt_article_useless_p_margin",
		"div.entry-content",
		"div.article-view",
		"div#article-view",
		"div.contents_style",
		"div.area_view",
		"div.article_cont",
		"div.post-content",
		"article",
	},
}

type Scraper struct {
	scraper.Base
}

func New(cfg config.Platform, deps scraper.Deps) *Scraper {
	return &Scraper{Base: scraper.NewBase(Platform, prefix, cfg, DefaultSelectors, deps)}
}

// Login is a no-op: Tistory posts are public.
func (s *Scraper) Login(ctx context.Context) bool {
	return true
}

func (s *Scraper) SearchURL(keyword string, page int) string {
	q := url.Values{}
	q.Set("w", "fusion")
	q.Set("col", "blog")
	q.Set("q", keyword)
	q.Set("p", fmt.Sprint(page))
	return searchURL + "?" + q.Encode()
}

func (s *Scraper) Search(ctx context.Context, keyword string, maxPages int) ([]*models.Post, error) {
	return s.Paginate(ctx, keyword, maxPages, func(ctx context.Context, page int) (scraper.Page, error) {
		html, err := s.Browser.Render(ctx, s.SearchURL(keyword, page))
		if err != nil {
			return scraper.Page{}, err
		}
		return s.ParseList(html)
	}), nil
}

// ParseList parses one Daum blog search page, keeping only tistory.com hits.
func (s *Scraper) ParseList(html string) (scraper.Page, error) {
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		return scraper.Page{}, err
	}
	return scraper.ParseItems(s.Log, s.Selectors.Items(doc), s.parseItem), nil
}

func (s *Scraper) parseItem(item *goquery.Selection) (*models.Post, error) {
	title := s.Selectors.Text(item, scraper.FieldTitle)
	link := s.Selectors.Attr(item, scraper.FieldLink, "href")
	if title == "" || link == "" {
		return nil, fmt.Errorf("missing title or link")
	}

	blog, ok := BlogName(link)
	if !ok {
		return nil, nil
	}

	return &models.Post{
		PostID:    s.ID(NativeID(link)),
		Platform:  Platform,
		BoardName: blog,
		Title:     title,
		Author:    s.Selectors.Text(item, scraper.FieldAuthor),
		Date:      s.Selectors.Text(item, scraper.FieldDate),
		URL:       link,
		Preview:   models.Truncate(s.Selectors.Text(item, scraper.FieldPreview), models.PreviewLength),
	}, nil
}

// BlogName returns the blog subdomain of a *.tistory.com URL.
func BlogName(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	name, ok := strings.CutSuffix(host, ".tistory.com")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// NativeID is "{blog}_{number}" for numeric post URLs. Slug URLs
// (/entry/some-title) have no stable number and get a hash of the URL.
func NativeID(link string) string {
	blog, _ := BlogName(link)
	if last := scraper.LastPathSegment(link); blog != "" && scraper.IsDigits(last) {
		return blog + "_" + last
	}
	return scraper.HashID(link)
}

func (s *Scraper) FetchContent(ctx context.Context, url string) (string, error) {
	html, err := s.Browser.Render(ctx, url)
	if err != nil {
		return "", err
	}
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		return "", err
	}
	content := s.Selectors.Block(doc, scraper.FieldContent)
	if content == "" {
		return "", scraper.ErrNoContent
	}
	return content, nil
}
