// Search DCInside through its integrated search
// Pages are server-rendered, so the plain HTTP fetcher is tried first and
// the browser only when the response has none of the expected markup

package dcinside

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
	Platform  = "dcinside"
	prefix    = "dc"
	searchURL = "https://search.dcinside.com/post/p/%d/sort/latest/q/%s"
)

var DefaultSelectors = scraper.Selectors{
	scraper.FieldItem:    {"ul.sch_result_list > li", "div.integrate_cont.sch_result ul > li"},
	scraper.FieldTitle:   {"a.tit_txt", "a.tit"},
	scraper.FieldLink:    {"a.tit_txt", "a.tit"},
	scraper.FieldDate:    {"span.date_time", "p.link_dsc_txt.dsc_sub span.date_time"},
	scraper.FieldBoard:   {"a.sub_txt", "p.link_dsc_txt.dsc_sub a"},
	scraper.FieldPreview: {"p.link_dsc_txt:not(.dsc_sub)", "p.link_txt"},
	scraper.FieldAuthor:  {"span.nickname", "span.gall_writer"},
	scraper.FieldContent: {"div.write_div", "div.writing_view_box", "div.thum-txtin"},
}

type Scraper struct {
	scraper.Base
	// gallery restricts results to one gallery id; empty or "*" keeps all.
	gallery string
}

func New(cfg config.Platform, deps scraper.Deps) *Scraper {
	return &Scraper{
		Base:    scraper.NewBase(Platform, prefix, cfg, DefaultSelectors, deps),
		gallery: cfg.Option("gallery", ""),
	}
}

// Login is a no-op: galleries are readable without an account.
func (s *Scraper) Login(ctx context.Context) bool {
	return true
}

// SearchURL builds the path-style search URL. DCInside encodes the query
// like percent-encoding with '.' in place of '%'.
func (s *Scraper) SearchURL(keyword string, page int) string {
	q := strings.ReplaceAll(url.PathEscape(keyword), "%", ".")
	return fmt.Sprintf(searchURL, page, q)
}

func (s *Scraper) Search(ctx context.Context, keyword string, maxPages int) ([]*models.Post, error) {
	return s.Paginate(ctx, keyword, maxPages, func(ctx context.Context, page int) (scraper.Page, error) {
		doc, err := s.document(ctx, s.SearchURL(keyword, page), scraper.FieldItem)
		if err != nil {
			return scraper.Page{}, err
		}
		return scraper.ParseItems(s.Log, s.Selectors.Items(doc), s.parseItem), nil
	}), nil
}

// document returns the page at url parsed, from the HTTP fetcher when its
// response matches any selector of probe, otherwise from the browser.
func (s *Scraper) document(ctx context.Context, url, probe string) (*goquery.Document, error) {
	if s.Fetcher != nil {
		html, err := s.Fetcher.Fetch(ctx, url)
		if err == nil {
			doc, perr := scraper.ParseHTML(html)
			if perr == nil && s.Selectors.Has(doc, probe) {
				return doc, nil
			}
			s.Log.Debugf("      %s: no %s markup over HTTP, rendering", url, probe)
		} else {
			s.Log.Debugf("      fetch %s failed, rendering: %v", url, err)
		}
	}

	html, err := s.Browser.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	return scraper.ParseHTML(html)
}

// ParseList parses an already fetched search page.
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

	gall, no := scraper.QueryParam(link, "id"), scraper.QueryParam(link, "no")
	if s.gallery != "" && s.gallery != "*" && gall != s.gallery {
		return nil, nil
	}

	nativeID := scraper.HashID(link)
	if gall != "" && scraper.IsDigits(no) {
		nativeID = gall + "_" + no
	}

	board := s.Selectors.Text(item, scraper.FieldBoard)
	if board == "" {
		board = gall
	}

	return &models.Post{
		PostID:    s.ID(nativeID),
		Platform:  Platform,
		BoardName: board,
		Title:     title,
		Author:    s.Selectors.Text(item, scraper.FieldAuthor),
		Date:      s.Selectors.Text(item, scraper.FieldDate),
		URL:       link,
		Preview:   models.Truncate(s.Selectors.Text(item, scraper.FieldPreview), models.PreviewLength),
	}, nil
}

func (s *Scraper) FetchContent(ctx context.Context, url string) (string, error) {
	doc, err := s.document(ctx, url, scraper.FieldContent)
	if err != nil {
		return "", err
	}
	content := s.Selectors.Block(doc, scraper.FieldContent)
	if content == "" {
		return "", scraper.ErrNoContent
	}
	return content, nil
}
