package orbi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/scraper"
)

const (
	Platform = "orbi"
	prefix   = "orbi"
	baseURL  = "https://orbi.kr/"
	board    = "오르비"
)

var DefaultSelectors = scraper.Selectors{
	scraper.FieldItem:    {"ul.post-list > li", "div.post-list li.post", "ul.list > li"},
	scraper.FieldTitle:   {"p.title a", "div.title a", "a.title"},
	scraper.FieldLink:    {"p.title a", "div.title a", "a.title"},
	scraper.FieldAuthor:  {"span.nickname", "div.author a", "a.nickname"},
	scraper.FieldDate:    {"abbr.timeago", "span.date", "div.date"},
	scraper.FieldViews:   {"span.view-count", "span.views"},
	scraper.FieldBoard:   {"span.tag", "a.board-name"},
	scraper.FieldContent: {"div.content-wrap article", "div.post-content", "article div.content", "div.content"},
}

// Scraper reads Orbi with plain browser rendering; search and posts are public.
type Scraper struct {
	scraper.Base
}

func New(cfg config.Platform, deps scraper.Deps) *Scraper {
	return &Scraper{Base: scraper.NewBase(Platform, prefix, cfg, DefaultSelectors, deps)}
}

func (s *Scraper) Login(ctx context.Context) bool {
	return true
}

func (s *Scraper) SearchURL(keyword string, page int) string {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("type", "keyword")
	q.Set("page", fmt.Sprint(page))
	return baseURL + "search?" + q.Encode()
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

func (s *Scraper) ParseList(html string) (scraper.Page, error) {
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		return scraper.Page{}, err
	}
	return scraper.ParseItems(s.Log, s.Selectors.Items(doc), s.parseItem), nil
}

func (s *Scraper) parseItem(item *goquery.Selection) (*models.Post, error) {
	title := s.Selectors.Text(item, scraper.FieldTitle)
	href := s.Selectors.Attr(item, scraper.FieldLink, "href")
	if title == "" || href == "" {
		return nil, fmt.Errorf("missing title or link")
	}

	link := scraper.Absolute(baseURL, href)
	nativeID := scraper.LastPathSegment(link)
	if !scraper.IsDigits(nativeID) {
		nativeID = scraper.HashID(link)
	}

	boardName := s.Selectors.Text(item, scraper.FieldBoard)
	if boardName == "" {
		boardName = board
	}

	// timeago keeps the absolute timestamp in its title
	date := s.Selectors.Attr(item, scraper.FieldDate, "title")
	if date == "" {
		date = s.Selectors.Text(item, scraper.FieldDate)
	}

	return &models.Post{
		PostID:    s.ID(nativeID),
		Platform:  Platform,
		BoardName: boardName,
		Title:     title,
		Author:    s.Selectors.Text(item, scraper.FieldAuthor),
		Date:      date,
		ViewCount: s.Selectors.Text(item, scraper.FieldViews),
		URL:       link,
	}, nil
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
