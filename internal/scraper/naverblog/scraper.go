// Search Naver blogs through the Naver search blog tab
// Read posts from the mobile site, which serves the body without the
// desktop mainFrame iframe

package naverblog

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
	Platform  = "naverblog"
	prefix    = "nblog"
	searchURL = "https://search.naver.com/search.naver"
	pageSize  = 15
)

var DefaultSelectors = scraper.Selectors{
	scraper.FieldItem:    {"ul.lst_view > li.bx", "div.view_wrap", "li.sh_blog_top"},
	scraper.FieldTitle:   {"a.title_link", "a.api_txt_lines.total_tit", "a.sh_blog_title"},
	scraper.FieldLink:    {"a.title_link", "a.api_txt_lines.total_tit", "a.sh_blog_title"},
	scraper.FieldAuthor:  {"a.name", "a.sub_txt.sub_name", "a.txt84"},
	scraper.FieldDate:    {"span.sub", "span.sub_time", "dd.txt_inline"},
	scraper.FieldPreview: {"a.dsc_link", "div.api_txt_lines.dsc_txt", "dd.sh_blog_passage"},
	scraper.FieldContent: {"div.se-main-container", "div#viewTypeSelector", "div.post_ct", "div#postViewArea"},
}

type Scraper struct {
	scraper.Base
}

func New(cfg config.Platform, deps scraper.Deps) *Scraper {
	return &Scraper{Base: scraper.NewBase(Platform, prefix, cfg, DefaultSelectors, deps)}
}

// Login is a no-op: blog search and posts are public.
func (s *Scraper) Login(ctx context.Context) bool {
	return true
}

func (s *Scraper) SearchURL(keyword string, page int) string {
	q := url.Values{}
	q.Set("ssc", "tab.blog.all")
	q.Set("where", "blog")
	q.Set("query", keyword)
	q.Set("start", fmt.Sprint((page-1)*pageSize+1))
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

	blogID, logNo := PostKey(link)
	nativeID := scraper.HashID(link)
	board := "blog"
	if blogID != "" {
		nativeID = blogID + "_" + logNo
		board = blogID
		link = fmt.Sprintf("https://blog.naver.com/%s/%s", blogID, logNo)
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

// PostKey extracts blogId and logNo from any blog.naver.com post URL form.
// Both are empty for non-blog links.
func PostKey(link string) (blogID, logNo string) {
	u, err := url.Parse(link)
	if err != nil || !strings.HasSuffix(u.Host, "blog.naver.com") {
		return "", ""
	}
	q := u.Query()
	if id, no := q.Get("blogId"), q.Get("logNo"); id != "" && scraper.IsDigits(no) {
		return id, no
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 2 && scraper.IsDigits(parts[1]) {
		return parts[0], parts[1]
	}
	return "", ""
}

// MobileURL rewrites a desktop post URL to m.blog.naver.com.
func MobileURL(link string) string {
	if id, no := PostKey(link); id != "" {
		return fmt.Sprintf("https://m.blog.naver.com/%s/%s", id, no)
	}
	return link
}

// FetchContent tries the plain HTTP fetch of the mobile page first and only
// renders it in the browser when that yields no body.
func (s *Scraper) FetchContent(ctx context.Context, link string) (string, error) {
	mobile := MobileURL(link)

	if s.Fetcher != nil {
		html, err := s.Fetcher.Fetch(ctx, mobile)
		if err == nil {
			if content := s.extract(html); content != "" {
				return content, nil
			}
		} else {
			s.Log.Debugf("      fetch %s failed, rendering: %v", mobile, err)
		}
	}

	html, err := s.Browser.Render(ctx, mobile)
	if err != nil {
		return "", err
	}
	if content := s.extract(html); content != "" {
		return content, nil
	}
	return "", scraper.ErrNoContent
}

func (s *Scraper) extract(html string) string {
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		return ""
	}
	return s.Selectors.Block(doc, scraper.FieldContent)
}
