// Search a Naver Cafe through its embedded article list
// Extract posts from the cafe_main iframe
// Requires a logged-in session: no login, no results

package navercafe

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"

	"go-critique-crawler/internal/browser"
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/scraper"
)

const (
	Platform  = "navercafe"
	prefix    = "ncafe"
	frameName = "cafe_main"
	baseURL   = "https://cafe.naver.com/"
	loginURL  = "https://nid.naver.com/nidlogin.login?mode=form"
)

var DefaultSelectors = scraper.Selectors{
	scraper.FieldItem:    {"div.article-board:not(#upperArticleList) table tbody tr", "div.ArticleBoardList tbody tr", "ul.article-movie-sub > li"},
	scraper.FieldTitle:   {"a.article", "td.td_article .board-list a", "a.tit"},
	scraper.FieldLink:    {"a.article", "td.td_article .board-list a", "a.tit"},
	scraper.FieldAuthor:  {"td.td_name .m-tcol-c", "td.p-nick a", ".nickname"},
	scraper.FieldDate:    {"td.td_date", "span.date"},
	scraper.FieldViews:   {"td.td_view", "span.num"},
	scraper.FieldBoard:   {"a.link_name", "span.board-name", "td.td_board a"},
	scraper.FieldContent: {"div.se-main-container", "div.ContentRenderer", "div#tbody", "div.article_viewer"},
	scraper.FieldLogin:   {"a#gnb_logout_button", "div.gnb_my_namebox", "a.gnb_btn_login[href*='logout']"},
}

type Scraper struct {
	scraper.Base
	cafe   string
	clubID string
}

func New(cfg config.Platform, deps scraper.Deps) *Scraper {
	return &Scraper{
		Base:   scraper.NewBase(Platform, prefix, cfg, DefaultSelectors, deps),
		cafe:   cfg.Option("cafe", "leetpass"),
		clubID: cfg.Option("club_id", ""),
	}
}

// Login restores the cookie session or signs in with NAVER_ID/NAVER_PW.
// Cafe search is members-only, so any failure is fatal for this platform.
func (s *Scraper) Login(ctx context.Context) bool {
	path := s.Cfg.CredentialsPath
	if s.Browser.LoadCredentials(path) && s.loggedIn(ctx) {
		s.Log.Info("✅ Naver session restored from cookies")
		return true
	}

	if s.Cfg.Username == "" || s.Cfg.Password == "" {
		s.Log.Error("❌ No saved Naver session and NAVER_ID/NAVER_PW not set")
		return false
	}

	form := browser.LoginForm{
		URL: loginURL,
		Fields: []browser.Field{
			{Selector: "input#id", Value: s.Cfg.Username},
			{Selector: "input#pw", Value: s.Cfg.Password},
		},
		Submit: "button#log\\.login, button.btn_login",
	}
	if err := s.Browser.SubmitForm(ctx, form); err != nil {
		s.Log.Errorf("❌ Naver login form failed: %v", err)
		s.Browser.Capture("navercafe-login-failed", "🚨 Naver Cafe: login form failed")
		return false
	}
	if !s.loggedIn(ctx) {
		s.Log.Error("❌ Naver login not confirmed (captcha or 2FA?)")
		s.Browser.Capture("navercafe-login-unconfirmed", "🚨 Naver Cafe: login not confirmed")
		return false
	}

	s.Browser.SaveCredentials(path)
	s.Log.Info("✅ Naver login confirmed")
	return true
}

func (s *Scraper) loggedIn(ctx context.Context) bool {
	html, err := s.Browser.Render(ctx, s.cafeURL())
	if err != nil {
		s.Log.Warnf("⚠️ Could not open cafe home: %v", err)
		return false
	}
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		return false
	}
	return s.Selectors.Has(doc, scraper.FieldLogin)
}

func (s *Scraper) cafeURL() string {
	return baseURL + s.cafe
}

// SearchURL wraps the article search in the cafe shell so it renders inside cafe_main.
// The cafe search endpoint expects the query in EUC-KR.
func (s *Scraper) SearchURL(keyword string, page int) string {
	q, err := korean.EUCKR.NewEncoder().String(keyword)
	if err != nil {
		q = keyword
	}
	inner := fmt.Sprintf("/ArticleSearchList.nhn?search.clubid=%s&search.searchBy=0&search.query=%s&search.page=%d",
		s.clubID, url.QueryEscape(q), page)
	return s.cafeURL() + "?iframe_url=" + url.QueryEscape(inner)
}

func (s *Scraper) Search(ctx context.Context, keyword string, maxPages int) ([]*models.Post, error) {
	return s.Paginate(ctx, keyword, maxPages, func(ctx context.Context, page int) (scraper.Page, error) {
		html, err := s.Browser.RenderFrame(ctx, s.SearchURL(keyword, page), frameName)
		if err != nil {
			return scraper.Page{}, err
		}
		return s.ParseList(html)
	}), nil
}

// ParseList parses one article search page.
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
	nativeID := articleID(link)
	if nativeID == "" {
		nativeID = scraper.HashID(link)
	} else {
		link = s.cafeURL() + "/" + nativeID
	}

	board := s.Selectors.Text(item, scraper.FieldBoard)
	if board == "" {
		board = s.cafe
	}

	return &models.Post{
		PostID:    s.ID(nativeID),
		Platform:  Platform,
		BoardName: board,
		Title:     title,
		Author:    s.Selectors.Text(item, scraper.FieldAuthor),
		Date:      s.Selectors.Text(item, scraper.FieldDate),
		ViewCount: s.Selectors.Text(item, scraper.FieldViews),
		URL:       link,
	}, nil
}

// articleID extracts the article number from either the legacy
// ArticleRead.nhn?articleid= form or the /{cafe}/{id} form.
func articleID(link string) string {
	if id := scraper.QueryParam(link, "articleid"); scraper.IsDigits(id) {
		return id
	}
	if id := scraper.LastPathSegment(link); scraper.IsDigits(id) {
		return id
	}
	if i := strings.Index(link, "articles/"); i >= 0 {
		rest := link[i+len("articles/"):]
		if j := strings.IndexAny(rest, "?/#"); j >= 0 {
			rest = rest[:j]
		}
		if scraper.IsDigits(rest) {
			return rest
		}
	}
	return ""
}

// FetchContent reads the article body from the cafe_main frame.
func (s *Scraper) FetchContent(ctx context.Context, url string) (string, error) {
	html, err := s.Browser.RenderFrame(ctx, url, frameName)
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
