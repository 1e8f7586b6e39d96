// Search a Daum Cafe through the cafe search inside the "down" iframe
// Login is optional: without it only public boards are visible

package daumcafe

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-critique-crawler/internal/browser"
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/scraper"
)

const (
	Platform  = "daumcafe"
	prefix    = "dcafe"
	frameName = "down"
	baseURL   = "https://cafe.daum.net/"
	loginURL  = "https://accounts.kakao.com/login/?continue=https%3A%2F%2Fcafe.daum.net%2F"

	// fieldMembersOnly marks result rows whose body needs membership.
	fieldMembersOnly = "members_only"
)

var DefaultSelectors = scraper.Selectors{
	scraper.FieldItem:    {"ul.list_sch > li", "table.bbsList tbody tr", "div.search_result li"},
	scraper.FieldTitle:   {"a.link_tit", "td.subject a.txt_item", "strong.tit_info a"},
	scraper.FieldLink:    {"a.link_tit", "td.subject a.txt_item", "strong.tit_info a"},
	scraper.FieldAuthor:  {"span.txt_name", "td.nick a", ".username"},
	scraper.FieldDate:    {"span.txt_date", "td.date", ".created_at"},
	scraper.FieldViews:   {"span.txt_view", "td.count", ".view_count"},
	scraper.FieldBoard:   {"a.link_board", "span.txt_board", "td.board a"},
	scraper.FieldContent: {"div#user_contents", "div.article_view", "div#bbs_contents", "div.protected_content"},
	scraper.FieldLogin:   {"a.btn_logout", "a[href*='logout']", "span.txt_nickname"},
	fieldMembersOnly:     {"span.ico_lock", "span.ico_member", "em.ico_lock"},
}

type Scraper struct {
	scraper.Base
	cafe  string
	grpID string
	// public is set when login failed and the run continues on public boards.
	public bool
}

func New(cfg config.Platform, deps scraper.Deps) *Scraper {
	return &Scraper{
		Base:  scraper.NewBase(Platform, prefix, cfg, DefaultSelectors, deps),
		cafe:  cfg.Option("cafe", "leetstudy"),
		grpID: cfg.Option("grpid", ""),
	}
}

// Login restores or creates a Kakao session. Unlike Naver Cafe a failure is
// not fatal: the cafe search works on public boards, so the platform carries
// on in public mode and skips members-only rows.
func (s *Scraper) Login(ctx context.Context) bool {
	s.public = false
	path := s.Cfg.CredentialsPath
	if s.Browser.LoadCredentials(path) && s.loggedIn(ctx) {
		s.Log.Info("✅ Daum session restored from cookies")
		return true
	}

	if s.Cfg.Username == "" || s.Cfg.Password == "" {
		s.Log.Warn("⚠️ DAUM_ID/DAUM_PW not set, continuing in public mode")
		s.public = true
		return true
	}

	form := browser.LoginForm{
		URL: loginURL,
		Fields: []browser.Field{
			{Selector: "input[name='loginId'], input#loginId--1", Value: s.Cfg.Username},
			{Selector: "input[name='password'], input#password--2", Value: s.Cfg.Password},
		},
		Submit: "button[type='submit'].submit, button.btn_g.highlight",
	}
	err := s.Browser.SubmitForm(ctx, form)
	if err == nil && s.loggedIn(ctx) {
		s.Browser.SaveCredentials(path)
		s.Log.Info("✅ Daum login confirmed")
		return true
	}

	if err != nil {
		s.Log.Warnf("⚠️ Daum login form failed: %v", err)
	}
	s.Browser.Capture("daumcafe-login-failed", "🚨 Daum Cafe: login failed, public mode")
	s.Log.Warn("⚠️ Daum login failed, continuing in public mode")
	s.public = true
	return true
}

// PublicMode reports whether the last Login fell back to public boards.
func (s *Scraper) PublicMode() bool {
	return s.public
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

// SearchURL opens the cafe shell with the subject search loaded in "down".
func (s *Scraper) SearchURL(keyword string, page int) string {
	inner := fmt.Sprintf("/_c21_/cafesearch?grpid=%s&item=subject&sorttype=0&listnum=20&pagenum=%d&query=%s",
		s.grpID, page, url.QueryEscape(keyword))
	return s.cafeURL() + "?iframe_url=" + url.QueryEscape(inner)
}

func (s *Scraper) Search(ctx context.Context, keyword string, maxPages int) ([]*models.Post, error) {
	if s.public {
		s.Log.Debugf("    searching %q in public mode", keyword)
	}
	return s.Paginate(ctx, keyword, maxPages, func(ctx context.Context, page int) (scraper.Page, error) {
		html, err := s.Browser.RenderFrame(ctx, s.SearchURL(keyword, page), frameName)
		if err != nil {
			return scraper.Page{}, err
		}
		return s.ParseList(html)
	}), nil
}

// ParseList parses one cafe search page. In public mode members-only rows
// are dropped since their body can never be read.
func (s *Scraper) ParseList(html string) (scraper.Page, error) {
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		return scraper.Page{}, err
	}
	return scraper.ParseItems(s.Log, s.Selectors.Items(doc), s.parseItem), nil
}

func (s *Scraper) parseItem(item *goquery.Selection) (*models.Post, error) {
	if s.public && s.membersOnly(item) {
		return nil, nil
	}

	title := s.Selectors.Text(item, scraper.FieldTitle)
	href := s.Selectors.Attr(item, scraper.FieldLink, "href")
	if title == "" || href == "" {
		return nil, fmt.Errorf("missing title or link")
	}

	link := scraper.Absolute(baseURL, href)
	nativeID, canonical := s.articleID(link)
	if nativeID == "" {
		nativeID = scraper.HashID(link)
	} else {
		link = canonical
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

func (s *Scraper) membersOnly(item *goquery.Selection) bool {
	for _, css := range s.Selectors[fieldMembersOnly] {
		if item.Find(css).Length() > 0 {
			return true
		}
	}
	return false
}

// articleID handles both /{cafe}/{fldid}/{dataid} and the
// bbs_read?fldid=&datanum= form. The native id is "{fldid}_{dataid}".
func (s *Scraper) articleID(link string) (string, string) {
	fldid, num := scraper.QueryParam(link, "fldid"), scraper.QueryParam(link, "datanum")
	if fldid != "" && scraper.IsDigits(num) {
		return fldid + "_" + num, fmt.Sprintf("%s%s/%s/%s", baseURL, s.cafe, fldid, num)
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 3 && scraper.IsDigits(parts[2]) {
		return parts[1] + "_" + parts[2], fmt.Sprintf("%s%s/%s/%s", baseURL, parts[0], parts[1], parts[2])
	}
	return "", ""
}

// FetchContent reads the article body from the "down" frame.
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
