package daumcafe

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/scraper"
	"go-critique-crawler/internal/scraper/scrapertest"
)

const listHTML = `<ul class="list_sch">
  <li>
    <a class="link_board">LEET 질문방</a>
    <a class="link_tit" href="/leetstudy/Jq2k/315">추리논증 31번 해설 이의제기</a>
    <span class="txt_name">로스쿨가자</span><span class="txt_date">24.07.21</span><span class="txt_view">조회 41</span>
  </li>
  <li>
    <span class="ico_lock"></span>
    <a class="link_tit" href="/_c21_/bbs_read?grpid=1AbCd&fldid=Mem1&datanum=9">회원 전용 해설 토론</a>
  </li>
  <li>
    <a class="link_tit" href="https://cafe.daum.net/leetstudy/search?x=1">링크 형식이 다른 글</a>
  </li>
</ul>`

func newScraper(b *scrapertest.FakeBrowser, cfg config.Platform) *Scraper {
	cfg.Options = map[string]string{"cafe": "leetstudy", "grpid": "1AbCd"}
	cfg.CredentialsPath = "cookies/daumcafe.json"
	return New(cfg, scraper.Deps{Browser: b})
}

func TestSearchURL(t *testing.T) {
	s := newScraper(scrapertest.NewFakeBrowser(), config.Platform{})

	u, err := url.Parse(s.SearchURL("해설 오류", 3))
	require.NoError(t, err)
	assert.Equal(t, "/leetstudy", u.Path)
	inner := u.Query().Get("iframe_url")
	assert.Contains(t, inner, "grpid=1AbCd")
	assert.Contains(t, inner, "pagenum=3")
	assert.Contains(t, inner, "query="+url.QueryEscape("해설 오류"))
}

func TestParseListLoggedIn(t *testing.T) {
	s := newScraper(scrapertest.NewFakeBrowser(), config.Platform{})

	list, err := s.ParseList(listHTML)
	require.NoError(t, err)
	posts := list.Posts
	require.Len(t, posts, 3)

	assert.Equal(t, "dcafe_Jq2k_315", posts[0].PostID)
	assert.Equal(t, "LEET 질문방", posts[0].BoardName)
	assert.Equal(t, "로스쿨가자", posts[0].Author)
	assert.Equal(t, "https://cafe.daum.net/leetstudy/Jq2k/315", posts[0].URL)

	assert.Equal(t, "dcafe_Mem1_9", posts[1].PostID)
	assert.Equal(t, "https://cafe.daum.net/leetstudy/Mem1/9", posts[1].URL)
	assert.Equal(t, "leetstudy", posts[1].BoardName)

	assert.Equal(t, "dcafe_"+scraper.HashID("https://cafe.daum.net/leetstudy/search?x=1"), posts[2].PostID)
}

func TestLoginWithoutCredentialsFallsBackToPublicMode(t *testing.T) {
	b := scrapertest.NewFakeBrowser()
	s := newScraper(b, config.Platform{})

	assert.True(t, s.Login(context.Background()))
	assert.True(t, s.PublicMode())
	assert.Empty(t, b.Submitted)

	list, err := s.ParseList(listHTML)
	require.NoError(t, err)
	posts := list.Posts
	require.Len(t, posts, 2)
	assert.Equal(t, "dcafe_Jq2k_315", posts[0].PostID)
}

func TestLoginFailureFallsBackToPublicMode(t *testing.T) {
	b := scrapertest.NewFakeBrowser()
	b.SubmitErr = errors.New("captcha")
	s := newScraper(b, config.Platform{Username: "me", Password: "pw"})

	assert.True(t, s.Login(context.Background()))
	assert.True(t, s.PublicMode())
	assert.Equal(t, []string{"daumcafe-login-failed"}, b.Captures)
	assert.Empty(t, b.Saved)
}

func TestLoginSuccess(t *testing.T) {
	b := scrapertest.NewFakeBrowser()
	s := newScraper(b, config.Platform{Username: "me", Password: "pw"})
	b.AfterSubmit["https://cafe.daum.net/leetstudy"] = `<a class="btn_logout">로그아웃</a>`

	assert.True(t, s.Login(context.Background()))
	assert.False(t, s.PublicMode())
	assert.Equal(t, []string{"cookies/daumcafe.json"}, b.Saved)
}

func TestSearchAndFetch(t *testing.T) {
	b := scrapertest.NewFakeBrowser()
	s := newScraper(b, config.Platform{})
	b.SetFrame(s.SearchURL("해설", 1), frameName, listHTML)

	posts, err := s.Search(context.Background(), "해설", 3)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
	// page 2 is not registered: a failed page ends pagination
	assert.Len(t, b.FrameRenders, 2)

	b.SetFrame(posts[0].URL, frameName, `<div id="user_contents"><p>31번 해설 납득 안 됩니다</p></div>`)
	content, err := s.FetchContent(context.Background(), posts[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "31번 해설 납득 안 됩니다", content)

	_, err = s.FetchContent(context.Background(), posts[1].URL)
	assert.ErrorIs(t, err, scrapertest.ErrNotFound)
}

func TestPublicSearchContinuesPastMembersOnlyPage(t *testing.T) {
	b := scrapertest.NewFakeBrowser()
	s := newScraper(b, config.Platform{})
	require.True(t, s.Login(context.Background()))
	require.True(t, s.PublicMode())

	b.SetFrame(s.SearchURL("해설", 1), frameName, `<ul class="list_sch"><li>
  <span class="ico_lock"></span>
  <a class="link_tit" href="/_c21_/bbs_read?grpid=1AbCd&fldid=Mem1&datanum=9">회원 전용 해설 토론</a>
</li></ul>`)
	b.SetFrame(s.SearchURL("해설", 2), frameName, listHTML)

	posts, err := s.Search(context.Background(), "해설", 2)
	require.NoError(t, err)
	assert.Len(t, b.FrameRenders, 2)
	require.Len(t, posts, 2)
	assert.Equal(t, "dcafe_Jq2k_315", posts[0].PostID)
}
