package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-critique-crawler/internal/models"
)

func TestFirstMatch(t *testing.T) {
	values := map[string]string{"a": "", "b": "  ", "c": "found", "d": "later"}
	lookup := func(k string) string { return values[k] }

	assert.Equal(t, "found", FirstMatch([]string{"a", "b", "c", "d"}, lookup))
	assert.Equal(t, "", FirstMatch([]string{"a", "b"}, lookup))
	assert.Equal(t, "", FirstMatch(nil, lookup))
}

func TestSelectors_MergeAndFallback(t *testing.T) {
	defaults := Selectors{
		FieldTitle:  {".subject", "h3.title"},
		FieldAuthor: {".nick"},
	}
	sel := defaults.Merge(map[string][]string{FieldAuthor: {".writer", ".nick"}, FieldDate: nil})

	doc, err := ParseHTML(`<div class="item"><h3 class="title"> 리트   해설 </h3><span class="nick">수험생</span></div>`)
	require.NoError(t, err)
	item := doc.Find(".item")

	assert.Equal(t, "리트 해설", sel.Text(item, FieldTitle))
	assert.Equal(t, "수험생", sel.Text(item, FieldAuthor))
	assert.Equal(t, "", sel.Text(item, FieldDate), "missing field yields empty string")
	assert.Equal(t, []string{".nick"}, defaults[FieldAuthor], "defaults are not mutated")
}

func TestBlockText(t *testing.T) {
	doc, err := ParseHTML(`<div id="c"><p>첫 줄</p><script>var x=1</script><p>둘째<br>셋째</p></div>`)
	require.NoError(t, err)

	assert.Equal(t, "첫 줄\n둘째\n셋째", BlockText(doc.Find("#c")))
	assert.Equal(t, "", BlockText(doc.Find("#none")))
}

func TestHashID(t *testing.T) {
	a := HashID("https://blog.tistory.com/entry/해설-오류")
	b := HashID("https://blog.tistory.com/entry/해설-오류")
	c := HashID("https://blog.tistory.com/entry/other")

	assert.Len(t, a, 8)
	assert.True(t, IsDigits(a))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestURLHelpers(t *testing.T) {
	assert.Equal(t, "https://orbi.kr/00012345", Absolute("https://orbi.kr/search?q=x", "/00012345"))
	assert.Equal(t, "12345", LastPathSegment("https://cafe.naver.com/leetpass/12345?x=1"))
	assert.Equal(t, "777", QueryParam("https://gall.dcinside.com/board/view/?id=leet&no=777", "no"))
	assert.Equal(t, "ncafe_1", PostID("ncafe", "1"))
}

func TestPaginate_StopsOnEmptyPage(t *testing.T) {
	var requested []int
	pages := map[int]Page{
		1: {Posts: []*models.Post{{PostID: "x_1"}}, Parsed: 1},
		2: {},
		3: {Posts: []*models.Post{{PostID: "x_3"}}, Parsed: 1},
	}
	pauses := 0

	posts := Paginate(context.Background(), zaptest.NewLogger(t).Sugar(), "k", 5,
		func(context.Context) { pauses++ },
		func(ctx context.Context, page int) (Page, error) {
			requested = append(requested, page)
			return pages[page], nil
		})

	assert.Equal(t, []int{1, 2}, requested, "page 3 is never requested after empty page 2")
	assert.Len(t, posts, 1)
	assert.Equal(t, 2, pauses)
}

func TestPaginate_ContinuesPastFullyDroppedPage(t *testing.T) {
	var requested []int
	pages := map[int]Page{
		1: {Parsed: 3},
		2: {Posts: []*models.Post{{PostID: "x_2"}}, Parsed: 2},
	}

	posts := Paginate(context.Background(), zaptest.NewLogger(t).Sugar(), "k", 3,
		func(context.Context) {},
		func(ctx context.Context, page int) (Page, error) {
			requested = append(requested, page)
			return pages[page], nil
		})

	assert.Equal(t, []int{1, 2, 3}, requested)
	require.Len(t, posts, 1)
	assert.Equal(t, "x_2", posts[0].PostID)
}

func TestPaginate_FailedPageStops(t *testing.T) {
	var requested []int
	posts := Paginate(context.Background(), zaptest.NewLogger(t).Sugar(), "k", 3,
		func(context.Context) {},
		func(ctx context.Context, page int) (Page, error) {
			requested = append(requested, page)
			if page == 2 {
				return Page{Parsed: 4}, errors.New("timeout")
			}
			return Page{Posts: []*models.Post{{PostID: "x"}}, Parsed: 1}, nil
		})

	assert.Equal(t, []int{1, 2}, requested)
	assert.Len(t, posts, 1)
}

func TestPaginate_RespectsMaxPages(t *testing.T) {
	var requested []int
	Paginate(context.Background(), zaptest.NewLogger(t).Sugar(), "k", 2,
		func(context.Context) {},
		func(ctx context.Context, page int) (Page, error) {
			requested = append(requested, page)
			return Page{Posts: []*models.Post{{PostID: "x"}}, Parsed: 1}, nil
		})

	assert.Equal(t, []int{1, 2}, requested)
}

func TestParseItems_SkipsMalformedItems(t *testing.T) {
	doc, err := ParseHTML(`<ul><li>ok-1</li><li>bad</li><li>panic</li><li>dropped</li><li>ok-2</li></ul>`)
	require.NoError(t, err)

	page := ParseItems(zaptest.NewLogger(t).Sugar(), doc.Find("li"), func(item *goquery.Selection) (*models.Post, error) {
		switch text := item.Text(); text {
		case "bad":
			return nil, errors.New("no link")
		case "panic":
			var m map[string]int
			m["x"] = 1
			return nil, nil
		case "dropped":
			return nil, nil
		default:
			return &models.Post{PostID: text}, nil
		}
	})

	require.Len(t, page.Posts, 2)
	assert.Equal(t, "ok-1", page.Posts[0].PostID)
	assert.Equal(t, "ok-2", page.Posts[1].PostID)
	assert.Equal(t, 3, page.Parsed, "a dropped item still counts as parsed")
}
