package scraper

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"go-critique-crawler/internal/models"
)

// Page is one parsed search result page. Parsed counts every item that parsed
// cleanly, including items the adapter chose not to keep.
type Page struct {
	Posts  []*models.Post
	Parsed int
}

// PageFunc fetches and parses one search result page.
type PageFunc func(ctx context.Context, page int) (Page, error)

// Paginate requests pages 1..maxPages and stops the moment a page yields zero
// parseable items. A failed page counts as a page with zero items. A page whose
// items were all parsed but dropped does not stop the walk.
func Paginate(ctx context.Context, log *zap.SugaredLogger, keyword string, maxPages int, pause func(context.Context), fetchPage PageFunc) []*models.Post {
	var all []*models.Post
	for page := 1; page <= maxPages; page++ {
		result, err := fetchPage(ctx, page)
		if err != nil {
			log.Warnf("    ⚠️ %q page %d failed: %v", keyword, page, err)
			result = Page{}
		}
		pause(ctx)

		if result.Parsed == 0 {
			log.Debugf("    %q page %d empty, stopping", keyword, page)
			break
		}
		log.Infof("    📦 %q page %d: %d posts (%d parsed)", keyword, page, len(result.Posts), result.Parsed)
		all = append(all, result.Posts...)
	}
	return all
}

// ItemFunc parses one result node. An error marks the node malformed;
// returning nil, nil means it parsed but is not wanted.
type ItemFunc func(item *goquery.Selection) (*models.Post, error)

// ParseItems parses every item node independently; a malformed item is
// logged and skipped without aborting the page.
func ParseItems(log *zap.SugaredLogger, items *goquery.Selection, parse ItemFunc) Page {
	var page Page
	items.Each(func(i int, item *goquery.Selection) {
		post, err := safeParse(item, parse)
		if err != nil {
			log.Debugf("      skipped item %d: %v", i, err)
			return
		}
		page.Parsed++
		if post != nil {
			page.Posts = append(page.Posts, post)
		}
	})
	return page
}

func safeParse(item *goquery.Selection, parse ItemFunc) (post *models.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			post, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return parse(item)
}
