package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/logger"
)

// ErrEmptyBody is returned when a 2xx response carries no body.
var ErrEmptyBody = errors.New("empty response body")

const defaultTimeout = 15 * time.Second

// Fetcher performs plain HTTP GETs for pages whose content is server-rendered,
// without paying for a browser render.
type Fetcher struct {
	userAgent string
	timeout   time.Duration
	log       *zap.SugaredLogger
}

func New(cfg config.FetcherConfig, log *zap.SugaredLogger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		log:       logger.OrNop(log),
	}
}

func (f *Fetcher) collector(ctx context.Context) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
	}
	if f.userAgent != "" {
		opts = append(opts, colly.UserAgent(f.userAgent))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.timeout)
	return c
}

// Fetch GETs url and returns the body decoded to UTF-8. Non-2xx statuses,
// timeouts and empty bodies are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	c := f.collector(ctx)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	start := time.Now()
	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	c.Wait()

	if len(body) == 0 {
		return "", fmt.Errorf("fetch %s: %w", url, ErrEmptyBody)
	}
	f.log.Debugf("fetched %s (%d bytes, %s)", url, len(body), time.Since(start).Round(time.Millisecond))
	return string(body), nil
}
