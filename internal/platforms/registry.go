// Package platforms maps platform keys to adapter constructors.
package platforms

import (
	"fmt"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/scraper"
	"go-critique-crawler/internal/scraper/daumcafe"
	"go-critique-crawler/internal/scraper/dcinside"
	"go-critique-crawler/internal/scraper/naverblog"
	"go-critique-crawler/internal/scraper/navercafe"
	"go-critique-crawler/internal/scraper/orbi"
	"go-critique-crawler/internal/scraper/tistory"
)

type Constructor func(cfg config.Platform, deps scraper.Deps) scraper.Scraper

var registry = map[string]Constructor{
	navercafe.Platform: func(cfg config.Platform, deps scraper.Deps) scraper.Scraper { return navercafe.New(cfg, deps) },
	daumcafe.Platform:  func(cfg config.Platform, deps scraper.Deps) scraper.Scraper { return daumcafe.New(cfg, deps) },
	naverblog.Platform: func(cfg config.Platform, deps scraper.Deps) scraper.Scraper { return naverblog.New(cfg, deps) },
	tistory.Platform:   func(cfg config.Platform, deps scraper.Deps) scraper.Scraper { return tistory.New(cfg, deps) },
	dcinside.Platform:  func(cfg config.Platform, deps scraper.Deps) scraper.Scraper { return dcinside.New(cfg, deps) },
	orbi.Platform:      func(cfg config.Platform, deps scraper.Deps) scraper.Scraper { return orbi.New(cfg, deps) },
}

// Build returns the adapter registered under name.
func Build(name string, cfg config.Platform, deps scraper.Deps) (scraper.Scraper, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", name)
	}
	return ctor(cfg, deps), nil
}

// Known reports whether name has an adapter.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}
