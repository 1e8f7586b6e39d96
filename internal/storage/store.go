// Write autosave batches, per-platform snapshots and the combined export
// Read back the newest combined export for the results API

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-critique-crawler/internal/dedup"
	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/models"
)

const timestampLayout = "20060102_150405"

// ErrNoResults is returned by LatestResults when no combined export exists yet.
var ErrNoResults = errors.New("no results exported yet")

// PlatformResults is the surviving post list of one platform run.
type PlatformResults struct {
	Platform string
	Posts    []*models.Post
}

type Settings struct {
	Platforms    []string `json:"platforms"`
	KeywordCount int      `json:"keyword_count"`
	FetchContent bool     `json:"fetch_content"`
}

type PlatformSummary struct {
	Collected int `json:"collected"`
	Negative  int `json:"negative"`
}

type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type Summary struct {
	TotalCollected int                        `json:"total_collected"`
	TotalNegative  int                        `json:"total_negative"`
	Platforms      map[string]PlatformSummary `json:"platforms"`
	KeywordStats   []KeywordStat              `json:"keyword_stats"`
}

// Export is the combined results document.
type Export struct {
	CollectionDatetime string         `json:"collection_datetime"`
	Settings           Settings       `json:"settings"`
	Summary            Summary        `json:"summary"`
	Posts              []*models.Post `json:"posts"`
}

type Store struct {
	dir string
	now func() time.Time
	log *zap.SugaredLogger
}

func New(dir string, log *zap.SugaredLogger) *Store {
	return &Store{dir: dir, now: time.Now, log: logger.OrNop(log)}
}

// WithClock fixes the time used for file names and collection_datetime.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) timestamp() string {
	return s.now().Format(timestampLayout)
}

// AutosaveBatch writes posts to autosave_{platform}_{timestamp}.json. An
// existing file is never replaced; a numeric suffix is added instead.
func (s *Store) AutosaveBatch(posts []*models.Post, platform string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(nonNil(posts), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode autosave: %w", err)
	}

	base := fmt.Sprintf("autosave_%s_%s", platform, s.timestamp())
	for i := 0; ; i++ {
		name := base + ".json"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.json", base, i)
		}
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		_, werr := f.Write(data)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, nil
	}
}

// SavePlatformResults snapshots one platform's final set to
// intermediate_{platform}_{timestamp}.json.
func (s *Store) SavePlatformResults(set *dedup.PostSet, platform string) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("intermediate_%s_%s.json", platform, s.timestamp()))
	if err := writeJSON(path, nonNil(set.Posts())); err != nil {
		return "", err
	}
	s.log.Infof("💾 Saved %d %s posts to %s", set.Len(), platform, path)
	return path, nil
}

// SaveCombinedResults flattens every platform's posts into
// results_{timestamp}.csv, .json and .xlsx. The summary is computed from the
// posts being written.
func (s *Store) SaveCombinedResults(results []PlatformResults, settings Settings) (string, string, error) {
	now := s.now()
	base := filepath.Join(s.dir, "results_"+now.Format(timestampLayout))

	export := Export{
		CollectionDatetime: now.Format("2006-01-02T15:04:05"),
		Settings:           settings,
		Summary:            Summarize(results),
		Posts:              Flatten(results),
	}
	if export.Settings.Platforms == nil {
		export.Settings.Platforms = []string{}
	}

	csvPath := base + ".csv"
	if err := writeCSV(csvPath, export.Posts); err != nil {
		return "", "", err
	}
	jsonPath := base + ".json"
	if err := writeJSON(jsonPath, export); err != nil {
		return "", "", err
	}
	xlsxPath := base + ".xlsx"
	if err := writeXLSX(xlsxPath, export); err != nil {
		// the spreadsheet is a convenience copy
		s.log.Warnf("⚠️ Could not write %s: %v", xlsxPath, err)
	}

	s.log.Infof("💾 Exported %d posts (%d negative) to %s and %s",
		export.Summary.TotalCollected, export.Summary.TotalNegative, csvPath, jsonPath)
	return csvPath, jsonPath, nil
}

// Flatten concatenates platform post lists in the given order.
func Flatten(results []PlatformResults) []*models.Post {
	posts := []*models.Post{}
	for _, r := range results {
		for _, p := range r.Posts {
			if p != nil {
				posts = append(posts, p)
			}
		}
	}
	return posts
}

// Summarize counts collected and negative posts per platform and how many
// posts each search keyword surfaced, busiest keyword first.
func Summarize(results []PlatformResults) Summary {
	sum := Summary{Platforms: map[string]PlatformSummary{}, KeywordStats: []KeywordStat{}}
	keywordCounts := map[string]int{}

	for _, r := range results {
		ps := sum.Platforms[r.Platform]
		for _, p := range r.Posts {
			if p == nil {
				continue
			}
			ps.Collected++
			sum.TotalCollected++
			if p.IsNegative {
				ps.Negative++
				sum.TotalNegative++
			}
			for _, k := range p.SearchKeywords {
				keywordCounts[k]++
			}
		}
		sum.Platforms[r.Platform] = ps
	}

	for k, n := range keywordCounts {
		sum.KeywordStats = append(sum.KeywordStats, KeywordStat{Keyword: k, Count: n})
	}
	sort.Slice(sum.KeywordStats, func(i, j int) bool {
		a, b := sum.KeywordStats[i], sum.KeywordStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Keyword < b.Keyword
	})
	return sum
}

// LatestResults loads the newest results_*.json in the output directory.
func (s *Store) LatestResults() (*Export, string, error) {
	files, err := s.ResultFiles()
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", ErrNoResults
	}

	path := filepath.Join(s.dir, files[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return &export, path, nil
}

// ResultFiles lists combined JSON exports, newest first.
func (s *Store) ResultFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, "results_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	// timestamps sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func nonNil(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	return posts
}
