package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"go-critique-crawler/internal/models"
)

// Columns is the fixed column order of the CSV and the xlsx posts sheet.
var Columns = []string{
	"post_id", "platform", "board_name", "title", "author", "date", "view_count",
	"url", "search_keywords", "matched_negative", "is_negative", "preview",
}

const (
	listSeparator = ", "
	postsSheet    = "Posts"
	summarySheet  = "Summary"
)

// utf8BOM lets spreadsheet apps detect UTF-8 in the CSV.
const utf8BOM = "\xEF\xBB\xBF"

// Row renders a post in Columns order.
func Row(p *models.Post) []string {
	return []string{
		p.PostID,
		p.Platform,
		p.BoardName,
		p.Title,
		p.Author,
		p.Date,
		p.ViewCount,
		p.URL,
		strings.Join(p.SearchKeywords, listSeparator),
		strings.Join(p.MatchedNegative, listSeparator),
		strconv.FormatBool(p.IsNegative),
		p.Preview,
	}
}

func writeCSV(path string, posts []*models.Post) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, p := range posts {
		if err := w.Write(Row(p)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeXLSX(path string, export Export) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", postsSheet); err != nil {
		return err
	}
	if err := setRow(f, postsSheet, 1, toCells(Columns)); err != nil {
		return err
	}
	for i, p := range export.Posts {
		if err := setRow(f, postsSheet, i+2, toCells(Row(p))); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	rows := [][]any{
		{"collection_datetime", export.CollectionDatetime},
		{"total_collected", export.Summary.TotalCollected},
		{"total_negative", export.Summary.TotalNegative},
		{},
		{"platform", "collected", "negative"},
	}
	names := make([]string, 0, len(export.Summary.Platforms))
	for name := range export.Summary.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ps := export.Summary.Platforms[name]
		rows = append(rows, []any{name, ps.Collected, ps.Negative})
	}
	rows = append(rows, []any{}, []any{"keyword", "count"})
	for _, ks := range export.Summary.KeywordStats {
		rows = append(rows, []any{ks.Keyword, ks.Count})
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
