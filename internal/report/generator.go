// Package report renders a combined export as an HTML page and, through the
// browser session, as a PDF.
package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/storage"
)

//go:embed templates/report.html.tmpl
var templates embed.FS

// Printer turns an HTML document into PDF bytes. browser.Session implements it.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

type platformRow struct {
	Name      string
	Collected int
	Negative  int
}

type view struct {
	*storage.Export
	Platforms []platformRow
	Negative  []*models.Post
}

// Generator converts exports into HTML and PDF reports.
type Generator struct {
	tmpl *template.Template
}

func NewGenerator() (*Generator, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
	}
	tmpl, err := template.New("report.html.tmpl").Funcs(funcMap).ParseFS(templates, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// HTML renders export. Platforms are listed in run order when the settings
// carry it, then any others alphabetically.
func (g *Generator) HTML(export *storage.Export) (string, error) {
	v := view{Export: export}
	listed := map[string]bool{}
	for _, name := range export.Settings.Platforms {
		if ps, ok := export.Summary.Platforms[name]; ok && !listed[name] {
			v.Platforms = append(v.Platforms, platformRow{name, ps.Collected, ps.Negative})
			listed[name] = true
		}
	}
	var rest []string
	for name := range export.Summary.Platforms {
		if !listed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		ps := export.Summary.Platforms[name]
		v.Platforms = append(v.Platforms, platformRow{name, ps.Collected, ps.Negative})
	}

	for _, p := range export.Posts {
		if p.IsNegative {
			v.Negative = append(v.Negative, p)
		}
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// WriteHTML renders export next to its JSON file (results_x.json -> results_x.html).
func (g *Generator) WriteHTML(export *storage.Export, jsonPath string) (string, error) {
	html, err := g.HTML(export)
	if err != nil {
		return "", err
	}
	path := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".html"
	if err := SaveToFile([]byte(html), path); err != nil {
		return "", err
	}
	return path, nil
}

// WritePDF prints the rendered report with p and stores it next to jsonPath.
func (g *Generator) WritePDF(ctx context.Context, p Printer, export *storage.Export, jsonPath string) (string, error) {
	html, err := g.HTML(export)
	if err != nil {
		return "", err
	}
	pdfBytes, err := p.PrintPDF(ctx, html)
	if err != nil {
		return "", fmt.Errorf("could not generate PDF: %w", err)
	}
	path := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".pdf"
	if err := SaveToFile(pdfBytes, path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveToFile writes data to outputPath, creating parent directories.
func SaveToFile(data []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return os.WriteFile(outputPath, data, 0644)
}
