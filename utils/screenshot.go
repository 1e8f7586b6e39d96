package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// ScreenShotDebugger saves full-page screenshots when a login or page check fails.
type ScreenShotDebugger struct {
	outputDir string
	log       *zap.SugaredLogger
}

func NewScreenShotDebugger(log *zap.SugaredLogger) *ScreenShotDebugger {
	dir := filepath.Join(".", "logs", "screenshots")
	os.MkdirAll(dir, 0755)
	return &ScreenShotDebugger{
		outputDir: dir,
		log:       log,
	}
}

// ScreenshotPath returns where a capture called name taken at ts is written.
func (s *ScreenShotDebugger) ScreenshotPath(name string, ts time.Time) string {
	filename := fmt.Sprintf("%s_%s.png", name, ts.Format("2006-01-02_15-04-05"))
	return filepath.Join(s.outputDir, filename)
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	path := s.ScreenshotPath(name, time.Now())
	s.log.Infof("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.log.Warnf("⚠️ Failed to capture screenshot: %v", err)
		return err
	}

	s.log.Infof("   Screenshot saved: %s", path)
	return nil
}
