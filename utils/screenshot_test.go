package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestScreenshotPath(t *testing.T) {
	d := NewScreenShotDebugger(zaptest.NewLogger(t).Sugar())
	ts := time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)

	got := d.ScreenshotPath("navercafe-login-failed", ts)
	assert.Equal(t, filepath.Join("logs", "screenshots", "navercafe-login-failed_2026-03-09_14-05-07.png"), got)
}
