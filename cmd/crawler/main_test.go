package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-critique-crawler/internal/config"
)

func parse(t *testing.T, args ...string) (*flags, *config.Config, []string, error) {
	t.Helper()
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))

	f := &flags{}
	f.keywords, _ = cmd.Flags().GetStringSlice("keywords")
	f.platforms, _ = cmd.Flags().GetStringSlice("platforms")
	f.maxPages, _ = cmd.Flags().GetInt("max-pages")
	f.noContent, _ = cmd.Flags().GetBool("no-content")
	f.outputDir, _ = cmd.Flags().GetString("output")

	cfg := config.Default()
	names, err := applyFlags(cfg, f, cmd)
	return f, cfg, names, err
}

func TestApplyFlagsDefaults(t *testing.T) {
	_, cfg, names, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, config.PlatformOrder, names)
	assert.True(t, cfg.FetchContent)
	assert.Equal(t, 3, cfg.MaxPages)
}

func TestApplyFlagsOverrides(t *testing.T) {
	_, cfg, names, err := parse(t,
		"--keywords", "해설 오류,리트 해설",
		"--platforms", "orbi,dcinside",
		"--max-pages", "1",
		"--no-content",
		"--output", "out",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"orbi", "dcinside"}, names)
	assert.Equal(t, []string{"해설 오류", "리트 해설"}, cfg.Keywords)
	assert.Equal(t, 1, cfg.MaxPages)
	assert.False(t, cfg.FetchContent)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestApplyFlagsUnknownPlatform(t *testing.T) {
	_, _, _, err := parse(t, "--platforms", "facebook")
	assert.ErrorContains(t, err, "unknown platform")
}

type recordingAlerter struct {
	sent []error
	err  error
}

func (a *recordingAlerter) SendError(err error) error {
	a.sent = append(a.sent, err)
	return a.err
}

func TestAlertFailureSendsRunError(t *testing.T) {
	a := &recordingAlerter{}
	runErr := errors.New("export results: disk full")

	alertFailure(a, runErr, zaptest.NewLogger(t).Sugar())

	require.Len(t, a.sent, 1)
	assert.ErrorIs(t, a.sent[0], runErr)
}

func TestAlertFailureSurvivesSendError(t *testing.T) {
	a := &recordingAlerter{err: errors.New("telegram down")}

	assert.NotPanics(t, func() {
		alertFailure(a, errors.New("boom"), zaptest.NewLogger(t).Sugar())
	})
	assert.Len(t, a.sent, 1)
}

func TestNewAlerterWithoutTelegram(t *testing.T) {
	cfg := config.Default()
	a := newAlerter(cfg, zaptest.NewLogger(t).Sugar())
	assert.Nil(t, a)
	alertFailure(a, errors.New("ignored"), zaptest.NewLogger(t).Sugar())
}
