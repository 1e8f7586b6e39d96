package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"go-critique-crawler/internal/logger"
	"go-critique-crawler/utils"
)

// ErrFrameNotFound is returned when a named frame is absent from the page.
var ErrFrameNotFound = errors.New("frame not found")

type Options struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
	Locale    string
}

// Field is one input of a login form.
type Field struct {
	Selector string
	Value    string
}

// LoginForm describes a form-based login: fields are filled in order, then
// Submit is clicked.
type LoginForm struct {
	URL    string
	Fields []Field
	Submit string
}

// Session owns the one browser page shared by every platform in a run.
// It is not safe for concurrent use.
type Session struct {
	opts Options
	log  *zap.SugaredLogger

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	// jar remembers restored/saved cookies so Restart keeps the login.
	jar []playwright.OptionalCookie
}

func NewSession(opts Options, log *zap.SugaredLogger) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Session{opts: opts, log: logger.OrNop(log)}
}

// Page returns the shared page, launching the browser on first use.
func (s *Session) Page() (playwright.Page, error) {
	if s.page != nil {
		return s.page, nil
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s.page, nil
}

func (s *Session) start() error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	s.pw = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.opts.Headless),
	})
	if err != nil {
		s.dispose()
		return fmt.Errorf("could not launch chromium: %w", err)
	}
	s.browser = browser

	ctxOpts := playwright.BrowserNewContextOptions{}
	if s.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(s.opts.UserAgent)
	}
	if s.opts.Locale != "" {
		ctxOpts.Locale = playwright.String(s.opts.Locale)
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		s.dispose()
		return fmt.Errorf("could not create browser context: %w", err)
	}
	s.context = bctx

	if len(s.jar) > 0 {
		if err := bctx.AddCookies(s.jar); err != nil {
			s.log.Warnf("⚠️ Could not re-apply %d cookies: %v", len(s.jar), err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		s.dispose()
		return fmt.Errorf("could not create page: %w", err)
	}
	timeoutMs := float64(s.opts.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMs)
	page.SetDefaultNavigationTimeout(timeoutMs)
	s.page = page

	s.log.Info("🌐 Browser session started")
	return nil
}

// dispose releases everything start acquired, in reverse order.
func (s *Session) dispose() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil && !IsClosed(err) {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil && !IsClosed(err) {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !IsClosed(err) {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	s.page, s.context, s.browser, s.pw = nil, nil, nil, nil
	return errors.Join(errs...)
}

// Close releases the session. Safe to call more than once.
func (s *Session) Close() error {
	return s.dispose()
}

// Restart throws away a dead session and starts a fresh one. The current
// navigation is lost; remembered cookies are re-applied.
func (s *Session) Restart() error {
	s.log.Warn("♻️ Restarting browser session")
	if err := s.dispose(); err != nil {
		s.log.Debugf("dispose during restart: %v", err)
	}
	return s.start()
}

// IsClosed reports whether err means the page, context or browser is gone.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, playwright.ErrTargetClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "has been closed") || strings.Contains(msg, "Target closed")
}

// LoadCredentials restores cookies from path. Any failure means "nothing to
// restore" and returns false.
func (s *Session) LoadCredentials(path string) bool {
	if path == "" {
		return false
	}
	cookies, err := ReadCookieFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warnf("⚠️ Ignoring unreadable credentials %s: %v", path, err)
		}
		return false
	}
	if len(cookies) == 0 {
		return false
	}

	if _, err := s.Page(); err != nil {
		s.log.Warnf("⚠️ Could not start browser to restore credentials: %v", err)
		return false
	}

	pwCookies := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		pwCookies[i] = c.ToPlaywright()
	}
	if err := s.context.AddCookies(pwCookies); err != nil {
		s.log.Warnf("⚠️ Could not restore credentials %s: %v", path, err)
		return false
	}
	s.jar = append(s.jar, pwCookies...)
	s.log.Infof("🍪 Restored %d cookies from %s", len(cookies), path)
	return true
}

// SaveCredentials writes the current context cookies to path. Failures are logged.
func (s *Session) SaveCredentials(path string) {
	if path == "" || s.context == nil {
		s.log.Warnf("⚠️ No session to save credentials from (%s)", path)
		return
	}
	pwCookies, err := s.context.Cookies()
	if err != nil {
		s.log.Warnf("⚠️ Could not read cookies: %v", err)
		return
	}

	cookies := make([]Cookie, len(pwCookies))
	s.jar = s.jar[:0]
	for i, c := range pwCookies {
		cookies[i] = CookieFromPlaywright(c)
		s.jar = append(s.jar, cookies[i].ToPlaywright())
	}
	if err := WriteCookieFile(path, cookies); err != nil {
		s.log.Warnf("⚠️ Could not save credentials to %s: %v", path, err)
		return
	}
	s.log.Infof("💾 Saved %d cookies to %s", len(cookies), path)
}

// navigate loads url in the shared page, restarting once if the session died.
func (s *Session) navigate(ctx context.Context, url string) (playwright.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := s.Page()
	if err != nil {
		return nil, err
	}

	gotoOpts := playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}
	if _, err = page.Goto(url, gotoOpts); err == nil {
		return page, nil
	}
	if !IsClosed(err) {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	if rerr := s.Restart(); rerr != nil {
		return nil, fmt.Errorf("restart after %v: %w", err, rerr)
	}
	if _, err := s.page.Goto(url, gotoOpts); err != nil {
		return nil, fmt.Errorf("navigate %s after restart: %w", url, err)
	}
	return s.page, nil
}

// Render navigates to url and returns the top-level document HTML.
func (s *Session) Render(ctx context.Context, url string) (string, error) {
	page, err := s.navigate(ctx, url)
	if err != nil {
		return "", err
	}
	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content of %s: %w", url, err)
	}
	return html, nil
}

// RenderFrame navigates to url, enters the frame called name and returns its
// HTML. The session is back on the top-level frame when it returns.
func (s *Session) RenderFrame(ctx context.Context, url, name string) (string, error) {
	page, err := s.navigate(ctx, url)
	if err != nil {
		return "", err
	}

	var html string
	err = withFrame(page, name, func(f playwright.Frame) error {
		if err := f.WaitForLoadState(playwright.FrameWaitForLoadStateOptions{
			State: playwright.LoadStateDomcontentloaded,
		}); err != nil {
			return err
		}
		var cerr error
		html, cerr = f.Content()
		return cerr
	})
	if err != nil {
		return "", fmt.Errorf("frame %q of %s: %w", name, url, err)
	}
	return html, nil
}

// withFrame runs fn against the named frame. The page itself never leaves the
// top-level frame, so nothing has to be switched back afterwards.
func withFrame(page playwright.Page, name string, fn func(playwright.Frame) error) error {
	sel := fmt.Sprintf(`iframe[name="%s"], iframe#%s`, name, name)
	if err := page.Locator(sel).First().WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateAttached,
	}); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFrameNotFound, name, err)
	}

	frame := page.Frame(playwright.PageFrameOptions{Name: playwright.String(name)})
	if frame == nil {
		return fmt.Errorf("%w: %s", ErrFrameNotFound, name)
	}

	return fn(frame)
}

// SubmitForm opens form.URL, fills the fields and submits.
func (s *Session) SubmitForm(ctx context.Context, form LoginForm) error {
	page, err := s.navigate(ctx, form.URL)
	if err != nil {
		return err
	}
	for _, f := range form.Fields {
		if err := page.Locator(f.Selector).First().Fill(f.Value); err != nil {
			return fmt.Errorf("fill %s: %w", f.Selector, err)
		}
	}
	if err := page.Locator(form.Submit).First().Click(); err != nil {
		return fmt.Errorf("submit %s: %w", form.Submit, err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("wait after submit: %w", err)
	}
	return nil
}

// Capture saves a debug screenshot of the current page.
func (s *Session) Capture(name, message string) {
	if s.page == nil {
		return
	}
	if err := utils.NewScreenShotDebugger(s.log).CaptureAndLog(s.page, name, message); err != nil {
		s.log.Debugf("screenshot %s: %v", name, err)
	}
}

// PrintPDF loads html into the shared page and prints it as an A4 PDF.
func (s *Session) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := s.Page()
	if err != nil {
		return nil, err
	}

	if err := page.SetContent(html, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	margin := playwright.String("10mm")
	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin:          &playwright.Margin{Top: margin, Bottom: margin, Left: margin, Right: margin},
	})
	if err != nil {
		return nil, fmt.Errorf("could not print PDF: %w", err)
	}
	return pdfBytes, nil
}
