// Package browser wraps one Chrome automation session behind a small
// interface: navigate, wait, read markup, click with retry, and background
// tab management. It knows nothing about any particular site.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/heritage-kr/noticehub/internal/apperr"
)

// DefaultWaitTimeout bounds every wait-for-element call.
const DefaultWaitTimeout = 10 * time.Second

// maxClickAttempts bounds click retries against the same target.
const maxClickAttempts = 5

// TabID identifies one open tab within a session.
type TabID string

// Session is the page-automation surface the crawler consumes. The
// production implementation drives Chrome; tests substitute a fake.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitElement(ctx context.Context, selector string, timeout time.Duration) error
	InnerHTML(ctx context.Context, selector string) (string, error)
	ElementExists(ctx context.Context, selector string) (bool, error)
	ClickWithRetry(ctx context.Context, selector string) error
	OpenBackgroundTab(ctx context.Context, url string) (TabID, error)
	SwitchTab(ctx context.Context, id TabID) error
	CloseTab(ctx context.Context, id TabID) error
	Close() error
}

// Options configures the Chrome session.
type Options struct {
	Headless  bool
	NoImages  bool
	UserAgent string
	Timeout   time.Duration // per wait-for-element, defaults to DefaultWaitTimeout
}

// DefaultOptions returns the crawl defaults: headless, images disabled.
func DefaultOptions() Options {
	return Options{
		Headless: true,
		NoImages: true,
		Timeout:  DefaultWaitTimeout,
	}
}

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// ChromeSession drives one headless Chrome process via chromedp. One tab is
// current at a time; all element operations address the current tab.
type ChromeSession struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	opts        Options

	tabs    map[TabID]*tab
	current TabID
}

const mainTab = TabID("main")

// NewChromeSession starts the browser and opens the main tab. The session
// must be closed on every exit path to avoid leaking the Chrome process.
func NewChromeSession(ctx context.Context, opts Options) (*ChromeSession, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWaitTimeout
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if opts.NoImages {
		allocOpts = append(allocOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	// Start the browser and pin request headers for the Korean sources.
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept-Language": "ko-KR,ko;q=0.9,en;q=0.5",
		})),
	)
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, apperr.NewConnectivity("browser", err)
	}

	s := &ChromeSession{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		opts:        opts,
		tabs:        map[TabID]*tab{mainTab: {ctx: tabCtx, cancel: tabCancel}},
		current:     mainTab,
	}
	return s, nil
}

func (s *ChromeSession) tabCtx() context.Context {
	return s.tabs[s.current].ctx
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.tabCtx(), chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *ChromeSession) WaitElement(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = s.opts.Timeout
	}
	waitCtx, cancel := context.WithTimeout(s.tabCtx(), timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return apperr.NewInteraction(selector, 1, err)
	}
	return nil
}

func (s *ChromeSession) InnerHTML(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := chromedp.Run(s.tabCtx(), chromedp.InnerHTML(selector, &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read inner HTML of %q: %w", selector, err)
	}
	return out, nil
}

// ElementExists probes the current tab without waiting. Used by the batch
// fetcher to poll background tabs for rendered article containers.
func (s *ChromeSession) ElementExists(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var exists bool
	expr := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	if err := chromedp.Run(s.tabCtx(), chromedp.Evaluate(expr, &exists)); err != nil {
		return false, fmt.Errorf("probe %q: %w", selector, err)
	}
	return exists, nil
}

// ClickWithRetry clicks the same target up to maxClickAttempts times,
// re-waiting for the element before each attempt.
func (s *ChromeSession) ClickWithRetry(ctx context.Context, selector string) error {
	var lastErr error
	for attempt := 1; attempt <= maxClickAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.WaitElement(ctx, selector, s.opts.Timeout); err != nil {
			lastErr = err
			slog.Warn("click target not ready",
				"selector", selector,
				"attempt", attempt,
				"max_attempts", maxClickAttempts,
				"error", err)
			continue
		}
		if err := chromedp.Run(s.tabCtx(), chromedp.Click(selector, chromedp.ByQuery)); err != nil {
			lastErr = err
			slog.Warn("click failed",
				"selector", selector,
				"attempt", attempt,
				"max_attempts", maxClickAttempts,
				"error", err)
			continue
		}
		return nil
	}
	return apperr.NewInteraction(selector, maxClickAttempts, lastErr)
}

// OpenBackgroundTab opens a new tab in the same browser, starts loading the
// URL and returns without waiting for the load to finish. The caller polls
// readiness via SwitchTab + ElementExists.
func (s *ChromeSession) OpenBackgroundTab(ctx context.Context, url string) (TabID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tabCtx, cancel := chromedp.NewContext(s.tabs[mainTab].ctx)

	// Fire the navigation without waiting for the load to finish; the
	// caller polls readiness through SwitchTab and ElementExists.
	start := chromedp.ActionFunc(func(c context.Context) error {
		_, _, errorText, _, err := page.Navigate(url).Do(c)
		if err != nil {
			return err
		}
		if errorText != "" {
			return errors.New(errorText)
		}
		return nil
	})
	if err := chromedp.Run(tabCtx, start); err != nil {
		cancel()
		return "", fmt.Errorf("open tab for %s: %w", url, err)
	}

	id := TabID(uuid.NewString())
	s.tabs[id] = &tab{ctx: tabCtx, cancel: cancel}
	return id, nil
}

func (s *ChromeSession) SwitchTab(_ context.Context, id TabID) error {
	if _, ok := s.tabs[id]; !ok {
		return apperr.NewValidationf("unknown tab %q", id)
	}
	s.current = id
	return nil
}

func (s *ChromeSession) CloseTab(_ context.Context, id TabID) error {
	t, ok := s.tabs[id]
	if !ok {
		return apperr.NewValidationf("unknown tab %q", id)
	}
	if id == mainTab {
		return apperr.NewValidation("cannot close the main tab")
	}
	t.cancel()
	delete(s.tabs, id)
	if s.current == id {
		s.current = mainTab
	}
	return nil
}

// Close shuts the browser down, closing every tab.
func (s *ChromeSession) Close() error {
	for id, t := range s.tabs {
		if id != mainTab {
			t.cancel()
		}
	}
	if t, ok := s.tabs[mainTab]; ok {
		t.cancel()
	}
	s.allocCancel()
	s.tabs = map[TabID]*tab{}
	return nil
}

var _ Session = (*ChromeSession)(nil)
