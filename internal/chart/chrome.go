package chart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeConfig holds browser launch configuration.
type ChromeConfig struct {
	ExecPath  string
	UserAgent string
	Width     int
	Height    int
	NoSandbox bool
}

// Chrome launches headless Chrome/Chromium through chromedp's exec allocator.
type Chrome struct {
	cfg ChromeConfig
}

func NewChrome(cfg ChromeConfig) *Chrome {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 800, 600
	}
	return &Chrome{cfg: cfg}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(c.cfg.Width, c.cfg.Height),
	)
	if c.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.cfg.UserAgent))
	}
	if c.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ExecPath))
	}
	if c.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Launch starts a fresh browser process and opens one page in it.
func (c *Chrome) Launch(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser and attaches to its first tab.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	slog.Debug("browser launched", "width", c.cfg.Width, "height", c.cfg.Height)

	return &chromeSession{ctx: tabCtx, cancel: tabCancel, allocCtx: allocCtx, allocCancel: allocCancel}, nil
}

type chromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func (s *chromeSession) Navigate(url string) error {
	return chromedp.Run(s.ctx, navigateDOMContentLoaded(url))
}

func (s *chromeSession) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Screenshot() ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close asks the browser to exit, then cancels the allocator, which kills the
// process if it is still alive and waits for it.
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && s.ctx.Err() == nil {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.cancel()
		s.allocCancel()
		slog.Debug("browser released")
	})
	return s.closeErr
}

// navigateDOMContentLoaded navigates and returns once the new document has
// been parsed, without waiting for subresources or the load event.
func navigateDOMContentLoaded(url string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		parsed := make(chan cdp.LoaderID, 16)
		chromedp.ListenTarget(lctx, func(ev any) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "DOMContentLoaded" {
				select {
				case parsed <- e.LoaderID:
				default:
				}
			}
		})

		_, loaderID, errorText, err := page.Navigate(url).Do(ctx)
		switch {
		case err != nil:
			return err
		case errorText != "":
			return fmt.Errorf("page load error %s", errorText)
		}

		for {
			select {
			case id := <-parsed:
				if loaderID == "" || id == loaderID {
					return nil
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
