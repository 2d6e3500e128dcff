// Package chart renders chart web pages to PNG images in a headless browser.
package chart

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/chartbot/internal/apperr"
)

// Browser launches one isolated browser per call.
type Browser interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is a single page in a launched browser. Its lifetime is bound to
// the context given to Launch. Close releases the browser process and must be
// safe to call more than once.
type Session interface {
	Navigate(url string) error
	WaitVisible(selector string, timeout time.Duration) error
	Screenshot() ([]byte, error)
	Close() error
}

// Options tune a capture.
type Options struct {
	// Settle is the fixed wait between navigation and screenshot. Zero
	// captures as soon as DOMContentLoaded fires.
	Settle time.Duration
	// ReadySelector, when set, replaces the fixed wait with a wait for the
	// selector to become visible, bounded by Settle.
	ReadySelector string
	// Timeout bounds the whole launch/navigate/settle/capture cycle.
	Timeout time.Duration
}

// Service captures chart pages.
type Service struct {
	browser Browser
	opts    Options
}

func NewService(browser Browser, opts Options) *Service {
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	return &Service{browser: browser, opts: opts}
}

// Capture launches a browser, opens url, waits for the settle interval and
// returns a PNG of the viewport. The browser is released before Capture
// returns on every path.
func (s *Service) Capture(ctx context.Context, url string) ([]byte, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	sess, err := s.browser.Launch(ctx)
	if err != nil {
		return nil, apperr.New(apperr.CodeCapture, "launch browser", err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("browser release failed", "url", url, "error", closeErr)
		}
	}()

	if err := sess.Navigate(url); err != nil {
		slog.Error("chart navigation failed", "url", url, "error", err)
		return nil, apperr.New(apperr.CodeCapture, "navigate to chart", err)
	}

	if err := s.settle(ctx, sess, url); err != nil {
		return nil, apperr.New(apperr.CodeCapture, "wait for chart to render", err)
	}

	shot, err := sess.Screenshot()
	if err != nil {
		slog.Error("chart screenshot failed", "url", url, "error", err)
		return nil, apperr.New(apperr.CodeCapture, "capture screenshot", err)
	}

	slog.Info("chart captured", "url", url, "bytes", len(shot), "duration_ms", time.Since(start).Milliseconds())
	return shot, nil
}

func (s *Service) settle(ctx context.Context, sess Session, url string) error {
	if s.opts.ReadySelector != "" && s.opts.Settle > 0 {
		err := sess.WaitVisible(s.opts.ReadySelector, s.opts.Settle)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("chart ready selector not visible, capturing anyway",
			"url", url, "selector", s.opts.ReadySelector, "error", err)
		return nil
	}
	return sleepContext(ctx, s.opts.Settle)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
