// Package app builds the bot's collaborators once from configuration and runs
// the chat transport alongside the admin API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dgnsrekt/chartbot/internal/alchemy"
	"github.com/dgnsrekt/chartbot/internal/api"
	"github.com/dgnsrekt/chartbot/internal/apperr"
	"github.com/dgnsrekt/chartbot/internal/bot"
	"github.com/dgnsrekt/chartbot/internal/chart"
	"github.com/dgnsrekt/chartbot/internal/config"
	"github.com/dgnsrekt/chartbot/internal/dexscreener"
	"github.com/dgnsrekt/chartbot/internal/discord"
	"github.com/dgnsrekt/chartbot/internal/market"
	"github.com/dgnsrekt/chartbot/internal/netutil"
	"github.com/dgnsrekt/chartbot/internal/notify"
	"github.com/dgnsrekt/chartbot/internal/reply"
	"github.com/dgnsrekt/chartbot/internal/snapshot"
	"github.com/dgnsrekt/chartbot/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

// App is the application context. It is immutable after New and shared by
// every command invocation.
type App struct {
	cfg        *config.Config
	httpClient *http.Client
	dispatcher *bot.Dispatcher
	charts     *chart.Service
	archive    *snapshot.Store
}

// Option customises New.
type Option func(*options)

type options struct {
	browser    chart.Browser
	httpClient *http.Client
}

// WithBrowser replaces the headless Chrome launcher.
func WithBrowser(b chart.Browser) Option {
	return func(o *options) { o.browser = b }
}

// WithHTTPClient replaces the client used for upstream APIs.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	if o.browser == nil {
		o.browser = chart.NewChrome(chart.ChromeConfig{
			ExecPath:  cfg.ChromePath,
			UserAgent: cfg.UserAgent,
			Width:     cfg.WindowWidth,
			Height:    cfg.WindowHeight,
			NoSandbox: cfg.NoSandbox,
		})
	}

	a := &App{
		cfg:        cfg,
		httpClient: o.httpClient,
		charts: chart.NewService(o.browser, chart.Options{
			Settle:        cfg.SettleDuration(),
			ReadySelector: cfg.ReadySelector,
			Timeout:       cfg.CaptureTimeout(),
		}),
	}

	deps := bot.Deps{
		Tokens: dexscreener.NewClient(cfg.DexScreenerBaseURL, o.httpClient),
		NFTs:   alchemy.NewClient(cfg.AlchemyBaseURL, cfg.AlchemyAPIKey, o.httpClient),
		Charts: a.charts,
		Footer: market.Footer{Text: cfg.FooterText, IconURL: cfg.FooterIconURL},
	}
	if cfg.AlertWebhookURL != "" {
		deps.Alerts = notify.NewWebhook(cfg.AlertWebhookURL, o.httpClient)
	}
	if cfg.ArchiveDir != "" {
		store, err := snapshot.NewStore(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		a.archive = store
		deps.Archive = store
	}
	a.dispatcher = bot.NewDispatcher(deps)
	return a, nil
}

// Dispatcher returns the command dispatcher shared by the transports.
func (a *App) Dispatcher() *bot.Dispatcher { return a.dispatcher }

// Close releases pooled upstream connections.
func (a *App) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}

type transport interface {
	Run(ctx context.Context) error
}

func (a *App) newTransport() (transport, error) {
	switch a.cfg.Transport {
	case config.TransportTelegram:
		return telegram.New(a.cfg.TelegramToken, a.dispatcher)
	case config.TransportDiscord:
		return discord.New(a.cfg.DiscordToken, a.cfg.StatusText, a.dispatcher)
	}
	return nil, fmt.Errorf("unknown transport %q", a.cfg.Transport)
}

// Run serves the admin API (when enabled) and the chat transport until ctx is
// cancelled or the transport fails.
func (a *App) Run(ctx context.Context) error {
	t, err := a.newTransport()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, err := a.startAdmin(cancel)
	if err != nil {
		return err
	}

	slog.Info("chat transport starting", "transport", a.cfg.Transport)
	runErr := t.Run(ctx)
	cancel()

	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("admin shutdown failed", "error", err)
		}
	}
	return runErr
}

func (a *App) startAdmin(onFail context.CancelFunc) (*http.Server, error) {
	if a.cfg.AdminBindAddr == "" {
		slog.Info("admin api disabled")
		return nil, nil
	}
	bindAddr, err := netutil.SelectBindAddr(a.cfg.AdminBindAddr, a.cfg.AdminPortCandidates, a.cfg.AdminPortFallback)
	if err != nil {
		return nil, fmt.Errorf("select admin bind address: %w", err)
	}

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(a), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("admin api listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("admin server failed", "error", err)
			onFail()
		}
	}()
	return srv, nil
}

// Admin API service.

func (a *App) Health(context.Context) api.Health {
	return api.Health{Status: "ok", Transport: a.cfg.Transport, Archive: a.archive != nil}
}

func (a *App) PreviewToken(ctx context.Context, address string) (reply.Payload, error) {
	return a.dispatcher.PreviewToken(ctx, address)
}

func (a *App) CaptureChart(ctx context.Context, rawURL string) (snapshot.Meta, error) {
	store, err := a.store()
	if err != nil {
		return snapshot.Meta{}, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return snapshot.Meta{}, apperr.New(apperr.CodeUsage, "url must be an absolute http(s) URL", err)
	}

	png, err := a.charts.Capture(ctx, u.String())
	if err != nil {
		return snapshot.Meta{}, err
	}
	return store.Archive(u.String(), png)
}

func (a *App) ListSnapshots(context.Context) ([]snapshot.Meta, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	return store.List()
}

func (a *App) GetSnapshot(_ context.Context, id string) (snapshot.Meta, error) {
	store, err := a.store()
	if err != nil {
		return snapshot.Meta{}, err
	}
	return store.Get(id)
}

func (a *App) ReadSnapshotImage(_ context.Context, id string) ([]byte, string, error) {
	store, err := a.store()
	if err != nil {
		return nil, "", err
	}
	return store.ReadImage(id)
}

func (a *App) DeleteSnapshot(_ context.Context, id string) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	return store.Delete(id)
}

func (a *App) store() (*snapshot.Store, error) {
	if a.archive == nil {
		return nil, apperr.New(apperr.CodeArchiveDisabled, "snapshot archive is disabled (set CHART_ARCHIVE_DIR)", nil)
	}
	return a.archive, nil
}
