package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportDiscord  = "discord"
	TransportTelegram = "telegram"

	// DefaultSettleMS is how long a chart page is left to render after
	// DOMContentLoaded.
	DefaultSettleMS = 6000

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/93.0.4577.82 Safari/537.36"
)

// Config holds all configuration for the chart bot.
type Config struct {
	// Chat transport
	Transport     string
	DiscordToken  string
	TelegramToken string
	StatusText    string
	FooterText    string
	FooterIconURL string

	// Upstream APIs
	DexScreenerBaseURL string
	AlchemyBaseURL     string
	AlchemyAPIKey      string
	HTTPTimeoutMS      int

	// Chart capture
	ChromePath       string
	UserAgent        string
	WindowWidth      int
	WindowHeight     int
	NoSandbox        bool
	SettleMS         int
	ReadySelector    string
	CaptureTimeoutMS int
	ArchiveDir       string

	// Process
	AdminBindAddr       string
	AdminPortCandidates []string
	AdminPortFallback   bool
	AlertWebhookURL     string
	LogLevel            string
	LogFile             string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		Transport:          strings.ToLower(getEnvOrDefault("BOT_TRANSPORT", TransportDiscord)),
		DiscordToken:       os.Getenv("DISCORD_BOT_TOKEN"),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		StatusText:         getEnvOrDefault("BOT_STATUS", "With Orange"),
		FooterText:         getEnvOrDefault("BOT_FOOTER_TEXT", "i1n4r"),
		FooterIconURL:      getEnvOrDefault("BOT_FOOTER_ICON_URL", "https://media.discordapp.net/attachments/1129236917481918577/1130347033283276830/f4d28f04f343e307161a931a5080c440.png"),
		DexScreenerBaseURL: strings.TrimRight(getEnvOrDefault("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"), "/"),
		AlchemyBaseURL:     strings.TrimRight(getEnvOrDefault("ALCHEMY_BASE_URL", "https://eth-mainnet.g.alchemy.com"), "/"),
		AlchemyAPIKey:      getEnvOrDefault("ALCHEMY_API_KEY", "docs-demo"),
		HTTPTimeoutMS:      getEnvIntOrDefault("HTTP_TIMEOUT_MS", 30000),
		ChromePath:         os.Getenv("CHROME_PATH"),
		UserAgent:          getEnvOrDefault("CHART_USER_AGENT", DefaultUserAgent),
		NoSandbox:          getEnvBoolOrDefault("CHART_NO_SANDBOX", false),
		SettleMS:           getEnvIntOrDefault("CHART_SETTLE_MS", DefaultSettleMS),
		ReadySelector:      strings.TrimSpace(os.Getenv("CHART_READY_SELECTOR")),
		CaptureTimeoutMS:   getEnvIntOrDefault("CHART_CAPTURE_TIMEOUT_MS", 60000),
		ArchiveDir:         os.Getenv("CHART_ARCHIVE_DIR"),
		AdminBindAddr:      getEnvOrDefault("ADMIN_BIND_ADDR", "127.0.0.1:8188"),
		AdminPortFallback:  getEnvBoolOrDefault("ADMIN_PORT_FALLBACK", true),
		AlertWebhookURL:    os.Getenv("ALERT_WEBHOOK_URL"),
		LogLevel:           strings.ToLower(getEnvOrDefault("BOT_LOG_LEVEL", "info")),
		LogFile:            getEnvOrDefault("BOT_LOG_FILE", "logs/chartbot.log"),
	}

	cfg.AdminPortCandidates = splitCSV(getEnvOrDefault("ADMIN_PORT_CANDIDATES", "127.0.0.1:8189,127.0.0.1:8190,127.0.0.1:8191"))

	w, h, err := parseWindowSize(getEnvOrDefault("CHART_WINDOW_SIZE", "800,600"))
	if err != nil {
		return nil, err
	}
	cfg.WindowWidth, cfg.WindowHeight = w, h

	if cfg.SettleMS < 0 {
		cfg.SettleMS = 0
	}
	if cfg.CaptureTimeoutMS < cfg.SettleMS+1000 {
		cfg.CaptureTimeoutMS = cfg.SettleMS + 1000
	}

	return cfg, nil
}

// Validate checks that the credential for the selected transport is present.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportDiscord:
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_BOT_TOKEN is required for the %s transport", c.Transport)
		}
	case TransportTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the %s transport", c.Transport)
		}
	default:
		return fmt.Errorf("unknown BOT_TRANSPORT %q (want %s or %s)", c.Transport, TransportDiscord, TransportTelegram)
	}
	return nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

func (c *Config) SettleDuration() time.Duration {
	return time.Duration(c.SettleMS) * time.Millisecond
}

func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutMS) * time.Millisecond
}

func parseWindowSize(v string) (int, int, error) {
	parts := strings.Split(strings.ReplaceAll(v, "x", ","), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid CHART_WINDOW_SIZE %q (want WIDTH,HEIGHT)", v)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid CHART_WINDOW_SIZE width %q", parts[0])
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid CHART_WINDOW_SIZE height %q", parts[1])
	}
	return w, h, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
