package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the server and the batch notifier.
type Config struct {
	ListenAddr      string
	DatabaseURL     string
	GistID          string
	GistToken       string
	AnthropicAPIKey string
	TelegramToken   string
	TelegramChatID  int64
	NotifyInterval  time.Duration
	NotifyDailyAt   string
	SentLogPath     string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:      strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GistID:          strings.TrimSpace(os.Getenv("GITHUB_GIST_ID")),
		GistToken:       strings.TrimSpace(os.Getenv("GITHUB_GIST_PAT")),
		AnthropicAPIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		NotifyInterval:  parseInterval(strings.TrimSpace(os.Getenv("NOTIFY_INTERVAL_HOURS"))),
		NotifyDailyAt:   strings.TrimSpace(os.Getenv("NOTIFY_DAILY_AT")),
		SentLogPath:     strings.TrimSpace(os.Getenv("SENT_LOG_PATH")),
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskquest.db"
	}
	if cfg.NotifyInterval == 0 {
		cfg.NotifyInterval = 3 * time.Hour
	}
	if cfg.SentLogPath == "" {
		cfg.SentLogPath = "data/sent.json"
	}

	if cfg.GistID == "" {
		return cfg, fmt.Errorf("GITHUB_GIST_ID is required")
	}
	if cfg.GistToken == "" {
		return cfg, fmt.Errorf("GITHUB_GIST_PAT is required")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
