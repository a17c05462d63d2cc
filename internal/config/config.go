// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

const (
	basicCharLimit   = 280
	premiumCharLimit = 4000
)

// Config holds all configuration for the bridge.
type Config struct {
	// ForumBaseURL is the forum root URL, without a trailing slash.
	ForumBaseURL string

	// ForumUsername and ForumPassword are the bot's forum credentials.
	ForumUsername string
	ForumPassword string

	// BotUsername is the forum account whose mentions trigger forward
	// mirroring.
	BotUsername string

	// MentionWindow is the trailing search window for mentions.
	MentionWindow domain.Window

	// MinReplies is the minimum-reply-count filter for the mention search.
	MinReplies int

	// CategoryBlacklist lists forum categories that are never mirrored.
	CategoryBlacklist []domain.Category

	// MirrorCategoryID is the forum category reverse-mirrored topics are
	// created in.
	MirrorCategoryID int

	// Premium switches the per-message character limit.
	Premium bool

	// MicroblogBaseURL and MicroblogToken configure the status API client.
	MicroblogBaseURL string
	MicroblogToken   string

	// MicroblogBotHandle is the tag token tracked on the stream, with the
	// leading @.
	MicroblogBotHandle string

	// StreamURL is the websocket endpoint of the status stream.
	StreamURL string

	// LedgerPath is the dedup ledger file.
	LedgerPath string

	// Archiver settings.
	ArchiveDir       string
	ArchiveIndexPath string
	ArchiveURLsFile  string
	ArchiveWait      int
}

// CharLimit returns the per-message character limit for the account tier.
func (c *Config) CharLimit() int {
	if c.Premium {
		return premiumCharLimit
	}
	return basicCharLimit
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ForumBaseURL:       envOrDefault("FORUM_BASE_URL", "https://bioenergetic.forum"),
		ForumUsername:      os.Getenv("FORUM_USERNAME"),
		ForumPassword:      os.Getenv("FORUM_PASSWORD"),
		BotUsername:        envOrDefault("BOT_USERNAME", "brad"),
		MicroblogBaseURL:   envOrDefault("MICROBLOG_BASE_URL", "https://api.twitter.com/1.1"),
		MicroblogToken:     os.Getenv("MICROBLOG_TOKEN"),
		MicroblogBotHandle: envOrDefault("MICROBLOG_BOT_HANDLE", "@mybot"),
		StreamURL:          os.Getenv("MICROBLOG_STREAM_URL"),
		LedgerPath:         envOrDefault("LEDGER_PATH", "extant_status_ids.csv"),
		ArchiveDir:         envOrDefault("ARCHIVE_DIR", "bioenergetic.forum"),
		ArchiveIndexPath:   envOrDefault("ARCHIVE_INDEX_PATH", "archive-index.db"),
		ArchiveURLsFile:    envOrDefault("ARCHIVE_URLS_FILE", "urls.txt"),
	}

	if cfg.ForumUsername == "" || cfg.ForumPassword == "" {
		return nil, fmt.Errorf("FORUM_USERNAME and FORUM_PASSWORD are required")
	}

	var err error
	if cfg.Premium, err = boolEnv("MICROBLOG_PREMIUM"); err != nil {
		return nil, err
	}

	window, err := domain.ParseWindow(envOrDefault("MENTION_WINDOW", "month"))
	if err != nil {
		return nil, fmt.Errorf("invalid MENTION_WINDOW: %w", err)
	}
	cfg.MentionWindow = window

	if cfg.MinReplies, err = intEnv("MENTION_MIN_REPLIES", 0); err != nil {
		return nil, err
	}
	if cfg.MirrorCategoryID, err = intEnv("MIRROR_CATEGORY_ID", -1); err != nil {
		return nil, err
	}
	if cfg.ArchiveWait, err = intEnv("ARCHIVE_WAIT_SECONDS", 10); err != nil {
		return nil, err
	}

	blacklist, err := parseCategories(envOrDefault("CATEGORY_BLACKLIST", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATEGORY_BLACKLIST: %w", err)
	}
	cfg.CategoryBlacklist = blacklist

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseCategories(csv string) ([]domain.Category, error) {
	var out []domain.Category
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Category(n))
	}
	return out, nil
}
