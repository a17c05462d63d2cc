package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bioenergetic/forum-bridge/internal/config"
	"github.com/bioenergetic/forum-bridge/internal/domain"
	"github.com/bioenergetic/forum-bridge/internal/forum"
	"github.com/bioenergetic/forum-bridge/internal/ledger"
	"github.com/bioenergetic/forum-bridge/internal/microblog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dryRun bool
		limit  int
	)
	flag.BoolVar(&dryRun, "dry-run", false, "print rendered threads instead of posting them")
	flag.IntVar(&limit, "limit", 0, "mirror at most this many topics (0 = all)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	forumClient, err := forum.NewClient(cfg.ForumBaseURL, cfg.ForumUsername, cfg.ForumPassword, forum.Options{
		BotUsername: cfg.BotUsername,
		Window:      cfg.MentionWindow,
		MinReplies:  cfg.MinReplies,
		CategoryID:  cfg.MirrorCategoryID,
	})
	if err != nil {
		return fmt.Errorf("create forum client: %w", err)
	}

	ctx := context.Background()
	if err := forumClient.Login(ctx); err != nil {
		return err
	}

	ledgerStore, err := ledger.New(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	blog := microblog.NewClient(cfg.MicroblogBaseURL, cfg.MicroblogToken)

	svc := domain.NewMirrorService(domain.Config{
		BotUsername:       cfg.BotUsername,
		CharLimit:         cfg.CharLimit(),
		CategoryBlacklist: cfg.CategoryBlacklist,
	}, forumClient, blog, ledgerStore, logger)

	slugs, err := svc.MentionedTopics(ctx)
	if err != nil {
		return err
	}

	for i, slug := range slugs {
		if limit > 0 && i >= limit {
			break
		}

		topic, err := svc.AssembleTopic(ctx, slug)
		if err != nil {
			return err
		}

		if dryRun {
			out, err := json.MarshalIndent(svc.Thread(topic), "", "  ")
			if err != nil {
				return fmt.Errorf("render thread for %s: %w", slug, err)
			}
			fmt.Println(string(out))
			continue
		}

		if err := svc.MirrorTopic(ctx, topic); err != nil {
			return err
		}
	}

	return nil
}
