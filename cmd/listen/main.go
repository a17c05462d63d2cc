package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bioenergetic/forum-bridge/internal/config"
	"github.com/bioenergetic/forum-bridge/internal/domain"
	"github.com/bioenergetic/forum-bridge/internal/forum"
	"github.com/bioenergetic/forum-bridge/internal/ledger"
	"github.com/bioenergetic/forum-bridge/internal/microblog"
	"github.com/bioenergetic/forum-bridge/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StreamURL == "" {
		return fmt.Errorf("MICROBLOG_STREAM_URL is required")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	listener := stream.NewListener(cfg.StreamURL, cfg.MicroblogBotHandle, svc.MirrorThread, logger)
	go func() {
		if err := listener.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("stream listener exited with error", "error", err)
		}
	}()

	logger.Info("listening for tagged statuses", "handle", cfg.MicroblogBotHandle)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	return nil
}
