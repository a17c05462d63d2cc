package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/bioenergetic/forum-bridge/internal/archive"
	"github.com/bioenergetic/forum-bridge/internal/config"
	"github.com/bioenergetic/forum-bridge/internal/forum"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var noZip bool
	flag.BoolVar(&noZip, "no-zip", false, "skip packaging the download directory")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	base, err := url.Parse(cfg.ForumBaseURL)
	if err != nil {
		return fmt.Errorf("parse forum base url: %w", err)
	}

	forumClient, err := forum.NewClient(cfg.ForumBaseURL, cfg.ForumUsername, cfg.ForumPassword, forum.Options{
		BotUsername: cfg.BotUsername,
		Window:      cfg.MentionWindow,
		CategoryID:  cfg.MirrorCategoryID,
	})
	if err != nil {
		return fmt.Errorf("create forum client: %w", err)
	}

	ctx := context.Background()
	if err := forumClient.Login(ctx); err != nil {
		return err
	}

	idx, err := archive.OpenIndex(cfg.ArchiveIndexPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	tids, err := forumClient.RecentTopicIDs(ctx)
	if err != nil {
		return err
	}

	type target struct {
		tid int64
		url string
	}
	var targets []target
	for _, tid := range tids {
		done, err := idx.IsArchived(tid)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		targets = append(targets, target{
			tid: tid,
			url: fmt.Sprintf("%s/topic/%d", cfg.ForumBaseURL, tid),
		})
	}

	if len(targets) == 0 {
		logger.Info("nothing new to archive", "recent_topics", len(tids))
		return nil
	}

	urls := make([]string, len(targets))
	for i, t := range targets {
		urls[i] = t.url
	}
	if err := archive.WriteURLList(cfg.ArchiveURLsFile, urls); err != nil {
		return err
	}

	archiver := archive.NewArchiver(base.Host, cfg.ArchiveWait, logger)
	if err := archiver.Run(ctx, cfg.ArchiveURLsFile); err != nil {
		return err
	}

	for _, t := range targets {
		if err := idx.MarkArchived(t.tid, t.url); err != nil {
			return err
		}
	}
	logger.Info("archived topics", "count", len(targets))

	if noZip {
		return nil
	}

	out := cfg.ArchiveDir + ".zip"
	if err := archive.Zip(cfg.ArchiveDir, out); err != nil {
		return err
	}
	logger.Info("packaged archive", "file", out)

	return nil
}
