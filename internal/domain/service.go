package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// titleLimit bounds the derived title of a reverse-mirrored topic.
const titleLimit = 70

// Config carries the pipeline settings shared by both directions.
type Config struct {
	// BotUsername is the forum account whose mentions trigger mirroring.
	BotUsername string

	// CharLimit bounds the untrimmed length of every emitted message.
	CharLimit int

	// CategoryBlacklist lists forum categories that are never mirrored.
	CategoryBlacklist []Category
}

// MirrorService owns the content-mirroring pipeline for both directions.
// All remote calls are issued sequentially; any failure aborts the run in
// progress, partial assemblies are discarded.
type MirrorService struct {
	cfg       Config
	forum     ForumClient
	microblog MicroblogClient
	ledger    Ledger
	logger    *slog.Logger

	blacklist map[Category]struct{}
}

// NewMirrorService wires the pipeline to its collaborators.
func NewMirrorService(cfg Config, forum ForumClient, microblog MicroblogClient, ledger Ledger, logger *slog.Logger) *MirrorService {
	blacklist := make(map[Category]struct{}, len(cfg.CategoryBlacklist))
	for _, c := range cfg.CategoryBlacklist {
		blacklist[c] = struct{}{}
	}
	return &MirrorService{
		cfg:       cfg,
		forum:     forum,
		microblog: microblog,
		ledger:    ledger,
		logger:    logger,
		blacklist: blacklist,
	}
}

func (s *MirrorService) mention() string {
	return "@" + s.cfg.BotUsername
}

// MentionedTopics resolves which topics were tagged within the configured
// window. Entries from every result page are merged; two mentions in the
// same topic collapse to one slug, and blacklisted categories are excluded.
// Output order is not significant.
func (s *MirrorService) MentionedTopics(ctx context.Context) ([]string, error) {
	first, err := s.forum.SearchMentions(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("search mentions page 1: %w", err)
	}

	refs := append([]TopicRef(nil), first.Topics...)
	if first.MorePages {
		for page := 2; page <= first.PageCount; page++ {
			next, err := s.forum.SearchMentions(ctx, page)
			if err != nil {
				return nil, fmt.Errorf("search mentions page %d: %w", page, err)
			}
			refs = append(refs, next.Topics...)
		}
	}

	seen := make(map[string]struct{}, len(refs))
	var slugs []string
	for _, ref := range refs {
		if _, ok := s.blacklist[ref.Category]; ok {
			continue
		}
		if _, ok := seen[ref.Slug]; ok {
			continue
		}
		seen[ref.Slug] = struct{}{}
		slugs = append(slugs, ref.Slug)
	}

	s.logger.Info("resolved mentioned topics", "matches", first.MatchCount, "topics", len(slugs))
	return slugs, nil
}

// AssembleTopic walks every page of a topic and merges the posts into one
// chronologically ordered Topic, filtered down to the mirrorable content.
// Page 1 is fetched exactly once; a failed page discards the whole
// assembly.
func (s *MirrorService) AssembleTopic(ctx context.Context, slug string) (*Topic, error) {
	first, err := s.forum.TopicPage(ctx, slug, 1)
	if err != nil {
		return nil, fmt.Errorf("topic %s page 1: %w", slug, err)
	}

	posts := append([]Post(nil), first.Posts...)
	for page := 2; page <= first.PageCount; page++ {
		next, err := s.forum.TopicPage(ctx, slug, page)
		if err != nil {
			return nil, fmt.Errorf("topic %s page %d: %w", slug, page, err)
		}
		posts = append(posts, next.Posts...)
	}

	posts = FilterPosts(posts, s.mention())
	topic := NewTopic(first.ID, first.Title, first.Author, first.AuthorID, first.Date, posts)
	s.logger.Info("assembled topic", "slug", slug, "pages", first.PageCount, "posts", len(posts))
	return &topic, nil
}

// Thread renders a topic as an ordered sequence of bounded messages: the
// heading first, then every surviving post in order, each segmented to the
// configured limit.
func (s *MirrorService) Thread(topic *Topic) []string {
	messages := SplitMessage(topic.Heading(), s.cfg.CharLimit)
	for _, p := range topic.Posts {
		messages = append(messages, SplitMessage(p.Message(), s.cfg.CharLimit)...)
	}
	return messages
}

// MirrorTopic posts a topic to the microblog as one thread.
func (s *MirrorService) MirrorTopic(ctx context.Context, topic *Topic) error {
	messages := s.Thread(topic)
	if err := s.microblog.PostThread(ctx, messages); err != nil {
		return fmt.Errorf("post thread for topic %d: %w", topic.ID, err)
	}
	s.logger.Info("mirrored topic", "topic", topic.ID, "messages", len(messages))
	return nil
}

// UnrollThread fetches the thread a tagging status belongs to: the root
// status followed by its direct replies in chronological order. The reply
// listing is paginated the same way topic pages are.
func (s *MirrorService) UnrollThread(ctx context.Context, tagging Status) ([]Status, error) {
	rootID := tagging.InReplyToStatusID
	if rootID == 0 {
		// bot was tagged on the thread root itself
		rootID = tagging.ID
	}

	root, err := s.microblog.Status(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("fetch thread root %d: %w", rootID, err)
	}

	first, err := s.microblog.RepliesTo(ctx, root.Author, 1)
	if err != nil {
		return nil, fmt.Errorf("replies to %s page 1: %w", root.Author, err)
	}
	statuses := append([]Status(nil), first.Statuses...)
	for page := 2; page <= first.PageCount; page++ {
		next, err := s.microblog.RepliesTo(ctx, root.Author, page)
		if err != nil {
			return nil, fmt.Errorf("replies to %s page %d: %w", root.Author, page, err)
		}
		statuses = append(statuses, next.Statuses...)
	}

	var replies []Status
	for _, st := range statuses {
		if st.InReplyToStatusID == rootID {
			replies = append(replies, st)
		}
	}

	// listing is newest first; the thread reads oldest first
	thread := []Status{root}
	for i := len(replies) - 1; i >= 0; i-- {
		thread = append(thread, replies[i])
	}
	return thread, nil
}

// MirrorThread turns the thread behind a tagging status into a forum topic.
// The ledger gates the whole operation: an already-processed status is
// skipped, and its identifier is recorded only after every block was
// posted.
func (s *MirrorService) MirrorThread(ctx context.Context, tagging Status) error {
	id := strconv.FormatInt(tagging.ID, 10)
	done, err := s.ledger.IsProcessed(id)
	if err != nil {
		return fmt.Errorf("ledger check %s: %w", id, err)
	}
	if done {
		s.logger.Info("status already mirrored", "status", tagging.ID)
		return nil
	}

	thread, err := s.UnrollThread(ctx, tagging)
	if err != nil {
		return err
	}

	blocks := make([]string, len(thread))
	for i, st := range thread {
		blocks[i] = st.Render()
	}

	topicID, err := s.forum.CreateTopic(ctx, threadTitle(blocks[0]), blocks[0])
	if err != nil {
		return fmt.Errorf("create topic for status %d: %w", tagging.ID, err)
	}
	for i, block := range blocks[1:] {
		if err := s.forum.Reply(ctx, topicID, block); err != nil {
			return fmt.Errorf("reply %d to topic %d: %w", i+1, topicID, err)
		}
	}

	if err := s.ledger.Record(id); err != nil {
		return fmt.Errorf("ledger record %s: %w", id, err)
	}
	s.logger.Info("mirrored thread", "status", tagging.ID, "topic", topicID, "posts", len(blocks))
	return nil
}

// threadTitle derives a topic title from the first rendered block,
// truncating to the title limit with an ellipsis.
func threadTitle(block string) string {
	runes := []rune(block)
	if len(runes) <= titleLimit {
		return block
	}
	return string(runes[:titleLimit]) + "..."
}
