package domain

import (
	"context"
	"time"
)

// TopicRef is one mention-search entry: the tagged topic and its category.
type TopicRef struct {
	Slug     string
	Category Category
}

// MentionPage is one page of mention-search matches. It is consumed once
// per query and never persisted.
type MentionPage struct {
	// Topics are the page's entries.
	Topics []TopicRef

	// MatchCount is the total number of matching posts.
	MatchCount int

	// PageCount is the total number of result pages.
	PageCount int

	// MorePages indicates whether pages beyond the first exist.
	MorePages bool
}

// TopicPage is one fetched page of a forum topic. Page 1 carries the
// thread-level metadata used by the assembler.
type TopicPage struct {
	ID        int64
	Title     string
	Author    string
	AuthorID  int64
	Date      time.Time
	PageCount int
	Posts     []Post
}

// StatusPage is one page of a microblog reply listing.
type StatusPage struct {
	Statuses  []Status
	PageCount int
}

// ForumClient is the forum-side API consumed by the pipelines.
type ForumClient interface {
	// SearchMentions returns one page of mention-search results for the
	// configured bot account and window.
	SearchMentions(ctx context.Context, page int) (*MentionPage, error)

	// TopicPage returns one page of a topic's posts. Page 1 includes the
	// topic metadata and the total page count.
	TopicPage(ctx context.Context, slug string, page int) (*TopicPage, error)

	// CreateTopic creates a new topic and returns its identifier.
	CreateTopic(ctx context.Context, title, content string) (int64, error)

	// Reply appends a reply to an existing topic.
	Reply(ctx context.Context, topicID int64, content string) error
}

// MicroblogClient is the microblog-side API consumed by the pipelines.
type MicroblogClient interface {
	// Status fetches a single status by identifier.
	Status(ctx context.Context, id int64) (Status, error)

	// RepliesTo returns one page of statuses addressed to the given
	// account, newest first. Page 1 includes the total page count.
	RepliesTo(ctx context.Context, account string, page int) (*StatusPage, error)

	// PostThread posts the messages as a chained thread, in order.
	PostThread(ctx context.Context, messages []string) error
}

// Ledger is the persisted, append-only record of already-mirrored external
// identifiers. Record does not deduplicate; callers must gate every Record
// with a prior IsProcessed check.
type Ledger interface {
	// IsProcessed reports whether id was recorded before.
	IsProcessed(id string) (bool, error)

	// Record appends id unconditionally.
	Record(id string) error
}
