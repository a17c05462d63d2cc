package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bioenergetic/forum-bridge/internal/sanitize"
)

// Post is one message within a forum topic. Sanitization happens at
// construction; a Post is never mutated afterwards.
type Post struct {
	// ID is the post's unique identifier on the forum.
	ID int64

	// Username is the censored author name. Never empty: when censorship
	// reduces it to noise it falls back to the identifier.
	Username string

	// Banned marks posts by banned accounts.
	Banned bool

	// RepliesTo is the censored reply-target name, empty when not a reply.
	RepliesTo string

	// Date is the post's creation timestamp.
	Date time.Time

	// Content is the censored raw content.
	Content string

	// Text is the censored plain-text content derived from Content.
	Text string
}

// NewPost builds a sanitized Post from a fetched record.
func NewPost(id int64, username string, banned bool, repliesTo string, date time.Time, content string) Post {
	p := Post{
		ID:       id,
		Username: sanitize.CensorName(username, id),
		Banned:   banned,
		Date:     date,
		Content:  sanitize.Censor(content),
		Text:     sanitize.Censor(sanitize.StripHTML(content)),
	}
	if repliesTo != "" {
		p.RepliesTo = sanitize.Censor(repliesTo)
	}
	return p
}

// Message renders the post as a single microblog-ready text block.
func (p Post) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", p.Date.Format("2006-01-02"), p.Username)
	if p.RepliesTo != "" {
		fmt.Fprintf(&b, " to %s", p.RepliesTo)
	}
	b.WriteString(": ")
	b.WriteString(p.Text)
	return b.String()
}

// Topic is an ordered sequence of posts under one title on the forum.
type Topic struct {
	ID       int64
	Title    string
	Author   string
	AuthorID int64
	Date     time.Time
	Posts    []Post
}

// NewTopic builds a Topic with the title and author censored. The author
// name uses the same identifier fallback as post usernames.
func NewTopic(id int64, title, author string, authorID int64, date time.Time, posts []Post) Topic {
	return Topic{
		ID:       id,
		Title:    sanitize.Censor(title),
		Author:   sanitize.CensorName(author, authorID),
		AuthorID: authorID,
		Date:     date,
		Posts:    posts,
	}
}

// Heading is the lead message of a mirrored thread.
func (t Topic) Heading() string {
	return fmt.Sprintf("%s by %s (%s)", t.Title, t.Author, t.Date.Format("2006-01-02"))
}
