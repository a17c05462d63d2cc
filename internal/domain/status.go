package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const statusDateFormat = "2006-01-02 15:04"

// Status is a single microblog post, as consumed by the reverse pipeline.
type Status struct {
	// ID is the status identifier.
	ID int64

	// Author is the account handle.
	Author string

	// DisplayName is the account's display name.
	DisplayName string

	// Text is the rendered text. Always non-empty for a validated Status.
	Text string

	// CreatedAt is the status creation timestamp.
	CreatedAt time.Time

	// InReplyToStatusID, InReplyToUserID and InReplyToScreenName identify
	// the reply target, zero-valued when the status is not a reply.
	InReplyToStatusID   int64
	InReplyToUserID     int64
	InReplyToScreenName string

	// Quote marks quote statuses.
	Quote bool

	// MediaURLs lists attached media, in attachment order.
	MediaURLs []string
}

// NewStatus validates a decoded status. A status without text content is a
// malformed entity and never enters the pipeline.
func NewStatus(s Status) (Status, error) {
	if s.Text == "" {
		return Status{}, fmt.Errorf("status %d: %w", s.ID, ErrNoText)
	}
	return s, nil
}

// Render formats the status as a single forum-ready text block: a header
// line with timestamp, display name, handle and reply target, the text, and
// a trailing block of media links when media is attached.
func (s Status) Render() string {
	header := fmt.Sprintf("[%s] (@%s) %s", s.CreatedAt.Format(statusDateFormat), s.DisplayName, s.Author)
	if s.InReplyToScreenName != "" {
		header += " to " + s.InReplyToScreenName
	}

	var footer string
	if len(s.MediaURLs) > 0 {
		links := make([]string, len(s.MediaURLs))
		for i, u := range s.MediaURLs {
			links[i] = fmt.Sprintf("[%s](%s)", path.Base(u), u)
		}
		footer = "\n" + strings.Join(links, " ")
	}

	return header + ":\n" + s.Text + footer
}
