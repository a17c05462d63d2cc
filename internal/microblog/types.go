package microblog

import (
	"fmt"
	"time"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

// createdAtLayout is the RFC-822-style timestamp format used by the status
// API, e.g. "Mon Jan 02 15:04:05 -0700 2006".
const createdAtLayout = time.RubyDate

// StatusPayload is the wire form of a status object.
type StatusPayload struct {
	ID                  int64           `json:"id"`
	User                userPayload     `json:"user"`
	FullText            string          `json:"full_text"`
	Text                string          `json:"text"`
	CreatedAt           string          `json:"created_at"`
	InReplyToStatusID   int64           `json:"in_reply_to_status_id"`
	InReplyToUserID     int64           `json:"in_reply_to_user_id"`
	InReplyToScreenName string          `json:"in_reply_to_screen_name"`
	IsQuoteStatus       bool            `json:"is_quote_status"`
	Entities            entitiesPayload `json:"entities"`
}

type userPayload struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type entitiesPayload struct {
	Media []mediaPayload `json:"media"`
}

type mediaPayload struct {
	MediaURLHTTPS string `json:"media_url_https"`
}

type repliesResponse struct {
	Statuses  []StatusPayload `json:"statuses"`
	PageCount int             `json:"pageCount"`
}

type updateRequest struct {
	Status            string `json:"status"`
	InReplyToStatusID int64  `json:"in_reply_to_status_id,omitempty"`
}

// ToDomain validates the payload into a domain Status. full_text wins over
// text when both are present; a payload with neither fails validation.
func (p *StatusPayload) ToDomain() (domain.Status, error) {
	text := p.FullText
	if text == "" {
		text = p.Text
	}

	createdAt, err := time.Parse(createdAtLayout, p.CreatedAt)
	if err != nil {
		return domain.Status{}, fmt.Errorf("status %d: parse created_at %q: %w", p.ID, p.CreatedAt, err)
	}

	var media []string
	for _, m := range p.Entities.Media {
		media = append(media, m.MediaURLHTTPS)
	}

	return domain.NewStatus(domain.Status{
		ID:                  p.ID,
		Author:              p.User.ScreenName,
		DisplayName:         p.User.Name,
		Text:                text,
		CreatedAt:           createdAt,
		InReplyToStatusID:   p.InReplyToStatusID,
		InReplyToUserID:     p.InReplyToUserID,
		InReplyToScreenName: p.InReplyToScreenName,
		Quote:               p.IsQuoteStatus,
		MediaURLs:           media,
	})
}
