package stream

import (
	"encoding/json"
	"fmt"

	"github.com/bioenergetic/forum-bridge/internal/domain"
	"github.com/bioenergetic/forum-bridge/internal/microblog"
)

// parseStatus decodes one stream message into a validated domain status.
func parseStatus(data []byte) (domain.Status, error) {
	var payload microblog.StatusPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Status{}, fmt.Errorf("unmarshal status event: %w", err)
	}
	return payload.ToDomain()
}
