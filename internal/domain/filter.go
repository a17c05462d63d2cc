package domain

import (
	"strings"

	"github.com/bioenergetic/forum-bridge/internal/sanitize"
)

// FilterPosts trims an assembled post sequence to the content worth
// mirroring. Every post containing the mention token is dropped, along with
// everything at or after the last of them: a thread is only mirrored up to
// the point the bot was invoked. When no post carries the mention the whole
// sequence is kept. Posts by banned accounts and profanity-only posts are
// removed afterwards. The relative order of surviving posts is preserved.
func FilterPosts(posts []Post, mention string) []Post {
	cut := len(posts)
	tagging := make(map[int]struct{})
	for i, p := range posts {
		if strings.Contains(p.Content, mention) {
			tagging[i] = struct{}{}
			cut = i
		}
	}

	kept := make([]Post, 0, cut)
	for i, p := range posts {
		if i >= cut {
			break
		}
		if _, ok := tagging[i]; ok {
			continue
		}
		if p.Banned || sanitize.ProfanityOnly(p.Text) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
