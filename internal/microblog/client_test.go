package microblog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "token123")
}

func statusJSON(id int64, text string) StatusPayload {
	return StatusPayload{
		ID:        id,
		User:      userPayload{ScreenName: "rayp", Name: "Ray"},
		FullText:  text,
		CreatedAt: "Thu Mar 04 10:30:00 +0000 2021",
	}
}

func TestStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statuses/show.json", r.URL.Path)
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("id"))
		assert.Equal(t, "extended", q.Get("tweet_mode"))
		json.NewEncoder(w).Encode(statusJSON(10, "thread root"))
	})

	got, err := client.Status(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, "rayp", got.Author)
	assert.Equal(t, "Ray", got.DisplayName)
	assert.Equal(t, "thread root", got.Text)
}

func TestRepliesTo(t *testing.T) {
	t.Run("queries replies to the account", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/tweets.json", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "to:@rayp", q.Get("q"))
			assert.False(t, q.Has("page"))
			json.NewEncoder(w).Encode(repliesResponse{
				Statuses:  []StatusPayload{statusJSON(12, "a reply")},
				PageCount: 2,
			})
		})

		page, err := client.RepliesTo(context.Background(), "rayp", 1)
		require.NoError(t, err)
		assert.Equal(t, 2, page.PageCount)
		require.Len(t, page.Statuses, 1)
		assert.Equal(t, int64(12), page.Statuses[0].ID)
	})

	t.Run("later pages carry the page parameter", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			json.NewEncoder(w).Encode(repliesResponse{})
		})

		page, err := client.RepliesTo(context.Background(), "rayp", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, page.PageCount)
	})
}

func TestPostThread(t *testing.T) {
	var nextID int64 = 100
	var requests []updateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statuses/update.json", r.URL.Path)
		var req updateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		nextID++
		resp := statusJSON(nextID, req.Status)
		json.NewEncoder(w).Encode(resp)
	})

	err := client.PostThread(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)

	require.Len(t, requests, 3)
	assert.Equal(t, "one", requests[0].Status)
	assert.Zero(t, requests[0].InReplyToStatusID)
	assert.Equal(t, int64(101), requests[1].InReplyToStatusID)
	assert.Equal(t, int64(102), requests[2].InReplyToStatusID)
}
