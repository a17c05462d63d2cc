// Package forum is a typed JSON client for the NodeBB forum API.
package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

// Options configure the query and posting behavior of the client.
type Options struct {
	// BotUsername is the account whose mention token is searched for.
	BotUsername string

	// Window is the trailing search window for mentions.
	Window domain.Window

	// MinReplies is the minimum-reply-count search filter; zero disables it.
	MinReplies int

	// CategoryID is the category reverse-mirrored topics are created in.
	CategoryID int
}

// Client talks to the forum API. A session cookie is established by Login
// and carried by the underlying cookie jar afterwards. Requests are never
// retried; a non-2xx response surfaces as an error.
type Client struct {
	baseURL    string
	username   string
	password   string
	opts       Options
	httpClient *http.Client
}

// NewClient creates a forum API client rooted at baseURL.
func NewClient(baseURL, username, password string, opts Options) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		opts:     opts,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// Login establishes the API session. Call it once before any other
// operation.
func (c *Client) Login(ctx context.Context) error {
	body := loginRequest{Username: c.username, Password: c.password}
	if err := c.post(ctx, "/api/v3/utilities/login", body, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// SearchMentions returns one page of posts mentioning the bot within the
// configured window.
func (c *Client) SearchMentions(ctx context.Context, page int) (*domain.MentionPage, error) {
	q := url.Values{}
	q.Set("in", "posts")
	q.Set("term", "@"+c.opts.BotUsername)
	q.Set("matchWords", "all")
	q.Set("searchChildren", "false")
	q.Set("repliesFilter", "atleast")
	if c.opts.MinReplies > 0 {
		q.Set("replies", strconv.Itoa(c.opts.MinReplies))
	}
	q.Set("timeFilter", "newer")
	q.Set("timeRange", strconv.FormatInt(c.opts.Window.Seconds(), 10))
	q.Set("sortBy", "timestamp")
	q.Set("sortDirection", "desc")
	q.Set("showAs", "posts")
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	var resp searchResponse
	if err := c.get(ctx, "/api/search?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search page %d: %w", page, err)
	}

	out := &domain.MentionPage{
		MatchCount: resp.MatchCount,
		PageCount:  resp.PageCount,
		MorePages:  resp.MultiplePages,
		Topics:     make([]domain.TopicRef, 0, len(resp.Posts)),
	}
	for _, p := range resp.Posts {
		out.Topics = append(out.Topics, domain.TopicRef{
			Slug:     p.Topic.Slug,
			Category: domain.Category(p.Topic.CID),
		})
	}
	return out, nil
}

// TopicPage returns one page of a topic's posts, sanitized at construction.
func (c *Client) TopicPage(ctx context.Context, slug string, page int) (*domain.TopicPage, error) {
	path := "/api/topic/" + slug
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}

	var resp topicResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("topic %s page %d: %w", slug, page, err)
	}

	out, err := resp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("topic %s page %d: %w", slug, page, err)
	}
	return out, nil
}

// CreateTopic creates a topic in the configured category and returns its
// identifier.
func (c *Client) CreateTopic(ctx context.Context, title, content string) (int64, error) {
	req := createTopicRequest{
		CID:       c.opts.CategoryID,
		Title:     title,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Tags:      []string{},
	}

	var resp createTopicResponse
	if err := c.post(ctx, "/api/v3/topics/", req, &resp); err != nil {
		return 0, fmt.Errorf("create topic: %w", err)
	}
	if resp.Response.TID == 0 {
		return 0, fmt.Errorf("create topic: missing tid: %w", ErrMalformedResponse)
	}
	return resp.Response.TID, nil
}

// Reply appends a reply to an existing topic.
func (c *Client) Reply(ctx context.Context, topicID int64, content string) error {
	req := replyRequest{Content: content}
	if err := c.post(ctx, "/api/v3/topics/"+strconv.FormatInt(topicID, 10), req, nil); err != nil {
		return fmt.Errorf("reply to topic %d: %w", topicID, err)
	}
	return nil
}

// RecentTopicIDs lists the identifiers of recently active topics.
func (c *Client) RecentTopicIDs(ctx context.Context) ([]int64, error) {
	var resp recentResponse
	if err := c.get(ctx, "/api/recent", &resp); err != nil {
		return nil, fmt.Errorf("recent topics: %w", err)
	}
	return resp.TIDs, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
