// Package microblog is a JSON client for the microblogging service's status
// API.
package microblog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

// Client talks to the status API with bearer-token authentication. Requests
// are never retried.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a status API client rooted at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Status fetches a single status by identifier.
func (c *Client) Status(ctx context.Context, id int64) (domain.Status, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	q.Set("tweet_mode", "extended")

	var resp StatusPayload
	if err := c.get(ctx, "/statuses/show.json?"+q.Encode(), &resp); err != nil {
		return domain.Status{}, fmt.Errorf("fetch status %d: %w", id, err)
	}
	return resp.ToDomain()
}

// RepliesTo returns one page of statuses addressed to the given account,
// newest first. Page 1 reports the total page count.
func (c *Client) RepliesTo(ctx context.Context, account string, page int) (*domain.StatusPage, error) {
	q := url.Values{}
	q.Set("q", "to:@"+account)
	q.Set("tweet_mode", "extended")
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	var resp repliesResponse
	if err := c.get(ctx, "/search/tweets.json?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("replies to %s page %d: %w", account, page, err)
	}

	statuses := make([]domain.Status, 0, len(resp.Statuses))
	for _, p := range resp.Statuses {
		st, err := p.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("replies to %s page %d: %w", account, page, err)
		}
		statuses = append(statuses, st)
	}

	pageCount := resp.PageCount
	if pageCount < 1 {
		pageCount = 1
	}
	return &domain.StatusPage{Statuses: statuses, PageCount: pageCount}, nil
}

// PostStatus posts one status, optionally as a reply, and returns the new
// status identifier.
func (c *Client) PostStatus(ctx context.Context, text string, inReplyTo int64) (int64, error) {
	body := updateRequest{Status: text, InReplyToStatusID: inReplyTo}

	var resp StatusPayload
	if err := c.post(ctx, "/statuses/update.json", body, &resp); err != nil {
		return 0, fmt.Errorf("post status: %w", err)
	}
	return resp.ID, nil
}

// PostThread posts the messages as one chained thread: each message replies
// to the previous one.
func (c *Client) PostThread(ctx context.Context, messages []string) error {
	var prev int64
	for i, msg := range messages {
		id, err := c.PostStatus(ctx, msg, prev)
		if err != nil {
			return fmt.Errorf("post thread message %d: %w", i+1, err)
		}
		prev = id
	}
	return nil
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
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

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
