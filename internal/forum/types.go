package forum

import (
	"errors"
	"fmt"
	"time"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

// ErrMalformedResponse is returned when a response is missing a required
// field.
var ErrMalformedResponse = errors.New("malformed forum response")

// timestampLayout is the ISO timestamp format used by the forum API.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type searchResponse struct {
	Posts         []searchPost `json:"posts"`
	MatchCount    int          `json:"matchCount"`
	PageCount     int          `json:"pageCount"`
	MultiplePages bool         `json:"multiplePages"`
}

type searchPost struct {
	Topic searchTopic `json:"topic"`
}

type searchTopic struct {
	Slug string `json:"slug"`
	CID  int    `json:"cid"`
}

type topicResponse struct {
	TID          int64       `json:"tid"`
	Title        string      `json:"title"`
	Author       topicAuthor `json:"author"`
	TimestampISO string      `json:"timestampISO"`
	Pagination   pagination  `json:"pagination"`
	Posts        []topicPost `json:"posts"`
}

type topicAuthor struct {
	Username string `json:"username"`
	UID      int64  `json:"uid"`
}

type pagination struct {
	PageCount int `json:"pageCount"`
}

type topicPost struct {
	UID     int64     `json:"uid"`
	User    postUser  `json:"user"`
	Parent  *postUser `json:"parent"`
	Content string    `json:"content"`
}

type postUser struct {
	Username string `json:"username"`
	Banned   bool   `json:"banned"`
}

type createTopicRequest struct {
	CID       int      `json:"cid"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
	Tags      []string `json:"tags"`
}

type createTopicResponse struct {
	Response struct {
		TID int64 `json:"tid"`
	} `json:"response"`
}

type replyRequest struct {
	Content string `json:"content"`
	ToPID   int64  `json:"toPid"`
}

type recentResponse struct {
	TIDs []int64 `json:"tids"`
}

// toDomain validates the wire page and constructs sanitized domain posts.
// The page-level timestamp applies to every post on the page.
func (r *topicResponse) toDomain() (*domain.TopicPage, error) {
	if r.TID == 0 {
		return nil, fmt.Errorf("missing tid: %w", ErrMalformedResponse)
	}

	date, err := time.Parse(timestampLayout, r.TimestampISO)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", r.TimestampISO, ErrMalformedResponse)
	}

	pageCount := r.Pagination.PageCount
	if pageCount < 1 {
		pageCount = 1
	}

	posts := make([]domain.Post, 0, len(r.Posts))
	for _, p := range r.Posts {
		var repliesTo string
		if p.Parent != nil {
			repliesTo = p.Parent.Username
		}
		posts = append(posts, domain.NewPost(p.UID, p.User.Username, p.User.Banned, repliesTo, date, p.Content))
	}

	return &domain.TopicPage{
		ID:        r.TID,
		Title:     r.Title,
		Author:    r.Author.Username,
		AuthorID:  r.Author.UID,
		Date:      date,
		PageCount: pageCount,
		Posts:     posts,
	}, nil
}
