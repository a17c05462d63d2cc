package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeForum struct {
	mentionPages map[int]*MentionPage
	topicPages   map[string]map[int]*TopicPage
	failPage     int

	searchCalls []int
	topicCalls  []string
	created     []string
	replies     map[int64][]string
	nextTopicID int64
}

func (f *fakeForum) SearchMentions(_ context.Context, page int) (*MentionPage, error) {
	f.searchCalls = append(f.searchCalls, page)
	p, ok := f.mentionPages[page]
	if !ok {
		return nil, fmt.Errorf("no mention page %d", page)
	}
	return p, nil
}

func (f *fakeForum) TopicPage(_ context.Context, slug string, page int) (*TopicPage, error) {
	f.topicCalls = append(f.topicCalls, fmt.Sprintf("%s:%d", slug, page))
	if f.failPage != 0 && page == f.failPage {
		return nil, errors.New("boom")
	}
	p, ok := f.topicPages[slug][page]
	if !ok {
		return nil, fmt.Errorf("no page %d of %s", page, slug)
	}
	return p, nil
}

func (f *fakeForum) CreateTopic(_ context.Context, title, content string) (int64, error) {
	f.created = append(f.created, title+"|"+content)
	f.nextTopicID++
	return f.nextTopicID, nil
}

func (f *fakeForum) Reply(_ context.Context, topicID int64, content string) error {
	if f.replies == nil {
		f.replies = make(map[int64][]string)
	}
	f.replies[topicID] = append(f.replies[topicID], content)
	return nil
}

type fakeMicroblog struct {
	statuses    map[int64]Status
	replyPages  map[int]*StatusPage
	postedRuns  [][]string
	statusCalls []int64
}

func (f *fakeMicroblog) Status(_ context.Context, id int64) (Status, error) {
	f.statusCalls = append(f.statusCalls, id)
	s, ok := f.statuses[id]
	if !ok {
		return Status{}, fmt.Errorf("no status %d", id)
	}
	return s, nil
}

func (f *fakeMicroblog) RepliesTo(_ context.Context, _ string, page int) (*StatusPage, error) {
	p, ok := f.replyPages[page]
	if !ok {
		return nil, fmt.Errorf("no reply page %d", page)
	}
	return p, nil
}

func (f *fakeMicroblog) PostThread(_ context.Context, messages []string) error {
	f.postedRuns = append(f.postedRuns, messages)
	return nil
}

type fakeLedger struct {
	records []string
}

func (f *fakeLedger) IsProcessed(id string) (bool, error) {
	for _, r := range f.records {
		if r == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) Record(id string) error {
	f.records = append(f.records, id)
	return nil
}

func newTestService(forum *fakeForum, blog *fakeMicroblog, led *fakeLedger, charLimit int) *MirrorService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMirrorService(Config{
		BotUsername:       "mybot",
		CharLimit:         charLimit,
		CategoryBlacklist: []Category{CategoryJunkyard},
	}, forum, blog, led, logger)
}

func TestMentionedTopics(t *testing.T) {
	t.Run("merges pages, dedups slugs and applies the blacklist", func(t *testing.T) {
		forum := &fakeForum{mentionPages: map[int]*MentionPage{
			1: {
				Topics: []TopicRef{
					{Slug: "thyroid-thread", Category: CategoryBioenergetics},
					{Slug: "dumpster", Category: CategoryJunkyard},
					{Slug: "thyroid-thread", Category: CategoryBioenergetics},
				},
				MatchCount: 4,
				PageCount:  2,
				MorePages:  true,
			},
			2: {Topics: []TopicRef{{Slug: "light-thread", Category: CategoryCaseStudies}}},
		}}
		svc := newTestService(forum, &fakeMicroblog{}, &fakeLedger{}, 280)

		slugs, err := svc.MentionedTopics(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"thyroid-thread", "light-thread"}, slugs)
		assert.Equal(t, []int{1, 2}, forum.searchCalls)
	})

	t.Run("stops at page one when no more pages exist", func(t *testing.T) {
		forum := &fakeForum{mentionPages: map[int]*MentionPage{
			1: {Topics: []TopicRef{{Slug: "only", Category: CategoryMeta}}, PageCount: 1},
		}}
		svc := newTestService(forum, &fakeMicroblog{}, &fakeLedger{}, 280)

		slugs, err := svc.MentionedTopics(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, slugs)
		assert.Equal(t, []int{1}, forum.searchCalls)
	})
}

func topicFixture(slug string, pages int) map[string]map[int]*TopicPage {
	date := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	byPage := make(map[int]*TopicPage, pages)
	for page := 1; page <= pages; page++ {
		byPage[page] = &TopicPage{
			ID:        77,
			Title:     "Morning light",
			Author:    "alice",
			AuthorID:  9,
			Date:      date,
			PageCount: pages,
			Posts: []Post{
				plainPost(int64(page*10+1), fmt.Sprintf("page %d first", page)),
				plainPost(int64(page*10+2), fmt.Sprintf("page %d second", page)),
			},
		}
	}
	return map[string]map[int]*TopicPage{slug: byPage}
}

func TestAssembleTopic(t *testing.T) {
	t.Run("fetches each page exactly once, in order", func(t *testing.T) {
		forum := &fakeForum{topicPages: topicFixture("morning-light", 3)}
		svc := newTestService(forum, &fakeMicroblog{}, &fakeLedger{}, 280)

		topic, err := svc.AssembleTopic(context.Background(), "morning-light")
		require.NoError(t, err)
		assert.Equal(t, []string{"morning-light:1", "morning-light:2", "morning-light:3"}, forum.topicCalls)

		require.Len(t, topic.Posts, 6)
		ids := make([]int64, len(topic.Posts))
		for i, p := range topic.Posts {
			ids[i] = p.ID
		}
		assert.Equal(t, []int64{11, 12, 21, 22, 31, 32}, ids)
		assert.Equal(t, "Morning light", topic.Title)
		assert.Equal(t, "alice", topic.Author)
	})

	t.Run("a failed page discards the whole assembly", func(t *testing.T) {
		forum := &fakeForum{topicPages: topicFixture("morning-light", 3), failPage: 2}
		svc := newTestService(forum, &fakeMicroblog{}, &fakeLedger{}, 280)

		topic, err := svc.AssembleTopic(context.Background(), "morning-light")
		assert.Error(t, err)
		assert.Nil(t, topic)
	})

	t.Run("filters the assembled posts", func(t *testing.T) {
		pages := topicFixture("morning-light", 1)
		pages["morning-light"][1].Posts = []Post{
			plainPost(1, "keep me"),
			plainPost(2, "mirror this please @mybot"),
			plainPost(3, "after the summon"),
		}
		forum := &fakeForum{topicPages: pages}
		svc := newTestService(forum, &fakeMicroblog{}, &fakeLedger{}, 280)

		topic, err := svc.AssembleTopic(context.Background(), "morning-light")
		require.NoError(t, err)
		require.Len(t, topic.Posts, 1)
		assert.Equal(t, int64(1), topic.Posts[0].ID)
	})
}

func TestThread(t *testing.T) {
	t.Run("heading leads, posts follow in order", func(t *testing.T) {
		topic := NewTopic(77, "Morning light", "alice", 9, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), []Post{
			plainPost(1, "first"),
			plainPost(2, "second"),
		})
		svc := newTestService(&fakeForum{}, &fakeMicroblog{}, &fakeLedger{}, 280)

		got := svc.Thread(&topic)
		require.Len(t, got, 3)
		assert.Equal(t, "Morning light by alice (2023-05-01)", got[0])
		assert.True(t, strings.HasSuffix(got[1], "first"))
		assert.True(t, strings.HasSuffix(got[2], "second"))
	})

	t.Run("long posts are segmented", func(t *testing.T) {
		topic := NewTopic(77, "T", "a", 9, time.Time{}, []Post{
			plainPost(1, strings.Repeat("w", 100)),
		})
		svc := newTestService(&fakeForum{}, &fakeMicroblog{}, &fakeLedger{}, 40)

		got := svc.Thread(&topic)
		assert.Greater(t, len(got), 2)
		for _, msg := range got {
			assert.LessOrEqual(t, len([]rune(msg)), 40)
		}
	})
}

func TestMirrorTopic(t *testing.T) {
	blog := &fakeMicroblog{}
	topic := NewTopic(77, "Morning light", "alice", 9, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), []Post{
		plainPost(1, "first"),
	})
	svc := newTestService(&fakeForum{}, blog, &fakeLedger{}, 280)

	require.NoError(t, svc.MirrorTopic(context.Background(), &topic))
	require.Len(t, blog.postedRuns, 1)
	assert.Len(t, blog.postedRuns[0], 2)
}

func threadFixture() *fakeMicroblog {
	createdAt := time.Date(2021, time.March, 4, 10, 0, 0, 0, time.UTC)
	root := Status{ID: 10, Author: "rayp", DisplayName: "Ray", Text: "thread root", CreatedAt: createdAt}
	r2 := Status{ID: 12, Author: "rayp", DisplayName: "Ray", Text: "second", CreatedAt: createdAt.Add(2 * time.Minute), InReplyToStatusID: 10, InReplyToScreenName: "rayp"}
	r3 := Status{ID: 13, Author: "rayp", DisplayName: "Ray", Text: "third", CreatedAt: createdAt.Add(3 * time.Minute), InReplyToStatusID: 10, InReplyToScreenName: "rayp"}
	other := Status{ID: 14, Author: "rayp", DisplayName: "Ray", Text: "unrelated", CreatedAt: createdAt.Add(4 * time.Minute), InReplyToStatusID: 99}

	return &fakeMicroblog{
		statuses: map[int64]Status{10: root},
		replyPages: map[int]*StatusPage{
			// listing is newest first
			1: {Statuses: []Status{other, r3}, PageCount: 2},
			2: {Statuses: []Status{r2}, PageCount: 2},
		},
	}
}

func TestUnrollThread(t *testing.T) {
	t.Run("root first, replies oldest first, strangers excluded", func(t *testing.T) {
		blog := threadFixture()
		svc := newTestService(&fakeForum{}, blog, &fakeLedger{}, 280)

		tagging := Status{ID: 100, Author: "fan", Text: "@mybot mirror this", InReplyToStatusID: 10}
		thread, err := svc.UnrollThread(context.Background(), tagging)
		require.NoError(t, err)

		ids := make([]int64, len(thread))
		for i, st := range thread {
			ids[i] = st.ID
		}
		assert.Equal(t, []int64{10, 12, 13}, ids)
	})

	t.Run("a tag on the root unrolls from the tagged status itself", func(t *testing.T) {
		blog := threadFixture()
		blog.statuses[40] = Status{ID: 40, Author: "rayp", DisplayName: "Ray", Text: "standalone @mybot"}
		blog.replyPages = map[int]*StatusPage{1: {PageCount: 1}}
		svc := newTestService(&fakeForum{}, blog, &fakeLedger{}, 280)

		tagging := blog.statuses[40]
		thread, err := svc.UnrollThread(context.Background(), tagging)
		require.NoError(t, err)
		require.Len(t, thread, 1)
		assert.Equal(t, []int64{40}, blog.statusCalls)
	})
}

func TestMirrorThread(t *testing.T) {
	t.Run("creates a topic from the root and replies with the rest", func(t *testing.T) {
		blog := threadFixture()
		forum := &fakeForum{nextTopicID: 54}
		led := &fakeLedger{}
		svc := newTestService(forum, blog, led, 280)

		tagging := Status{ID: 100, Author: "fan", Text: "@mybot mirror this", InReplyToStatusID: 10}
		require.NoError(t, svc.MirrorThread(context.Background(), tagging))

		require.Len(t, forum.created, 1)
		rootBlock := blog.statuses[10].Render()
		assert.Equal(t, rootBlock+"|"+rootBlock, forum.created[0])
		require.Len(t, forum.replies[55], 2)
		assert.True(t, strings.HasSuffix(forum.replies[55][0], "second"))
		assert.True(t, strings.HasSuffix(forum.replies[55][1], "third"))
		assert.Equal(t, []string{"100"}, led.records)
	})

	t.Run("an already-recorded status is skipped entirely", func(t *testing.T) {
		blog := threadFixture()
		forum := &fakeForum{}
		led := &fakeLedger{records: []string{"100"}}
		svc := newTestService(forum, blog, led, 280)

		tagging := Status{ID: 100, InReplyToStatusID: 10}
		require.NoError(t, svc.MirrorThread(context.Background(), tagging))
		assert.Empty(t, forum.created)
		assert.Empty(t, blog.statusCalls)
		assert.Equal(t, []string{"100"}, led.records)
	})

	t.Run("a failed unroll records nothing", func(t *testing.T) {
		blog := &fakeMicroblog{statuses: map[int64]Status{}}
		forum := &fakeForum{}
		led := &fakeLedger{}
		svc := newTestService(forum, blog, led, 280)

		err := svc.MirrorThread(context.Background(), Status{ID: 100, InReplyToStatusID: 10})
		assert.Error(t, err)
		assert.Empty(t, led.records)
		assert.Empty(t, forum.created)
	})
}

func TestThreadTitle(t *testing.T) {
	t.Run("short blocks pass through", func(t *testing.T) {
		assert.Equal(t, "a short title", threadTitle("a short title"))
	})

	t.Run("long blocks are truncated with an ellipsis", func(t *testing.T) {
		block := strings.Repeat("x", 90)
		got := threadTitle(block)
		assert.Equal(t, strings.Repeat("x", 70)+"...", got)
	})
}
