package materializer

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveline/internal/collector"
	"waveline/internal/infrastructure/persistence/models"
)

func commitBuilder() *Materializer {
	return NewMaterializer(nil, nil,
		AdminAccount{Username: "admin"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuildCommit_StacksSortedByOrder(t *testing.T) {
	res := &collector.Result{
		Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: "e", OwnerID: 42}},
		EventOrder: []uint{1},
		Stacks: map[uint]*collector.StackItem{
			11: {ID: 11, EventID: 1, Order: intPtr(2)},
			12: {ID: 12, EventID: 1}, // missing order sorts as -1
			13: {ID: 13, EventID: 1, Order: intPtr(0)},
		},
		News: map[uint]*collector.NewsItem{},
		Tags: map[uint]*collector.TagItem{},
	}

	commit, err := commitBuilder().buildCommit(res, res.Events[1], map[uint]string{42: "Brave Otter"}, 1)
	require.NoError(t, err)

	snap := decodeSnapshot(t, commit)
	require.Len(t, snap.Stacks, 3)
	assert.Equal(t, []int{-1, 0, 2}, []int{snap.Stacks[0].Order, snap.Stacks[1].Order, snap.Stacks[2].Order})
}

func TestBuildCommit_NewsSortedByTimeDescending(t *testing.T) {
	t1 := time.Date(2020, 1, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2020, 1, 2, 8, 0, 0, 0, time.UTC)

	res := &collector.Result{
		Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: "e"}},
		EventOrder: []uint{1},
		Stacks: map[uint]*collector.StackItem{
			11: {ID: 11, EventID: 1, Order: intPtr(0)},
		},
		News: map[uint]*collector.NewsItem{
			101: {ID: 101, Title: "older", Time: timePtr(t1)},
			102: {ID: 102, Title: "newer", Time: timePtr(t2)},
		},
		Tags: map[uint]*collector.TagItem{},
		EventStackNews: []collector.EventStackNewsRel{
			{EventID: 1, StackID: 11, NewsID: 101},
			{EventID: 1, StackID: 11, NewsID: 102},
		},
	}

	commit, err := commitBuilder().buildCommit(res, res.Events[1], map[uint]string{}, 1)
	require.NoError(t, err)

	snap := decodeSnapshot(t, commit)
	require.Len(t, snap.Stacks, 1)
	require.Equal(t, 2, snap.Stacks[0].NewsCount)
	assert.Equal(t, "newer", snap.Stacks[0].News[0].Title)
	assert.Equal(t, "older", snap.Stacks[0].News[1].Title)
}

func TestBuildCommit_TimeOfDayPriority(t *testing.T) {
	stackTime := time.Date(2020, 5, 1, 13, 45, 30, 0, time.UTC)
	newsTime := time.Date(2020, 5, 2, 7, 15, 0, 0, time.UTC)
	eventUpdated := time.Date(2020, 5, 3, 23, 59, 59, 0, time.UTC)

	t.Run("first stack time wins", func(t *testing.T) {
		res := &collector.Result{
			Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: "e", UpdatedAt: timePtr(eventUpdated)}},
			EventOrder: []uint{1},
			Stacks: map[uint]*collector.StackItem{
				11: {ID: 11, EventID: 1, Order: intPtr(0), Time: timePtr(stackTime)},
			},
			News: map[uint]*collector.NewsItem{},
			Tags: map[uint]*collector.TagItem{},
		}
		commit, err := commitBuilder().buildCommit(res, res.Events[1], nil, 1)
		require.NoError(t, err)
		assert.Equal(t, "13:45:30", commit.Time)
	})

	t.Run("falls back to first news time", func(t *testing.T) {
		res := &collector.Result{
			Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: "e", UpdatedAt: timePtr(eventUpdated)}},
			EventOrder: []uint{1},
			Stacks: map[uint]*collector.StackItem{
				11: {ID: 11, EventID: 1, Order: intPtr(0)},
			},
			News: map[uint]*collector.NewsItem{
				101: {ID: 101, Title: "n", Time: timePtr(newsTime)},
			},
			Tags: map[uint]*collector.TagItem{},
			EventStackNews: []collector.EventStackNewsRel{
				{EventID: 1, StackID: 11, NewsID: 101},
			},
		}
		commit, err := commitBuilder().buildCommit(res, res.Events[1], nil, 1)
		require.NoError(t, err)
		assert.Equal(t, "07:15:00", commit.Time)
	})

	t.Run("falls back to latest admitted news time", func(t *testing.T) {
		latestTime := time.Date(2020, 5, 4, 18, 30, 45, 0, time.UTC)
		res := &collector.Result{
			Events: map[uint]*collector.EventItem{
				1: {ID: 1, Name: "e", LatestAdmittedNewsID: 101, UpdatedAt: timePtr(eventUpdated)},
			},
			EventOrder: []uint{1},
			Stacks:     map[uint]*collector.StackItem{},
			News: map[uint]*collector.NewsItem{
				101: {ID: 101, Title: "n", Time: timePtr(latestTime)},
			},
			Tags: map[uint]*collector.TagItem{},
		}
		commit, err := commitBuilder().buildCommit(res, res.Events[1], nil, 1)
		require.NoError(t, err)
		assert.Equal(t, "18:30:45", commit.Time)
	})

	t.Run("falls back to event update time", func(t *testing.T) {
		res := &collector.Result{
			Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: "e", UpdatedAt: timePtr(eventUpdated)}},
			EventOrder: []uint{1},
			Stacks:     map[uint]*collector.StackItem{},
			News:       map[uint]*collector.NewsItem{},
			Tags:       map[uint]*collector.TagItem{},
		}
		commit, err := commitBuilder().buildCommit(res, res.Events[1], nil, 1)
		require.NoError(t, err)
		assert.Equal(t, "23:59:59", commit.Time)
	})
}

func TestBuildCommit_OwnerResolution(t *testing.T) {
	res := &collector.Result{
		Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: "e"}},
		EventOrder: []uint{1},
		Stacks:     map[uint]*collector.StackItem{},
		News:       map[uint]*collector.NewsItem{},
		Tags:       map[uint]*collector.TagItem{},
	}

	commit, err := commitBuilder().buildCommit(res, res.Events[1], nil, 1)
	require.NoError(t, err)

	snap := decodeSnapshot(t, commit)
	assert.Equal(t, uint(1), snap.Owner.ID)
	assert.Equal(t, "admin", snap.Owner.Username)
}

func TestBuildCommit_SummaryTruncatesOnRuneBoundary(t *testing.T) {
	// 18 bytes of prefix plus 271 bytes of name; byte 255 falls inside a
	// three-byte rune, so a naive byte slice would store invalid UTF-8.
	name := "a" + strings.Repeat("洪", 90)
	res := &collector.Result{
		Events:     map[uint]*collector.EventItem{1: {ID: 1, Name: name}},
		EventOrder: []uint{1},
		Stacks:     map[uint]*collector.StackItem{},
		News:       map[uint]*collector.NewsItem{},
		Tags:       map[uint]*collector.TagItem{},
	}

	commit, err := commitBuilder().buildCommit(res, res.Events[1], nil, 1)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(commit.Summary), 255)
	assert.True(t, utf8.ValidString(commit.Summary), "summary must stay valid UTF-8")
	assert.True(t, strings.HasPrefix(commit.Summary, "Initial import of a"))
}

func decodeSnapshot(t *testing.T, commit *models.CommitModel) Snapshot {
	t.Helper()
	var snap Snapshot
	require.NoError(t, json.Unmarshal(commit.Content, &snap))
	return snap
}
