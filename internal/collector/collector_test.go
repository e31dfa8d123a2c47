package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(baseURL, 5*time.Second, 0, testLogger())
	c.backoff = time.Millisecond
	return c
}

func TestCollect_BareArrayPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `[
				{"id": 10, "name": "flood", "ownerId": 42,
				 "tags": [{"id": 3, "name": "weather"}],
				 "headerImage": {"id": 7, "imageUrl": "http://img/7.jpg"}},
				{"id": 11, "name": "quake", "ownerId": 43}
			]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	})
	mux.HandleFunc("/events/10", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": 10, "name": "flood", "ownerId": 42,
			"tags": [{"id": 3, "name": "weather"}],
			"headerImage": {"id": 7, "imageUrl": "http://img/7.jpg"},
			"stacks": [
				{"id": 100, "title": "day one", "order": 0,
				 "news": [{"id": 1000, "title": "levee breached"}]}
			],
			"offshelfNews": [{"id": 1001, "title": "unsorted report"}]
		}`)
	})
	mux.HandleFunc("/events/11", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 11, "name": "quake", "ownerId": 43}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewCollector(newTestClient(t, server.URL), 10, testLogger())
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Events, 2)
	assert.Equal(t, []uint{10, 11}, result.EventOrder)
	assert.Len(t, result.Stacks, 1)
	assert.Equal(t, uint(10), result.Stacks[100].EventID)
	assert.Len(t, result.News, 2)
	assert.Len(t, result.Tags, 1)
	assert.Len(t, result.HeaderImages, 1)
	assert.Equal(t, uint(10), result.HeaderImages[0].EventID)

	assert.ElementsMatch(t, []EventStackNewsRel{
		{EventID: 10, StackID: 100, NewsID: 1000},
		{EventID: 10, StackID: 0, NewsID: 1001},
	}, result.EventStackNews)
	assert.Equal(t, []EventTagRel{{EventID: 10, TagID: 3}}, result.EventTags)

	_, has42 := result.OwnerIDs[42]
	_, has43 := result.OwnerIDs[43]
	assert.True(t, has42)
	assert.True(t, has43)
}

func TestCollect_EnvelopePages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"data": [{"id": 5, "name": "storm"}]}`)
			return
		}
		fmt.Fprint(w, `{"data": []}`)
	})
	mux.HandleFunc("/events/5", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 5, "name": "storm"}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewCollector(newTestClient(t, server.URL), 10, testLogger())
	result, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Events, 1)
}

func TestCollect_DetailFailureSkipsNestedData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"id": 20, "name": "fire", "ownerId": 9}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/events/20", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewCollector(newTestClient(t, server.URL), 10, testLogger())
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	// The event itself survives; its nested data is simply absent.
	assert.Len(t, result.Events, 1)
	assert.Empty(t, result.Stacks)
	assert.Empty(t, result.News)
}

func TestCollect_ListFailureEndsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"id": 30, "name": "eclipse"}]`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/events/30", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 30, "name": "eclipse"}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewCollector(newTestClient(t, server.URL), 10, testLogger())
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	// The partial result from page 1 is kept.
	assert.Len(t, result.Events, 1)
}

func TestCollect_DetailOverwritesListEntry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"id": 40, "name": "draft title"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/events/40", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 40, "name": "final title", "ownerId": 8}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewCollector(newTestClient(t, server.URL), 10, testLogger())
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, result.EventOrder, 1)
	assert.Equal(t, "final title", result.Events[40].Name)
}
