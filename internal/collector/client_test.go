package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "waveline/internal/shared/errors"
)

func TestGetJSON_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out map[string]bool
	err := c.GetJSON(context.Background(), "/thing", &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_ExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out any
	err := c.GetJSON(context.Background(), "/thing", &out)
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestGetJSON_DecodeErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `not json at all`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out map[string]any
	err := c.GetJSON(context.Background(), "/thing", &out)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeDecode, apperrors.TypeOf(err))
	assert.Equal(t, int32(1), calls.Load(), "decode failures must not be retried")
}

func TestGetJSON_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out any
	err := c.GetJSON(ctx, "/thing", &out)
	require.Error(t, err)
}
