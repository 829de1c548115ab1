package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries uint64) *ResendClient {
	return NewResendClient(Options{
		APIKey:     "re_test",
		Endpoint:   url,
		Timeout:    2 * time.Second,
		MaxRetries: retries,
		RetryBase:  time.Millisecond,
	}, zerolog.Nop())
}

func TestSend_Success(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL, 0).Send(context.Background(), &Message{
		From:    "Ma Ville Verte <onboarding@resend.dev>",
		To:      []string{"team@example.com"},
		Subject: "[Contact] Bonjour",
		HTML:    "<p>hi</p>",
		ReplyTo: "visitor@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)
	assert.Equal(t, []string{"team@example.com"}, got.To)
	assert.Equal(t, "visitor@example.com", got.ReplyTo)
}

func TestSend_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"validation_error","message":"bad from"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Send(context.Background(), &Message{To: []string{"a@b.c"}})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnprocessableEntity, perr.StatusCode)
	assert.JSONEq(t, `{"name":"validation_error","message":"bad from"}`, string(perr.Body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSend_ServerErrorRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"msg_ok"}`))
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL, 3).Send(context.Background(), &Message{To: []string{"a@b.c"}})

	require.NoError(t, err)
	assert.Equal(t, "msg_ok", id)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSend_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Send(context.Background(), &Message{To: []string{"a@b.c"}})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.JSONEq(t, `"slow down"`, string(perr.Body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
