package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestChat_SendsMessageOnlyAndReturnsResponseVerbatim(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var payload map[string]interface{}
		assert.NoError(t, json.Unmarshal(b, &payload))
		assert.Equal(t, map[string]interface{}{"message": "Paris?"}, payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": "Sunny, 22°C\n", "extra": 1}`))
	})

	resp, err := c.Chat(context.Background(), "Paris?")
	require.NoError(t, err)
	require.Equal(t, "Sunny, 22°C\n", resp)
}

func TestChat_FailuresAreRemoteUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "server error", status: http.StatusInternalServerError, payload: `{"detail": "boom"}`},
		{name: "not found", status: http.StatusNotFound, payload: `{"response": "ignored"}`},
		{name: "not json", status: http.StatusOK, payload: `<html>oops</html>`},
		{name: "missing response", status: http.StatusOK, payload: `{"answer": "x"}`},
		{name: "response not a string", status: http.StatusOK, payload: `{"response": 42}`},
		{name: "null response", status: http.StatusOK, payload: `{"response": null}`},
		{name: "array payload", status: http.StatusOK, payload: `["response"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})

			_, err := c.Chat(context.Background(), "Paris?")
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrRemoteUnavailable))
		})
	}
}

func TestChat_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), "Paris?")
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestChat_ExplicitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), "Paris?")
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestNewClient_TimeoutDoesNotTouchCallerClient(t *testing.T) {
	caller := &http.Client{Timeout: time.Minute}
	c, err := NewClient("http://localhost:8000", WithTimeout(time.Second), WithHTTPClient(caller))
	require.NoError(t, err)
	require.Equal(t, time.Second, c.httpClient.Timeout)
	require.Equal(t, time.Minute, caller.Timeout)

	c, err = NewClient("http://localhost:8000", WithHTTPClient(nil), WithTimeout(time.Second))
	require.NoError(t, err)
	require.NotNil(t, c.httpClient)
	require.Equal(t, time.Second, c.httpClient.Timeout)

	c, err = NewClient("http://localhost:8000", WithHTTPClient(caller))
	require.NoError(t, err)
	require.Same(t, caller, c.httpClient)
}

func TestNewClient_Endpoint(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/chat", c.Endpoint())

	c, err = NewClient("https://weather.example.com/api")
	require.NoError(t, err)
	require.Equal(t, "https://weather.example.com/api/chat", c.Endpoint())

	_, err = NewClient("ftp://weather.example.com")
	require.Error(t, err)
}
