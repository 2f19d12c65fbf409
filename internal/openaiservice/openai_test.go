package openaiservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateSendsChatCompletionRequest(t *testing.T) {
	var got ChatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Eat oats."}}]}`))
	})

	c := NewClient(srv.URL, "gpt-3.5-turbo-0125", "sk-test", WithHTTPClient(srv.Client()))
	content, err := c.Generate(context.Background(), "plan please")

	require.NoError(t, err)
	assert.Equal(t, "Eat oats.", content)
	assert.Equal(t, "gpt-3.5-turbo-0125", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, ChatMessage{Role: "user", Content: "plan please"}, got.Messages[0])
}

func TestGenerateReadsOnlyFirstChoice(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"first"}},{"message":{"content":"second"}}]}`))
	})

	content, err := NewClient(srv.URL, "m", "k").Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "first", content)
}

func TestGenerateAcceptsEmptyContent(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})

	content, err := NewClient(srv.URL, "m", "k").Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantErr: ErrUnexpectedStatus},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantErr: ErrUnexpectedStatus},
		{name: "missing choices", status: http.StatusOK, body: `{"id":"x"}`, wantErr: ErrNoChoices},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrNoChoices},
		{name: "missing content", status: http.StatusOK, body: `{"choices":[{"message":{}}]}`, wantErr: ErrNoChoices},
		{name: "not json", status: http.StatusOK, body: `<html>gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewClient(srv.URL, "m", "k").Generate(context.Background(), "p")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "m", "k").Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "request failed")
}

func TestGenerateHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, "m", "k").Generate(ctx, "p")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
