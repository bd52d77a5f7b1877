package validation_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"usersvc/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockService records every request and answers with a configurable status and body.
type mockService struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []*url.URL
}

func newMockService(t *testing.T, status int, body string) (*mockService, *httptest.Server) {
	t.Helper()
	m := &mockService{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.URL)
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.status)
		fmt.Fprint(w, m.body)
	}))
	t.Cleanup(srv.Close)
	return m, srv
}

func TestClient_Validate(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"valid result", http.StatusOK, `{"result":"valid"}`, true},
		{"invalid result", http.StatusOK, `{"result":"invalid"}`, false},
		{"unknown result", http.StatusOK, `{"result":"disposable"}`, false},
		{"missing result", http.StatusOK, `{}`, false},
		{"null result", http.StatusOK, `{"result":null}`, false},
		{"numeric result", http.StatusOK, `{"result":123}`, false},
		{"array result", http.StatusOK, `{"result":["valid"]}`, false},
		{"array body", http.StatusOK, `[]`, false},
		{"string body", http.StatusOK, `"valid"`, false},
		{"not found", http.StatusNotFound, `{"result":"valid"}`, false},
		{"server error", http.StatusInternalServerError, `oops`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newMockService(t, tt.status, tt.body)
			client := validation.NewClient(srv.URL+"/api", time.Second)

			ok, err := client.Validate(context.Background(), "john@doe.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			require.Len(t, m.requests, 1)
			assert.Equal(t, "/api/validate", m.requests[0].Path)
			assert.Equal(t, "john@doe.com", m.requests[0].Query().Get("email"))
		})
	}
}

func TestClient_ValidateEncodesEmail(t *testing.T) {
	m, srv := newMockService(t, http.StatusOK, `{"result":"valid"}`)
	client := validation.NewClient(srv.URL+"/", time.Second)

	ok, err := client.Validate(context.Background(), "john+tag@doe.com")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, m.requests, 1)
	assert.Equal(t, "/validate", m.requests[0].Path)
	assert.Equal(t, "john+tag@doe.com", m.requests[0].Query().Get("email"))
}

func TestClient_ValidateUnreachable(t *testing.T) {
	_, srv := newMockService(t, http.StatusOK, `{"result":"valid"}`)
	baseURL := srv.URL
	srv.Close()

	client := validation.NewClient(baseURL, 500*time.Millisecond)
	ok, err := client.Validate(context.Background(), "john@doe.com")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_ValidateMalformedBody(t *testing.T) {
	_, srv := newMockService(t, http.StatusOK, `<html>`)
	client := validation.NewClient(srv.URL, time.Second)

	ok, err := client.Validate(context.Background(), "john@doe.com")
	assert.False(t, ok)
	var serviceErr *validation.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusOK, serviceErr.StatusCode)
}

func TestClient_ValidateCancelledContext(t *testing.T) {
	m, srv := newMockService(t, http.StatusOK, `{"result":"valid"}`)
	client := validation.NewClient(srv.URL, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := client.Validate(ctx, "john@doe.com")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.requests, "no call is made once the context is done")
}

func TestClient_ValidateContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, `{"result":"valid"}`)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := validation.NewClient(srv.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	ok, err := client.Validate(ctx, "john@doe.com")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
