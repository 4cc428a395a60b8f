package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/product-catalog/pkg/validation"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct {
	errors int
}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) { m.errors++ }
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newTestForwarder(url string, timeout time.Duration) (*Forwarder, *mockLogger) {
	logger := &mockLogger{}
	return NewForwarder(Config{URL: url, ApplicationID: "app-42", Timeout: timeout}, logger), logger
}

func TestForwarder_Trigger_Success(t *testing.T) {
	var received Payload
	var requestID string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		requestID = r.Header.Get("X-Request-ID")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"executionId":"abc"}`))
	}))
	defer upstream.Close()

	f, logger := newTestForwarder(upstream.URL, time.Second)

	result, err := f.Trigger(context.Background(), map[string]any{"keyword": "sale"}, "req-1")
	require.NoError(t, err)

	assert.Equal(t, Payload{ApplicationID: "app-42", Keyword: "sale"}, received)
	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, received, result.SentPayload)
	assert.Equal(t, map[string]any{"executionId": "abc"}, result.UpstreamResponse)
	assert.Zero(t, logger.errors)
}

func TestForwarder_Trigger_PlainTextResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Workflow was started")
	}))
	defer upstream.Close()

	f, _ := newTestForwarder(upstream.URL, time.Second)

	result, err := f.Trigger(context.Background(), map[string]any{"keyword": "sale"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Workflow was started", result.UpstreamResponse)
}

func TestForwarder_Trigger_Validation(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer upstream.Close()

	f, _ := newTestForwarder(upstream.URL, time.Second)

	for _, input := range []map[string]any{
		{},
		{"keyword": ""},
		{"keyword": 12},
		{"keyword": strings.Repeat("k", 101)},
	} {
		_, err := f.Trigger(context.Background(), input, "")

		var verr *validation.Error
		require.True(t, errors.As(err, &verr), "input %v", input)
		assert.Contains(t, verr.Errors, "keyword")
	}
	assert.Zero(t, calls, "invalid input must not reach upstream")
}

func TestForwarder_Trigger_UpstreamErrorStatus(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		clientStatus int
	}{
		{"not found maps to bad request", http.StatusNotFound, http.StatusBadRequest},
		{"unprocessable maps to bad request", http.StatusUnprocessableEntity, http.StatusBadRequest},
		{"service unavailable maps to internal error", http.StatusServiceUnavailable, http.StatusInternalServerError},
		{"internal error stays internal error", http.StatusInternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			}))
			defer upstream.Close()

			f, logger := newTestForwarder(upstream.URL, time.Second)

			_, err := f.Trigger(context.Background(), map[string]any{"keyword": "sale"}, "")

			var upErr *UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, tt.status, upErr.Status)
			assert.Equal(t, tt.clientStatus, upErr.ClientStatus())
			assert.Equal(t, map[string]any{"message": "nope"}, upErr.Body)
			assert.Equal(t, 1, calls, "no retries")
			assert.Equal(t, 1, logger.errors)
		})
	}
}

func TestForwarder_Trigger_Timeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer upstream.Close()
	defer close(release)

	f, logger := newTestForwarder(upstream.URL, 50*time.Millisecond)

	_, err := f.Trigger(context.Background(), map[string]any{"keyword": "sale"}, "")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 1, logger.errors)
}

func TestForwarder_Trigger_Unreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	f, _ := newTestForwarder(url, time.Second)

	_, err := f.Trigger(context.Background(), map[string]any{"keyword": "sale"}, "")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	var upErr *UpstreamError
	assert.False(t, errors.As(err, &upErr))
}

func TestNewForwarder_DefaultTimeout(t *testing.T) {
	f, _ := newTestForwarder("http://example.test", 0)
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{URL: "https://automation.example.com/webhook/x", ApplicationID: "app"}, false},
		{"missing url", Config{ApplicationID: "app"}, true},
		{"relative url", Config{URL: "/webhook", ApplicationID: "app"}, true},
		{"unsupported scheme", Config{URL: "ftp://example.com", ApplicationID: "app"}, true},
		{"missing application id", Config{URL: "https://example.com"}, true},
		{"negative timeout", Config{URL: "https://example.com", ApplicationID: "app", Timeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotConfigured)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModule_StartValidatesConfig(t *testing.T) {
	m := NewModule(Config{}, &mockLogger{})
	assert.ErrorIs(t, m.Start(context.Background()), ErrNotConfigured)
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.Nil(t, m.Forwarder())

	m = NewModule(Config{URL: "https://example.com/hook", ApplicationID: "app"}, &mockLogger{})
	require.NoError(t, m.Start(context.Background()))
	require.NotNil(t, m.Forwarder())

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "example.com", status.Details["upstream_host"])
	assert.Equal(t, "webhook", m.Name())
	assert.NoError(t, m.Stop(context.Background()))
}
