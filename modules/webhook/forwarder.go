package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/product-catalog/pkg/validation"
	"github.com/go-monolith/mono/pkg/types"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 1 << 20

// triggerRules validate the body of a trigger request.
var triggerRules = validation.Rules{
	{Field: "keyword", Kind: validation.String, Required: true, Constraint: "max=100"},
}

// Config configures the upstream automation service.
type Config struct {
	URL           string
	ApplicationID string
	Timeout       time.Duration
}

// Validate reports missing or malformed settings.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: WEBHOOK_URL is required", ErrNotConfigured)
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: WEBHOOK_URL must be an absolute http(s) URL", ErrNotConfigured)
	}
	if c.ApplicationID == "" {
		return fmt.Errorf("%w: WEBHOOK_APPLICATION_ID is required", ErrNotConfigured)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: WEBHOOK_TIMEOUT must not be negative", ErrNotConfigured)
	}
	return nil
}

// Payload is the body sent to the automation service.
type Payload struct {
	ApplicationID string `json:"application_id"`
	Keyword       string `json:"keyword"`
}

// Result describes a successful forward.
type Result struct {
	SentPayload      Payload
	UpstreamResponse any
}

// Forwarder relays trigger requests to the automation service.
type Forwarder struct {
	config Config
	client *http.Client
	logger types.Logger
}

// NewForwarder creates a Forwarder. A zero timeout means DefaultTimeout.
func NewForwarder(config Config, logger types.Logger) *Forwarder {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Forwarder{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Trigger validates input and posts it to the automation service exactly once.
// Errors are *validation.Error, *UpstreamError or *TransportError.
func (f *Forwarder) Trigger(ctx context.Context, input map[string]any, requestID string) (*Result, error) {
	attrs, err := validation.Validate(triggerRules, input)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		ApplicationID: f.config.ApplicationID,
		Keyword:       attrs["keyword"].(string),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Webhook connection failed",
			"url", f.config.URL,
			"request_id", requestID,
			"error", err,
		)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		f.logger.Error("Webhook response could not be read",
			"url", f.config.URL,
			"status", resp.StatusCode,
			"error", err,
		)
		return nil, &TransportError{Err: err}
	}
	decoded := decodeBody(raw)

	if resp.StatusCode >= http.StatusBadRequest {
		f.logger.Error("Webhook returned error status",
			"url", f.config.URL,
			"status", resp.StatusCode,
			"request_id", requestID,
			"response", string(raw),
		)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: decoded}
	}

	f.logger.Info("Webhook triggered",
		"keyword", payload.Keyword,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return &Result{SentPayload: payload, UpstreamResponse: decoded}, nil
}

// decodeBody returns the JSON value of raw, the raw text if it is not JSON,
// or nil when it is empty.
func decodeBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(raw)
}
