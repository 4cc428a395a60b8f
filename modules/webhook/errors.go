package webhook

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when the webhook URL or application ID is missing.
var ErrNotConfigured = errors.New("webhook is not configured")

// UpstreamError is returned when the automation service answered with an error status.
type UpstreamError struct {
	Status int
	// Body is the upstream response, decoded JSON when possible, raw text otherwise.
	Body any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.Status)
}

// ClientStatus maps the upstream status onto the status reported to our caller:
// client errors become 400, everything else 500.
func (e *UpstreamError) ClientStatus() int {
	if e.Status >= 400 && e.Status < 500 {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// TransportError is returned when the automation service could not be reached
// or did not answer in time.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webhook transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
