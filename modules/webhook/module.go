package webhook

import (
	"context"
	"net/url"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the webhook forwarder.
type Module struct {
	config    Config
	forwarder *Forwarder
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new webhook module.
func NewModule(config Config, logger types.Logger) *Module {
	return &Module{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "webhook"
}

// Forwarder returns the forwarder. It is nil until the module has started.
func (m *Module) Forwarder() *Forwarder {
	return m.forwarder
}

// Start validates the configuration and builds the forwarder.
func (m *Module) Start(_ context.Context) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	m.forwarder = NewForwarder(m.config, m.logger)

	m.logger.Info("Webhook module started", "timeout", m.forwarder.config.Timeout.String())
	return nil
}

// Stop is a no-op; requests in flight are bounded by their own timeout.
func (m *Module) Stop(_ context.Context) error {
	return nil
}

// Health reports whether the forwarder is configured.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.forwarder == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "webhook forwarder not initialized",
		}
	}

	host := ""
	if u, err := url.Parse(m.config.URL); err == nil {
		host = u.Host
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"upstream_host": host,
			"timeout":       m.forwarder.config.Timeout.String(),
		},
	}
}
