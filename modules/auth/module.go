package auth

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module provides bearer token verification to the API.
type Module struct {
	config   Config
	verifier *Verifier
	logger   types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new auth module.
func NewModule(config Config, logger types.Logger) *Module {
	return &Module{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Verifier returns the token verifier. It is nil until the module has started.
func (m *Module) Verifier() *Verifier {
	return m.verifier
}

// Start validates the configuration and builds the verifier.
func (m *Module) Start(_ context.Context) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	m.verifier = NewVerifier(m.config)

	m.logger.Info("Auth module started", "issuer_check", m.config.Issuer != "")
	return nil
}

// Stop has nothing to release.
func (m *Module) Stop(_ context.Context) error {
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.verifier == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "verifier not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}
