package api

import (
	"context"
	"fmt"

	"github.com/example/product-catalog/modules/auth"
	"github.com/example/product-catalog/modules/product"
	"github.com/example/product-catalog/modules/webhook"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const productsPath = "/api/products"

// Module is the HTTP API module.
type Module struct {
	port          int
	app           *fiber.App
	productModule *product.ProductModule
	webhookModule *webhook.Module
	authModule    *auth.Module
	logger        types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new API module listening on port.
func NewModule(port int, logger types.Logger) *Module {
	return &Module{
		port:   port,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// SetProductModule sets the product module dependency.
func (m *Module) SetProductModule(productModule *product.ProductModule) {
	m.productModule = productModule
}

// SetWebhookModule sets the webhook module dependency.
func (m *Module) SetWebhookModule(webhookModule *webhook.Module) {
	m.webhookModule = webhookModule
}

// SetAuthModule sets the auth module dependency.
func (m *Module) SetAuthModule(authModule *auth.Module) {
	m.authModule = authModule
}

// Start builds the Fiber app and starts listening.
// Dependencies must have been started before this module.
func (m *Module) Start(_ context.Context) error {
	if m.productModule == nil || m.productModule.Service() == nil {
		return fmt.Errorf("product module not set")
	}
	if m.webhookModule == nil || m.webhookModule.Forwarder() == nil {
		return fmt.Errorf("webhook module not set")
	}
	if m.authModule == nil || m.authModule.Verifier() == nil {
		return fmt.Errorf("auth module not set")
	}

	handlers := NewHandlers(
		m.productModule.Service(),
		m.webhookModule.Forwarder(),
		[]HealthChecker{m.productModule, m.webhookModule, m.authModule},
		m.logger,
	)
	m.app = newApp(handlers, m.authModule.Verifier())

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.port)); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// newApp creates the Fiber app with middleware and routes.
func newApp(h *Handlers, verifier TokenVerifier) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(cors.New())

	app.Get("/up", h.Up)
	app.Get("/health", h.Health)

	authenticated := AuthMiddleware(verifier)

	products := app.Group(productsPath)
	products.Get("", h.ListProducts)
	products.Get("/:id<int>", h.GetProduct)
	products.Post("", authenticated, h.CreateProduct)
	products.Put("/:id<int>", authenticated, h.UpdateProduct)
	products.Delete("/:id<int>", authenticated, h.DeleteProduct)
	products.Delete("/:id<int>/force", authenticated, h.ForceDeleteProduct)
	products.Patch("/:id<int>/restore", authenticated, h.RestoreProduct)

	app.Post("/api/webhook/trigger", h.TriggerWebhook)

	return app
}
