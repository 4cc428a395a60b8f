package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	domain "github.com/example/product-catalog/domain/product"
	"github.com/example/product-catalog/modules/product"
	"github.com/example/product-catalog/modules/webhook"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

var errNotObject = errors.New("request body must be a JSON object")

// ProductService is the product lifecycle used by the handlers.
type ProductService interface {
	Create(ctx context.Context, input map[string]any) (*domain.Product, error)
	Show(ctx context.Context, id uint) (*domain.Product, error)
	List(ctx context.Context, params product.ListParams) (*product.Page, error)
	Update(ctx context.Context, id uint, input map[string]any) (*domain.Product, error)
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) (*domain.Product, error)
	HardDestroy(ctx context.Context, id uint) (domain.State, error)
}

// WebhookForwarder relays trigger requests upstream.
type WebhookForwarder interface {
	Trigger(ctx context.Context, input map[string]any, requestID string) (*webhook.Result, error)
}

// HealthChecker is a module that reports its health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	products ProductService
	webhook  WebhookForwarder
	checkers []HealthChecker
	logger   types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(products ProductService, forwarder WebhookForwarder, checkers []HealthChecker, logger types.Logger) *Handlers {
	return &Handlers{
		products: products,
		webhook:  forwarder,
		checkers: checkers,
		logger:   logger,
	}
}

// Up handles GET /up.
func (h *Handlers) Up(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up"})
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "healthy",
		Modules: make(map[string]ModuleHealth, len(h.checkers)),
	}

	for _, checker := range h.checkers {
		status := checker.Health(c.UserContext())
		resp.Modules[checker.Name()] = ModuleHealth{
			Healthy: status.Healthy,
			Message: status.Message,
			Details: status.Details,
		}
		if !status.Healthy {
			resp.Status = "unhealthy"
		}
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// ListProducts handles GET /api/products.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	params := product.ListParams{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		PerPage:   c.Query("per_page"),
		Page:      c.Query("page"),
	}
	args := c.Context().QueryArgs()
	if args.Has("name") {
		name := c.Query("name")
		params.Name = &name
	}
	if args.Has("is_active") {
		active := c.Query("is_active")
		params.IsActive = &active
	}

	page, err := h.products.List(c.UserContext(), params)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch products")
	}

	return c.JSON(toListProductsResponse(page, c.BaseURL()+c.Path()))
}

// GetProduct handles GET /api/products/:id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return respondError(c, h.logger, product.ErrNotFound, "")
	}

	p, err := h.products.Show(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch product")
	}

	return c.JSON(ProductResponse{Data: p})
}

// CreateProduct handles POST /api/products.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	input, err := decodeInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: msgInvalidBody})
	}

	p, err := h.products.Create(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create product")
	}

	return c.Status(fiber.StatusCreated).JSON(ProductResponse{
		Message: "Product created successfully",
		Data:    p,
	})
}

// UpdateProduct handles PUT /api/products/:id.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return respondError(c, h.logger, product.ErrNotFound, "")
	}

	input, err := decodeInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: msgInvalidBody})
	}

	p, err := h.products.Update(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update product")
	}

	return c.JSON(ProductResponse{
		Message: "Product updated successfully",
		Data:    p,
	})
}

// DeleteProduct handles DELETE /api/products/:id.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return respondError(c, h.logger, product.ErrNotFound, "")
	}

	if err := h.products.SoftDelete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete product")
	}

	return c.JSON(MessageResponse{Message: "Product deleted successfully"})
}

// ForceDeleteProduct handles DELETE /api/products/:id/force.
func (h *Handlers) ForceDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return respondError(c, h.logger, product.ErrNotFound, "")
	}

	if _, err := h.products.HardDestroy(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "Failed to permanently delete product")
	}

	return c.JSON(MessageResponse{Message: "Product permanently deleted successfully"})
}

// RestoreProduct handles PATCH /api/products/:id/restore.
func (h *Handlers) RestoreProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return respondError(c, h.logger, product.ErrNotFound, "")
	}

	p, err := h.products.Restore(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to restore product")
	}

	return c.JSON(ProductResponse{
		Message: "Product restored successfully",
		Data:    p,
	})
}

// TriggerWebhook handles POST /api/webhook/trigger.
func (h *Handlers) TriggerWebhook(c *fiber.Ctx) error {
	input, err := decodeInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: msgInvalidBody})
	}

	result, err := h.webhook.Trigger(c.UserContext(), input, requestID(c))
	if err != nil {
		return respondWebhookError(c, h.logger, err)
	}

	return c.JSON(WebhookTriggeredResponse{
		Message:          "Webhook workflow successfully triggered.",
		SentPayload:      result.SentPayload,
		UpstreamResponse: result.UpstreamResponse,
	})
}

// productID parses the :id route parameter. Ids that cannot exist report false.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// decodeInput reads a JSON object or urlencoded form body into a loosely typed map.
// Numbers keep their textual form so integer rules can be applied exactly.
func decodeInput(c *fiber.Ctx) (map[string]any, error) {
	input := make(map[string]any)

	if bytes.HasPrefix(c.Request().Header.ContentType(), []byte(fiber.MIMEApplicationForm)) {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			input[string(key)] = string(value)
		})
		return input, nil
	}

	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return input, nil
	}
	if body[0] != '{' {
		return nil, errNotObject
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		return nil, err
	}
	return input, nil
}
