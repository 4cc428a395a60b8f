package api

import (
	"errors"
	"strings"

	"github.com/example/product-catalog/modules/product"
	"github.com/example/product-catalog/modules/webhook"
	"github.com/example/product-catalog/pkg/validation"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

const (
	msgValidationFailed = "Validation failed"
	msgInvalidBody      = "Invalid request body"
	msgNotFound         = "Product not found"
	msgAlreadyDeleted   = "Product is already deleted"
	msgNotDeleted       = "Product is not deleted"
	msgUnauthenticated  = "Unauthenticated."
)

// respondError maps a service error onto a status code and body.
// failure is the message used when the error is unexpected.
func respondError(c *fiber.Ctx, logger types.Logger, err error, failure string) error {
	var verr *validation.Error
	var argErr *product.ArgumentError

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationErrorResponse{
			Message: msgValidationFailed,
			Errors:  verr.Errors,
		})
	case errors.As(err, &argErr):
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: argErr.Reason})
	case errors.Is(err, product.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(MessageResponse{Message: msgNotFound})
	case errors.Is(err, product.ErrAlreadyDeleted):
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: msgAlreadyDeleted})
	case errors.Is(err, product.ErrNotDeleted):
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: msgNotDeleted})
	}

	subject := ""
	if caller, ok := CallerFrom(c); ok {
		subject = caller.Subject
	}
	logger.Error(failure,
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"caller", subject,
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(InternalErrorResponse{
		Message: failure,
		Error:   err.Error(),
	})
}

// respondWebhookError maps a forwarder error onto a status code and body.
func respondWebhookError(c *fiber.Ctx, logger types.Logger, err error) error {
	var verr *validation.Error
	var upErr *webhook.UpstreamError
	var transportErr *webhook.TransportError

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationErrorResponse{
			Message: msgValidationFailed,
			Errors:  verr.Errors,
		})
	case errors.As(err, &upErr):
		return c.Status(upErr.ClientStatus()).JSON(WebhookUpstreamErrorResponse{
			Message:               "Failed to trigger webhook workflow. Received error status.",
			UpstreamStatus:        upErr.Status,
			UpstreamErrorResponse: upErr.Body,
		})
	case errors.As(err, &transportErr):
		return c.Status(fiber.StatusServiceUnavailable).JSON(WebhookTransportErrorResponse{
			Message:           "An error occurred during the HTTP connection to the webhook.",
			ErrorDetails:      transportErr.Err.Error(),
			UpstreamReachable: false,
		})
	}

	logger.Error("Failed to trigger webhook workflow", "request_id", requestID(c), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(InternalErrorResponse{
		Message: "Failed to trigger webhook workflow",
		Error:   err.Error(),
	})
}

// errorHandler handles errors that escaped the handlers, including unmatched routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Product ids rejected by the route constraint are products that cannot exist.
	if code == fiber.StatusNotFound && strings.HasPrefix(c.Path(), productsPath+"/") {
		message = msgNotFound
	}

	return c.Status(code).JSON(MessageResponse{Message: message})
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
