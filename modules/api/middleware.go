package api

import (
	"strings"

	"github.com/example/product-catalog/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// CallerContextKey is the key used to store the authenticated caller in the Fiber context.
const CallerContextKey = "caller"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Caller, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller for the handlers that follow.
func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, _ := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "Bearer") || token == "" {
			return unauthenticated(c)
		}

		caller, err := verifier.Verify(token)
		if err != nil {
			return unauthenticated(c)
		}

		c.Locals(CallerContextKey, caller)
		return c.Next()
	}
}

// CallerFrom returns the caller stored by AuthMiddleware, if any.
func CallerFrom(c *fiber.Ctx) (*auth.Caller, bool) {
	caller, ok := c.Locals(CallerContextKey).(*auth.Caller)
	return caller, ok
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{Message: msgUnauthenticated})
}
