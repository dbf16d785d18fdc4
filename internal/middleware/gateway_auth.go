package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/auth"
)

const callerKey = "caller"

// GatewayAuth validates the bearer token minted by the chat gateway and stores
// the resulting caller in the request locals.
func GatewayAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		caller, err := auth.Parse(tokenStr, secret)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// CallerFrom returns the caller stored by GatewayAuth.
func CallerFrom(c *fiber.Ctx) (access.Caller, bool) {
	caller, ok := c.Locals(callerKey).(access.Caller)
	return caller, ok
}
