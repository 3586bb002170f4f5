// contest-platform/middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware rejects any request that does not carry the shared
// service token the Gateway injects. Registered before every other handler;
// there is no unauthenticated surface on this service.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("CONTEST_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ CONTEST_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		// Accept "Bearer <token>" or the raw token value.
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if token == "" {
			log.Printf("🚫 [GATEWAY_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Printf("❌ [GATEWAY_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
