package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/datapackage-registry/internal/logging"
	"github.com/sirupsen/logrus"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// VersionMiddleware parses the X-Api-Version header and stores it in context
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		// Support version aliases
		if version == "1.0" {
			version = "1.0.0"
		}

		// Store version in context
		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}

// RequestLogger gives every request an id and a logrus entry carried on the
// request context. An incoming X-Request-Id is reused.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)

		entry := logrus.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Method(),
			"path":       c.Path(),
		})
		if version, ok := c.Locals("apiVersion").(string); ok {
			entry = entry.WithField("api_version", version)
		}
		c.SetUserContext(logging.WithEntry(c.UserContext(), entry))

		return c.Next()
	}
}
