package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the service's dependencies
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
	Store  objectstore.Store
}

// Health handles GET /api/health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Store)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
