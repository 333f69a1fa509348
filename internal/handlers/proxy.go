package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/localnerve/datapackage-registry/internal/utils"
)

// ProxyHandler serves package resources straight from the object store
type ProxyHandler struct {
	Proxy *services.ProxyReader
}

// Resource handles GET /api/dataproxy/:publisher/:package/r/:resource
// @Summary Read a resource
// @Description The resource name ends with .csv or .json; json is converted from the stored csv
// @Tags DataProxy
// @Produce plain
// @Produce json
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Param resource path string true "Resource file, e.g. gdp.csv"
// @Param tag query string false "Version tag, latest by default"
// @Success 200 {string} string
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /dataproxy/{publisher}/{package}/r/{resource} [get]
func (h *ProxyHandler) Resource(c *fiber.Ctx) error {
	resource, format := c.Params("resource"), ""
	if i := strings.LastIndexByte(resource, '.'); i >= 0 {
		resource, format = resource[:i], resource[i+1:]
	}

	body, err := h.Proxy.ReadResource(c.UserContext(), c.Params("publisher"), c.Params("package"), resource, c.Query("tag"), format)
	if err != nil {
		return utils.SendError(c, err)
	}

	if format == services.FormatJSON {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		c.Set(fiber.HeaderContentType, "text/csv")
	}
	return c.Status(fiber.StatusOK).Send(body)
}
