package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/middleware"
)

// Handlers groups every route handler of the API.
type Handlers struct {
	Auth      *AuthHandler
	Package   *PackageHandler
	Publisher *PublisherHandler
	Proxy     *ProxyHandler
	Health    *HealthHandler
	// Users resolves bearer tokens on the authenticated routes.
	Users middleware.UserResolver
}

// Register mounts the API on router, normally the /api group.
func (h *Handlers) Register(router fiber.Router) {
	auth := middleware.RequireUser(h.Users)

	router.Get("/health", h.Health.Health)

	authRoutes := router.Group("/auth")
	authRoutes.Post("/token", h.Auth.Token)
	authRoutes.Get("/login", h.Auth.Login)
	authRoutes.Get("/callback", h.Auth.Callback)
	authRoutes.Post("/bitstore_upload", auth, h.Auth.BitstoreUpload)

	pkg := router.Group("/package")
	pkg.Get("/:publisher", h.Package.List)
	pkg.Get("/:publisher/:package", h.Package.Get)
	pkg.Get("/:publisher/:package/dataset", h.Package.Dataset)
	pkg.Put("/:publisher/:package", auth, h.Package.Save)
	pkg.Post("/:publisher/:package/finalize", auth, h.Package.Finalize)
	pkg.Post("/:publisher/:package/tag", auth, h.Package.Tag)
	pkg.Delete("/:publisher/:package/purge", auth, h.Package.Purge)
	pkg.Delete("/:publisher/:package", auth, h.Package.Delete)

	pub := router.Group("/publisher")
	pub.Post("/", auth, h.Publisher.Create)
	pub.Post("/:publisher/members", auth, h.Publisher.AddMember)
	pub.Delete("/:publisher/members/:username", auth, h.Publisher.RemoveMember)

	router.Get("/dataproxy/:publisher/:package/r/:resource", h.Proxy.Resource)
}

// NotFound answers requests no route matched.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error_code": "DATA_NOT_FOUND",
		"message":    "[404] Resource Not Found: " + c.OriginalURL(),
	})
}
