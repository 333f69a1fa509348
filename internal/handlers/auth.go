package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/datapackage-registry/internal/middleware"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/localnerve/datapackage-registry/internal/types"
	"github.com/localnerve/datapackage-registry/internal/utils"
)

// IdentityProvider is the external login used by /auth/login and /auth/callback.
type IdentityProvider interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*services.Identity, error)
}

// AuthHandler issues tokens and signed upload urls
type AuthHandler struct {
	Auth        *services.Authenticator
	Accounts    *services.AccountStore
	Coordinator *services.Coordinator
	Identity    IdentityProvider
}

// TokenRequest is the body of POST /auth/token
type TokenRequest struct {
	Username *string `json:"username" example:"test_publisher"`
	Email    *string `json:"email" example:"test@test.com"`
	Secret   *string `json:"secret" example:"super_secret"`
}

// TokenResponse carries a bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// CallbackResponse is returned after a successful identity provider login
type CallbackResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// UploadRequest is the body of POST /auth/bitstore_upload
type UploadRequest struct {
	Publisher   *string `json:"publisher" example:"core"`
	Package     *string `json:"package" example:"gdp"`
	MD5         *string `json:"md5" example:"1B2M2Y8AsgTpgAmY7PhCfg=="`
	Path        string  `json:"path" example:"data/gdp.csv"`
	ContentType string  `json:"contentType" example:"text/csv"`
}

// UploadResponse carries the pre-signed url
type UploadResponse struct {
	Key string `json:"key"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Token handles POST /api/auth/token
// @Summary Get a bearer token
// @Description Exchange a user name or email and its secret for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body TokenRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req TokenRequest
	if err := decodeBody(c, &req); err != nil {
		return utils.SendError(c, types.Generic("Invalid request body", err))
	}

	token, err := h.Auth.TokenForCredentials(c.UserContext(), deref(req.Username), deref(req.Email), deref(req.Secret))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SuccessResponse(c, TokenResponse{Token: token}, fiber.StatusOK)
}

// Login handles GET /api/auth/login
// @Summary Log in through the identity provider
// @Tags Auth
// @Success 302
// @Failure 404 {object} utils.ErrorResponse
// @Router /auth/login [get]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.Identity == nil {
		return utils.SendError(c, types.DataNotFound("Login is not configured"))
	}
	return c.Redirect(h.Identity.LoginURL(uuid.NewString()), fiber.StatusFound)
}

// Callback handles GET /api/auth/callback
// @Summary Complete an identity provider login
// @Description Creates the user and a personal publisher on first login
// @Tags Auth
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} CallbackResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if h.Identity == nil {
		return utils.SendError(c, types.DataNotFound("Login is not configured"))
	}
	code := c.Query("code")
	if code == "" {
		return utils.SendError(c, types.AttributeMissing("code"))
	}

	identity, err := h.Identity.Exchange(c.UserContext(), code)
	if err != nil {
		return utils.SendError(c, types.Generic("Identity provider login failed", err))
	}
	user, err := h.Accounts.CreateOrUpdateFromCallback(c.UserContext(), identity)
	if err != nil {
		return utils.SendError(c, err)
	}
	token, err := h.Auth.IssueToken(user)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SuccessResponse(c, CallbackResponse{Token: token, User: user}, fiber.StatusOK)
}

// BitstoreUpload handles POST /api/auth/bitstore_upload
// @Summary Get a pre-signed upload url
// @Description Signs a PUT of one file into the latest version of a package
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UploadRequest true "Upload target"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/bitstore_upload [post]
func (h *AuthHandler) BitstoreUpload(c *fiber.Ctx) error {
	var req UploadRequest
	if err := decodeBody(c, &req); err != nil {
		return utils.SendError(c, types.Generic("Invalid request body", err))
	}

	publisher, err := required("publisher", req.Publisher)
	if err != nil {
		return utils.SendError(c, err)
	}
	pkg, err := required("package", req.Package)
	if err != nil {
		return utils.SendError(c, err)
	}
	// an empty md5 is signed as is
	if req.MD5 == nil {
		return utils.SendError(c, types.AttributeMissing("md5"))
	}

	url, err := h.Coordinator.SignedUpload(c.UserContext(), middleware.CurrentUser(c), publisher, pkg, req.Path, *req.MD5, req.ContentType)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SuccessResponse(c, UploadResponse{Key: url}, fiber.StatusOK)
}
