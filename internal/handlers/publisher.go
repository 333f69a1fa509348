package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/middleware"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/localnerve/datapackage-registry/internal/types"
	"github.com/localnerve/datapackage-registry/internal/utils"
)

// PublisherHandler manages publishers and their members
type PublisherHandler struct {
	Accounts *services.AccountStore
}

// PublisherRequest is the body of POST /publisher
type PublisherRequest struct {
	Name *string `json:"name" example:"core"`
}

// MemberRequest is the body of POST /publisher/{publisher}/members
type MemberRequest struct {
	Username *string `json:"username" example:"alice"`
	Role     string  `json:"role" example:"member"`
}

// accountError maps account store failures onto client errors.
func accountError(err error) error {
	switch {
	case errors.Is(err, services.ErrPublisherExists):
		return types.Conflict("Publisher already exists", err)
	case errors.Is(err, services.ErrInvalidName):
		return types.InvalidInput("Invalid publisher name")
	case errors.Is(err, services.ErrPublisherNotFound):
		return types.DataNotFound("Publisher not found")
	case errors.Is(err, services.ErrUserNotFound):
		return types.UserNotFound("User not found")
	case errors.Is(err, services.ErrNoRowsAffected):
		return types.DataNotFound("Membership not found")
	}
	return err
}

// manage checks the caller may change the publisher's members.
func manage(c *fiber.Ctx, publisher string) error {
	if err := services.AuthorizeAction(middleware.CurrentUser(c), publisher, services.ActionManageMembers); err != nil {
		return types.Forbidden("You are not allowed to perform this operation")
	}
	return nil
}

// Create handles POST /api/publisher
// @Summary Create a publisher
// @Description The caller becomes its owner
// @Tags Publisher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PublisherRequest true "Publisher"
// @Success 201 {object} models.Publisher
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /publisher [post]
func (h *PublisherHandler) Create(c *fiber.Ctx) error {
	var req PublisherRequest
	if err := decodeBody(c, &req); err != nil {
		return utils.SendError(c, types.InvalidInput("Invalid request body"))
	}
	name, err := required("name", req.Name)
	if err != nil {
		return utils.SendError(c, err)
	}

	pub, err := h.Accounts.CreatePublisher(c.UserContext(), name, middleware.CurrentUser(c))
	if err != nil {
		return utils.SendError(c, accountError(err))
	}
	return utils.SuccessResponse(c, pub, fiber.StatusCreated)
}

// AddMember handles POST /api/publisher/:publisher/members
// @Summary Add or change a member
// @Description Owners only. The role defaults to member.
// @Tags Publisher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param body body MemberRequest true "Member"
// @Success 200 {object} utils.StatusResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /publisher/{publisher}/members [post]
func (h *PublisherHandler) AddMember(c *fiber.Ctx) error {
	publisher := c.Params("publisher")
	if err := manage(c, publisher); err != nil {
		return utils.SendError(c, err)
	}

	var req MemberRequest
	if err := decodeBody(c, &req); err != nil {
		return utils.SendError(c, types.InvalidInput("Invalid request body"))
	}
	username, err := required("username", req.Username)
	if err != nil {
		return utils.SendError(c, err)
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return utils.SendError(c, types.InvalidInput("Unknown role"))
	}

	user, err := h.Accounts.FindUserByName(c.UserContext(), username)
	if err != nil {
		return utils.SendError(c, accountError(err))
	}
	if err := h.Accounts.AddMember(c.UserContext(), publisher, user, role); err != nil {
		return utils.SendError(c, accountError(err))
	}
	return utils.StatusOK(c)
}

// RemoveMember handles DELETE /api/publisher/:publisher/members/:username
// @Summary Remove a member
// @Tags Publisher
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param username path string true "User name"
// @Success 200 {object} utils.StatusResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /publisher/{publisher}/members/{username} [delete]
func (h *PublisherHandler) RemoveMember(c *fiber.Ctx) error {
	publisher := c.Params("publisher")
	if err := manage(c, publisher); err != nil {
		return utils.SendError(c, err)
	}

	user, err := h.Accounts.FindUserByName(c.UserContext(), c.Params("username"))
	if err != nil {
		return utils.SendError(c, accountError(err))
	}
	if err := h.Accounts.RemoveMember(c.UserContext(), publisher, user); err != nil {
		return utils.SendError(c, accountError(err))
	}
	return utils.StatusOK(c)
}
