// package.go
//
// A publisher-scoped data package registry over relational metadata and object storage
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of datapackage-registry.
// datapackage-registry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// datapackage-registry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with datapackage-registry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/middleware"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/localnerve/datapackage-registry/internal/types"
	"github.com/localnerve/datapackage-registry/internal/utils"
)

// PackageHandler handles package metadata routes
type PackageHandler struct {
	Coordinator *services.Coordinator
}

// PackageList is the body of GET /package/{publisher}
type PackageList struct {
	Data []services.PackageView `json:"data"`
}

// TagRequest is the body of POST /package/{publisher}/{package}/tag.
// Numeric versions such as {"version": 1.10} keep their literal text.
type TagRequest struct {
	Version types.FlexString `json:"version" swaggertype:"string" example:"v1.0"`
}

// List handles GET /api/package/:publisher
// @Summary List a publisher's packages
// @Description Latest versions of the publisher's active packages, ordered by name
// @Tags Package
// @Produce json
// @Param publisher path string true "Publisher"
// @Success 200 {object} PackageList
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher} [get]
func (h *PackageHandler) List(c *fiber.Ctx) error {
	views, err := h.Coordinator.List(c.UserContext(), c.Params("publisher"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SuccessResponse(c, PackageList{Data: views}, fiber.StatusOK)
}

// Get handles GET /api/package/:publisher/:package
// @Summary Get package metadata
// @Tags Package
// @Produce json
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Param tag query string false "Version tag, latest by default"
// @Success 200 {object} services.PackageView
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package} [get]
func (h *PackageHandler) Get(c *fiber.Ctx) error {
	view, err := h.Coordinator.Get(c.UserContext(), c.Params("publisher"), c.Params("package"), c.Query("tag"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// Dataset handles GET /api/package/:publisher/:package/dataset
// @Summary Get the packaged dataset view
// @Description The descriptor with its owner and readme merged in
// @Tags Package
// @Produce json
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Param tag query string false "Version tag, latest by default"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package}/dataset [get]
func (h *PackageHandler) Dataset(c *fiber.Ctx) error {
	view, err := h.Coordinator.Get(c.UserContext(), c.Params("publisher"), c.Params("package"), c.Query("tag"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SuccessResponse(c, view.Descriptor.Dataset(view.Publisher, view.Readme), fiber.StatusOK)
}

// Save handles PUT /api/package/:publisher/:package
// @Summary Save a package descriptor
// @Description Writes the descriptor to the latest version and upserts its metadata
// @Tags Package
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Param body body object true "datapackage.json"
// @Success 200 {object} utils.StatusResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package} [put]
func (h *PackageHandler) Save(c *fiber.Ctx) error {
	// fiber reuses the body buffer after the handler returns
	descriptor := append([]byte(nil), c.Body()...)

	err := h.Coordinator.Save(c.UserContext(), middleware.CurrentUser(c), c.Params("publisher"), c.Params("package"), descriptor, nil)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.StatusOK(c)
}

// Finalize handles POST /api/package/:publisher/:package/finalize
// @Summary Finalize an uploaded package
// @Description Reads the uploaded descriptor and readme back from storage into metadata
// @Tags Package
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Success 200 {object} utils.StatusResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package}/finalize [post]
func (h *PackageHandler) Finalize(c *fiber.Ctx) error {
	err := h.Coordinator.Finalize(c.UserContext(), middleware.CurrentUser(c), c.Params("publisher"), c.Params("package"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.StatusOK(c)
}

// Tag handles POST /api/package/:publisher/:package/tag
// @Summary Tag the latest version
// @Description Copies the latest objects and metadata to a new version
// @Tags Package
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Param body body TagRequest true "Version"
// @Success 200 {object} utils.StatusResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package}/tag [post]
func (h *PackageHandler) Tag(c *fiber.Ctx) error {
	var req TagRequest
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &req); err != nil {
			return utils.SendError(c, types.InvalidInput("Invalid request body"))
		}
	}

	err := h.Coordinator.Tag(c.UserContext(), middleware.CurrentUser(c), c.Params("publisher"), c.Params("package"), req.Version.String())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.StatusOK(c)
}

// Delete handles DELETE /api/package/:publisher/:package
// @Summary Soft delete a package
// @Description Makes every version private and marks it deleted
// @Tags Package
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Success 200 {object} utils.StatusResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package} [delete]
func (h *PackageHandler) Delete(c *fiber.Ctx) error {
	err := h.Coordinator.SoftDelete(c.UserContext(), middleware.CurrentUser(c), c.Params("publisher"), c.Params("package"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.StatusOK(c)
}

// Purge handles DELETE /api/package/:publisher/:package/purge
// @Summary Purge a package
// @Description Removes every version from storage and metadata. Owners only.
// @Tags Package
// @Produce json
// @Security BearerAuth
// @Param publisher path string true "Publisher"
// @Param package path string true "Package"
// @Success 200 {object} utils.StatusResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /package/{publisher}/{package}/purge [delete]
func (h *PackageHandler) Purge(c *fiber.Ctx) error {
	err := h.Coordinator.Purge(c.UserContext(), middleware.CurrentUser(c), c.Params("publisher"), c.Params("package"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.StatusOK(c)
}
