// common.go
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
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/types"
	"github.com/localnerve/datapackage-registry/internal/utils"
)

var errEmptyBody = errors.New("request body is empty")

// decodeBody unmarshals the raw request body into v, whatever the
// Content-Type header says.
func decodeBody(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, v)
}

// required returns the value of a field that must be present, or an
// ATTRIBUTE_MISSING error naming it.
func required(name string, value *string) (string, error) {
	if value == nil || *value == "" {
		return "", types.AttributeMissing(name)
	}
	return *value, nil
}

// ErrorHandler is the fiber ErrorHandler: every error leaving a handler is
// written as {"error_code", "message"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status := fe.Code
		code := types.CodeGenericError
		switch {
		case status == fiber.StatusNotFound:
			code = types.CodeDataNotFound
		case status < fiber.StatusInternalServerError:
			code = types.CodeInvalidInput
		}
		return c.Status(status).JSON(utils.ErrorResponse{ErrorCode: string(code), Message: fe.Message})
	}
	return utils.SendError(c, err)
}
