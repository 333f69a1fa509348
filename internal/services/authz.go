// authz.go
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

package services

import (
	"errors"
	"fmt"

	"github.com/localnerve/datapackage-registry/internal/models"
)

// ErrForbidden is returned when a user lacks the role an action requires.
var ErrForbidden = errors.New("forbidden")

// Action is a registry operation subject to authorization.
type Action string

const (
	ActionSave          Action = "save"
	ActionFinalize      Action = "finalize"
	ActionTag           Action = "tag"
	ActionSoftDelete    Action = "soft_delete"
	ActionPurge         Action = "purge"
	ActionSignedUpload  Action = "signed_upload"
	ActionManageMembers Action = "manage_members"
)

// RequiredRole returns the least role allowed to perform action.
func RequiredRole(action Action) models.Role {
	switch action {
	case ActionPurge, ActionManageMembers:
		return models.RoleOwner
	}
	return models.RoleMember
}

// Authorize checks that user holds at least required in publisher. It has
// no side effects; memberships must already be loaded on user.
func Authorize(user *models.User, publisher string, required models.Role) error {
	role, ok := user.RoleIn(publisher)
	if !ok {
		return fmt.Errorf("%w: not a member of publisher %q", ErrForbidden, publisher)
	}
	if !role.Satisfies(required) {
		return fmt.Errorf("%w: %s role required in publisher %q", ErrForbidden, required, publisher)
	}
	return nil
}

// AuthorizeAction is Authorize with the role required by action.
func AuthorizeAction(user *models.User, publisher string, action Action) error {
	return Authorize(user, publisher, RequiredRole(action))
}
