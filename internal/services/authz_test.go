package services

import (
	"testing"

	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/stretchr/testify/assert"
)

func userWith(publisher string, role models.Role) *models.User {
	return &models.User{Memberships: []models.PublisherMembership{
		{Role: role, Publisher: &models.Publisher{Name: publisher}},
	}}
}

func TestAuthorize(t *testing.T) {
	owner := userWith("pub", models.RoleOwner)
	member := userWith("pub", models.RoleMember)

	cases := []struct {
		name     string
		user     *models.User
		required models.Role
		allowed  bool
	}{
		{"owner as owner", owner, models.RoleOwner, true},
		{"owner as member", owner, models.RoleMember, true},
		{"member as member", member, models.RoleMember, true},
		{"member as owner", member, models.RoleOwner, false},
		{"no membership", userWith("other", models.RoleOwner), models.RoleMember, false},
		{"nil user", nil, models.RoleMember, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.user, "pub", tc.required)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestRequiredRole(t *testing.T) {
	for _, a := range []Action{ActionSave, ActionFinalize, ActionTag, ActionSoftDelete, ActionSignedUpload} {
		assert.Equal(t, models.RoleMember, RequiredRole(a), a)
	}
	assert.Equal(t, models.RoleOwner, RequiredRole(ActionPurge))
	assert.Equal(t, models.RoleOwner, RequiredRole(ActionManageMembers))
}
