package models

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor([]byte(`{"name": "test_package", "resources": [{"path": "a.csv"}], "size": 12}`))
	require.NoError(t, err)
	assert.Equal(t, "test_package", d.Name())
	assert.Len(t, d.Resources(), 1)
	assert.Empty(t, d.Views())
	assert.NoError(t, d.Validate())
}

func TestParseDescriptorMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", "[1,2]", `"name"`, `{"a":1} {"b":2}`, "null"} {
		_, err := ParseDescriptor([]byte(raw))
		var malformed *MalformedDescriptorError
		assert.True(t, errors.As(err, &malformed), "%q", raw)
	}
}

func TestDescriptorValidate(t *testing.T) {
	for _, raw := range []string{`{"name1": "package"}`, `{"name": ""}`, `{"name": 5}`} {
		d, err := ParseDescriptor([]byte(raw))
		require.NoError(t, err)
		assert.Error(t, d.Validate(), raw)
	}
}

func TestDescriptorDataset(t *testing.T) {
	d, err := ParseDescriptor([]byte(`{"name": "pkg", "resources": [{"path": "a.csv"}]}`))
	require.NoError(t, err)

	ds := d.Dataset("pub", "README")
	assert.Equal(t, "pub", ds["owner"])
	assert.Equal(t, "README", ds["readme"])
	assert.Len(t, ds["resources"], 1)

	// the original is untouched
	_, hasOwner := d["owner"]
	assert.False(t, hasOwner)
	ds["resources"] = append(ds["resources"].([]any), "extra")
	assert.Len(t, d.Resources(), 1)
}

func TestRoleSatisfies(t *testing.T) {
	assert.True(t, RoleOwner.Satisfies(RoleOwner))
	assert.True(t, RoleOwner.Satisfies(RoleMember))
	assert.True(t, RoleMember.Satisfies(RoleMember))
	assert.False(t, RoleMember.Satisfies(RoleOwner))
	assert.False(t, Role("admin").Satisfies(RoleMember))
	assert.False(t, Role("").Valid())
}

func TestUserRoleIn(t *testing.T) {
	u := &User{Memberships: []PublisherMembership{
		{Role: RoleMember, Publisher: &Publisher{Name: "a"}},
		{Role: RoleOwner, Publisher: &Publisher{Name: "b"}},
	}}

	role, ok := u.RoleIn("b")
	assert.True(t, ok)
	assert.Equal(t, RoleOwner, role)

	_, ok = u.RoleIn("c")
	assert.False(t, ok)

	var nobody *User
	_, ok = nobody.RoleIn("a")
	assert.False(t, ok)
}

func TestPackageIdentityIsUnique(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}, &Publisher{}, &PublisherMembership{}, &PackageMetadata{}))

	pub := Publisher{Name: "pub"}
	require.NoError(t, db.Create(&pub).Error)

	row := PackageMetadata{Name: "pkg", PublisherID: pub.ID, Tag: "latest", Descriptor: RawJSON([]byte(`{"name":"pkg"}`)), Status: StatusActive}
	require.NoError(t, db.Create(&row).Error)

	dup := PackageMetadata{Name: "pkg", PublisherID: pub.ID, Tag: "latest", Descriptor: RawJSON([]byte(`{}`)), Status: StatusActive}
	err = db.Create(&dup).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	other := PackageMetadata{Name: "pkg", PublisherID: pub.ID, Tag: "v1", Descriptor: RawJSON([]byte(`{}`)), Status: StatusActive}
	assert.NoError(t, db.Create(&other).Error)

	var got PackageMetadata
	require.NoError(t, db.First(&got, row.ID).Error)
	assert.JSONEq(t, `{"name":"pkg"}`, string(got.Descriptor.Bytes()))
	assert.Equal(t, "", got.ReadmeText())
}
