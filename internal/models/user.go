package models

import (
	"time"
)

// Role is a publisher membership role.
type Role string

const (
	RoleMember Role = "member"
	RoleOwner  Role = "owner"
)

func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// Satisfies reports whether r grants at least required. Owners satisfy member.
func (r Role) Satisfies(required Role) bool {
	return r.Valid() && r.rank() >= required.rank()
}

// User is an account able to obtain tokens and publish packages
type User struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID  *string `gorm:"size:255;uniqueIndex" json:"external_id,omitempty"`
	Name        string  `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Email       string  `gorm:"size:255;index" json:"email"`
	Secret      string  `gorm:"size:255" json:"-"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Memberships []PublisherMembership `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
}

// Publisher is a namespace owning packages
type Publisher struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Members   []PublisherMembership `gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Packages  []PackageMetadata     `gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE" json:"-"`
}

// PublisherMembership links a user to a publisher with a role
type PublisherMembership struct {
	UserID      uint64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PublisherID uint64     `gorm:"primaryKey;autoIncrement:false" json:"publisher_id"`
	Role        Role       `gorm:"size:16;not null;default:member" json:"role"`
	Publisher   *Publisher `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	CreatedAt   time.Time
}

// RoleIn returns the user's role in the named publisher. Memberships must be
// loaded with their Publisher.
func (u *User) RoleIn(publisher string) (Role, bool) {
	if u == nil {
		return "", false
	}
	for _, m := range u.Memberships {
		if m.Publisher != nil && m.Publisher.Name == publisher {
			return m.Role, true
		}
	}
	return "", false
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Publisher
func (Publisher) TableName() string {
	return "publishers"
}

// TableName overrides the table name for PublisherMembership
func (PublisherMembership) TableName() string {
	return "publisher_memberships"
}
