package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/datapackage-registry/internal/keys"
	"github.com/localnerve/datapackage-registry/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// Account store errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPublisherExists = errors.New("publisher already exists")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidName     = errors.New("invalid name")
)

// Identity is what an identity provider reports about a logged in user.
type Identity struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Secret     string `json:"-"`
}

// NewUser describes an account created by an administrator.
type NewUser struct {
	Name   string
	Email  string
	Secret string
	// Publisher defaults to Name. The user becomes its owner.
	Publisher string
}

// AccountStore persists users, publishers and memberships.
type AccountStore struct {
	DB *gorm.DB
}

func (s *AccountStore) users(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Session(&gorm.Session{Logger: s.DB.Logger.LogMode(logger.Silent)}).
		Clauses(hints.Comment("select", "find_user")).
		Preload("Memberships.Publisher")
}

func (s *AccountStore) findUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.users(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID returns the user with its memberships loaded.
func (s *AccountStore) FindUserByID(ctx context.Context, id uint64) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// FindUserByName returns the user with its memberships loaded.
func (s *AccountStore) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	return s.findUser(ctx, "name = ?", name)
}

// FindUserByEmail returns the first user registered with email.
func (s *AccountStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

// FindPublisher returns the publisher with its members loaded.
func (s *AccountStore) FindPublisher(ctx context.Context, name string) (*models.Publisher, error) {
	var pub models.Publisher
	err := s.DB.WithContext(ctx).
		Session(&gorm.Session{Logger: s.DB.Logger.LogMode(logger.Silent)}).
		Preload("Members").
		Where("name = ?", name).
		First(&pub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &pub, nil
}

// createPublisher inserts a publisher owned by ownerID inside tx.
func createPublisher(tx *gorm.DB, name string, ownerID uint64) (*models.Publisher, error) {
	if !keys.ValidSegment(name) {
		return nil, fmt.Errorf("%w: publisher %q", ErrInvalidName, name)
	}

	pub := models.Publisher{Name: name}
	if err := tx.Create(&pub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPublisherExists
		}
		return nil, err
	}

	owner := models.PublisherMembership{UserID: ownerID, PublisherID: pub.ID, Role: models.RoleOwner}
	if err := tx.Create(&owner).Error; err != nil {
		return nil, err
	}
	return &pub, nil
}

// CreatePublisher creates a publisher with owner as its first owner.
func (s *AccountStore) CreatePublisher(ctx context.Context, name string, owner *models.User) (*models.Publisher, error) {
	var pub *models.Publisher
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pub, err = createPublisher(tx, name, owner.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// CreateUser creates an account together with the publisher it owns.
func (s *AccountStore) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: empty user name", ErrInvalidName)
	}
	publisher := in.Publisher
	if publisher == "" {
		publisher = in.Name
	}

	var id uint64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{Name: in.Name, Email: in.Email, Secret: in.Secret}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return err
		}
		id = user.ID

		_, err := createPublisher(tx, publisher, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.FindUserByID(ctx, id)
}

// AddMember grants user a role in publisher, replacing any existing role.
func (s *AccountStore) AddMember(ctx context.Context, publisher string, user *models.User, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	pub, err := s.FindPublisher(ctx, publisher)
	if err != nil {
		return err
	}

	membership := models.PublisherMembership{UserID: user.ID, PublisherID: pub.ID, Role: role}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "publisher_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&membership).Error
}

// RemoveMember drops user's membership. Removing the last owner is allowed.
func (s *AccountStore) RemoveMember(ctx context.Context, publisher string, user *models.User) error {
	pub, err := s.FindPublisher(ctx, publisher)
	if err != nil {
		return err
	}

	result := s.DB.WithContext(ctx).
		Where("user_id = ? AND publisher_id = ?", user.ID, pub.ID).
		Delete(&models.PublisherMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// CreateOrUpdateFromCallback resolves the user behind an identity provider
// login. The first login creates the user and a personal publisher named
// after them. Later logins refresh email, name and secret.
func (s *AccountStore) CreateOrUpdateFromCallback(ctx context.Context, identity *Identity) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, errors.New("identity has no external id")
	}

	var id uint64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_id = ?", identity.ExternalID).
			First(&user).Error

		if err == nil {
			id = user.ID
			updates := map[string]interface{}{"email": identity.Email}
			if identity.Name != "" {
				updates["name"] = identity.Name
			}
			if identity.Secret != "" {
				updates["secret"] = identity.Secret
			}
			return tx.Model(&user).Updates(updates).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		externalID := identity.ExternalID
		user = models.User{
			ExternalID: &externalID,
			Name:       identity.Name,
			Email:      identity.Email,
			Secret:     identity.Secret,
		}
		if user.Name == "" {
			user.Name = identity.ExternalID
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return err
		}
		id = user.ID

		_, err = createPublisher(tx, user.Name, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.FindUserByID(ctx, id)
}
