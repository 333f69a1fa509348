// metadata_store.go
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

// Metadata store errors.
var (
	// ErrNoRowsAffected is returned when a mutation matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrTagExists is returned when a version tag is already taken.
	ErrTagExists = errors.New("tag already exists")

	ErrPublisherNotFound = errors.New("publisher not found")
	ErrPackageNotFound   = errors.New("package not found")
)

// ListOptions filters ListByPublisher.
type ListOptions struct {
	IncludeDeleted bool
	// AllTags lists every tag instead of only the latest working copies.
	AllTags bool
}

// PackageRepository is the metadata side of the registry.
type PackageRepository interface {
	FindPackage(ctx context.Context, publisher, pkg, tag string) (*models.PackageMetadata, error)
	ListByPublisher(ctx context.Context, publisher string, opts ListOptions) ([]models.PackageMetadata, error)
	// CreateOrUpdate upserts one tag of a package. A nil readme keeps the stored one.
	CreateOrUpdate(ctx context.Context, publisher, pkg string, descriptor []byte, readme *string, tag string) error
	CreateOrUpdateVersion(ctx context.Context, publisher, pkg, sourceTag, newTag string) error
	ChangeStatus(ctx context.Context, publisher, pkg string, status models.PackageStatus) error
	Purge(ctx context.Context, publisher, pkg string) error
	PublisherExists(ctx context.Context, publisher string) (bool, error)
}

// MetadataStore implements PackageRepository with gorm.
type MetadataStore struct {
	DB *gorm.DB
}

// quiet returns a session that does not log expected not-found lookups.
func (s *MetadataStore) quiet(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = s.DB
	}
	return tx.WithContext(ctx).Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})
}

func (s *MetadataStore) findPublisher(ctx context.Context, tx *gorm.DB, publisher string) (*models.Publisher, error) {
	var pub models.Publisher
	err := s.quiet(ctx, tx).
		Clauses(hints.Comment("select", "find_publisher")).
		Where("name = ?", publisher).
		First(&pub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &pub, nil
}

// FindPackage returns one tag of a package, whatever its status.
func (s *MetadataStore) FindPackage(ctx context.Context, publisher, pkg, tag string) (*models.PackageMetadata, error) {
	pub, err := s.findPublisher(ctx, nil, publisher)
	if err != nil {
		if errors.Is(err, ErrPublisherNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	var row models.PackageMetadata
	err = s.quiet(ctx, nil).
		Clauses(hints.Comment("select", "find_package")).
		Where("publisher_id = ? AND name = ? AND tag = ?", pub.ID, pkg, keys.NormalizeTag(tag)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	row.Publisher = pub
	return &row, nil
}

// ListByPublisher returns a publisher's packages ordered by name and tag.
// It fails with ErrPublisherNotFound when the publisher does not exist.
func (s *MetadataStore) ListByPublisher(ctx context.Context, publisher string, opts ListOptions) ([]models.PackageMetadata, error) {
	pub, err := s.findPublisher(ctx, nil, publisher)
	if err != nil {
		return nil, err
	}

	query := s.DB.WithContext(ctx).
		Clauses(hints.Comment("select", "list_packages")).
		Preload("Publisher").
		Where("publisher_id = ?", pub.ID)
	if !opts.IncludeDeleted {
		query = query.Where("status = ?", models.StatusActive)
	}
	if !opts.AllTags {
		query = query.Where("tag = ?", keys.LatestTag)
	}

	rows := []models.PackageMetadata{}
	if err := query.Order("name").Order("tag").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateOrUpdate inserts the row or overwrites its descriptor and readme,
// reactivating it if it was soft-deleted.
func (s *MetadataStore) CreateOrUpdate(ctx context.Context, publisher, pkg string, descriptor []byte, readme *string, tag string) error {
	tag = keys.NormalizeTag(tag)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pub, err := s.findPublisher(ctx, tx, publisher)
		if err != nil {
			return err
		}

		var row models.PackageMetadata
		err = s.quiet(ctx, tx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("publisher_id = ? AND name = ? AND tag = ?", pub.ID, pkg, tag).
			First(&row).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.PackageMetadata{
				Name:        pkg,
				PublisherID: pub.ID,
				Tag:         tag,
				Descriptor:  models.RawJSON(descriptor),
				Readme:      readme,
				Status:      models.StatusActive,
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"descriptor": models.RawJSON(descriptor),
			"status":     models.StatusActive,
		}
		if readme != nil {
			updates["readme"] = *readme
		}
		return tx.Model(&row).Updates(updates).Error
	})
}

// CreateOrUpdateVersion copies sourceTag's descriptor and readme into a new
// row under newTag. An existing newTag is never overwritten.
func (s *MetadataStore) CreateOrUpdateVersion(ctx context.Context, publisher, pkg, sourceTag, newTag string) error {
	sourceTag = keys.NormalizeTag(sourceTag)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pub, err := s.findPublisher(ctx, tx, publisher)
		if err != nil {
			return err
		}

		var source models.PackageMetadata
		err = s.quiet(ctx, tx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("publisher_id = ? AND name = ? AND tag = ?", pub.ID, pkg, sourceTag).
			First(&source).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.PackageMetadata{}).
			Where("publisher_id = ? AND name = ? AND tag = ?", pub.ID, pkg, newTag).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrTagExists
		}

		version := models.PackageMetadata{
			Name:        pkg,
			PublisherID: pub.ID,
			Tag:         newTag,
			Descriptor:  models.RawJSON(source.Descriptor.Bytes()),
			Readme:      source.Readme,
			Status:      source.Status,
		}
		return tx.Create(&version).Error
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTagExists
	}
	return err
}

// ChangeStatus sets the status of every tag of a package.
func (s *MetadataStore) ChangeStatus(ctx context.Context, publisher, pkg string, status models.PackageStatus) error {
	pub, err := s.findPublisher(ctx, nil, publisher)
	if err != nil {
		return err
	}

	result := s.DB.WithContext(ctx).
		Model(&models.PackageMetadata{}).
		Where("publisher_id = ? AND name = ?", pub.ID, pkg).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// Purge deletes the rows of every tag of a package.
func (s *MetadataStore) Purge(ctx context.Context, publisher, pkg string) error {
	pub, err := s.findPublisher(ctx, nil, publisher)
	if err != nil {
		return err
	}

	result := s.DB.WithContext(ctx).
		Where("publisher_id = ? AND name = ?", pub.ID, pkg).
		Delete(&models.PackageMetadata{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// PublisherExists reports whether a publisher row exists.
func (s *MetadataStore) PublisherExists(ctx context.Context, publisher string) (bool, error) {
	_, err := s.findPublisher(ctx, nil, publisher)
	if errors.Is(err, ErrPublisherNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up publisher %q: %w", publisher, err)
	}
	return true, nil
}

var _ PackageRepository = (*MetadataStore)(nil)
