package models

import (
	"time"
)

// PackageStatus is the visibility state of a package row.
type PackageStatus string

const (
	StatusActive  PackageStatus = "active"
	StatusDeleted PackageStatus = "deleted"
)

// PackageMetadata is one version of a package; Tag "latest" is the working copy
type PackageMetadata struct {
	ID          uint64        `gorm:"primaryKey;autoIncrement"`
	Name        string        `gorm:"size:255;not null;uniqueIndex:idx_package_identity,priority:2"`
	PublisherID uint64        `gorm:"not null;uniqueIndex:idx_package_identity,priority:1"`
	Tag         string        `gorm:"size:255;not null;default:latest;uniqueIndex:idx_package_identity,priority:3"`
	Descriptor  JSON          `gorm:"not null"`
	Readme      *string       `gorm:"type:text"`
	Status      PackageStatus `gorm:"size:16;not null;default:active;index"`
	Publisher   *Publisher    `gorm:"foreignKey:PublisherID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReadmeText returns the readme, or "" when there is none.
func (p *PackageMetadata) ReadmeText() string {
	if p.Readme == nil {
		return ""
	}
	return *p.Readme
}

// TableName overrides the table name for PackageMetadata
func (PackageMetadata) TableName() string {
	return "package_metadata"
}
