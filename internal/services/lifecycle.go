// lifecycle.go
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
	"slices"
	"sort"

	"github.com/localnerve/datapackage-registry/internal/keys"
	"github.com/localnerve/datapackage-registry/internal/logging"
	"github.com/localnerve/datapackage-registry/internal/metrics"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/types"
	"github.com/sirupsen/logrus"
)

// Messages reported when one side of a lifecycle operation fails. Each names
// the store left behind so drift can be reconciled by hand.
const (
	MsgWriteObjectsFailed   = "Failed to write package to object store"
	MsgSaveMetadataFailed   = "Failed to save package metadata"
	MsgFetchMetadataFailed  = "Failed to get metadata from object store"
	MsgInvalidStoredJSON    = "Stored package descriptor is not valid JSON"
	MsgCopyFailed           = "Failed to copy objects to new version"
	MsgCreateVersionFailed  = "Failed to create new version"
	MsgACLFailed            = "Failed to change acl"
	MsgStatusFailed         = "Failed to change status"
	MsgDeleteObjectsFailed  = "Failed to delete from object store"
	MsgDeleteMetadataFailed = "Failed to delete from db"
	MsgSignURLFailed        = "Failed to sign upload url"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeMarkdown = "text/markdown"
)

// PackageView is a package version as returned to clients.
type PackageView struct {
	ID         uint64               `json:"id"`
	Name       string               `json:"name"`
	Publisher  string               `json:"publisher"`
	Descriptor models.Descriptor    `json:"descriptor"`
	Readme     string               `json:"readme"`
	Tag        string               `json:"-"`
	Status     models.PackageStatus `json:"-"`
}

// DriftReport lists the package versions present on only one side.
type DriftReport struct {
	Publisher string `json:"publisher"`
	// ObjectsWithoutRow are tag prefixes holding objects but no metadata row.
	ObjectsWithoutRow []string `json:"objects_without_row"`
	// RowsWithoutObjects are tag prefixes with a metadata row but no descriptor object.
	RowsWithoutObjects []string `json:"rows_without_objects"`
}

// Clean reports whether both stores agree.
func (r *DriftReport) Clean() bool {
	return len(r.ObjectsWithoutRow) == 0 && len(r.RowsWithoutObjects) == 0
}

// Coordinator runs package lifecycle operations across the object store and
// the metadata store. Object mutations always precede metadata mutations, and
// a failure on either side is reported with a message naming that side.
type Coordinator struct {
	Store    objectstore.Store
	Packages PackageRepository
	Layout   keys.Layout
	Locks    *PackageLocks
	Metrics  *metrics.LifecycleMetrics
}

// knownFailure reports whether err is a failure the stores signal on purpose,
// as opposed to an unexpected error whose text should reach the caller.
func knownFailure(err error) bool {
	for _, target := range []error{
		objectstore.ErrIncomplete,
		objectstore.ErrNotFound,
		objectstore.ErrAccessDenied,
		objectstore.ErrUnavailable,
		objectstore.ErrBucketNotFound,
		ErrNoRowsAffected,
		ErrPublisherNotFound,
		ErrPackageNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// step reports a sub-step failure: known failures get the fixed message,
// anything else keeps its own text.
func (c *Coordinator) step(ctx context.Context, op, outcome, message string, fields logrus.Fields, err error) *types.CustomError {
	logging.FromContext(ctx).WithFields(fields).WithField("step", message).WithError(err).Error("Package lifecycle step failed")
	c.Metrics.Record(op, outcome)
	if knownFailure(err) {
		return types.Generic(message, err)
	}
	return types.Unexpected(err)
}

func (c *Coordinator) reject(op string, err *types.CustomError) *types.CustomError {
	c.Metrics.Record(op, metrics.OutcomeRejected)
	return err
}

func (c *Coordinator) authorize(op string, user *models.User, publisher string, action Action) *types.CustomError {
	if user == nil {
		return c.reject(op, types.Unauthenticated("Authentication required"))
	}
	if err := AuthorizeAction(user, publisher, action); err != nil {
		return c.reject(op, types.Forbidden("You are not allowed to perform this operation"))
	}
	return nil
}

func fieldsFor(publisher, pkg, tag string) logrus.Fields {
	return logrus.Fields{"publisher": publisher, "package": pkg, "tag": keys.NormalizeTag(tag)}
}

func validNames(publisher, pkg string) *types.CustomError {
	if !keys.ValidSegment(publisher) {
		return types.InvalidInput("Invalid publisher name")
	}
	if !keys.ValidSegment(pkg) {
		return types.InvalidInput("Invalid package name")
	}
	return nil
}

// Save writes the descriptor (and readme, when given) to the latest prefix,
// then upserts the latest metadata row. A failed object write leaves the
// metadata untouched; a failed upsert leaves the objects in place.
// Saving a soft-deleted package restores its latest version only.
func (c *Coordinator) Save(ctx context.Context, user *models.User, publisher, pkg string, descriptor []byte, readme *string) error {
	if err := validNames(publisher, pkg); err != nil {
		return c.reject(metrics.OpSave, err)
	}
	if err := c.authorize(metrics.OpSave, user, publisher, ActionSave); err != nil {
		return err
	}

	parsed, err := models.ParseDescriptor(descriptor)
	if err != nil {
		return c.reject(metrics.OpSave, types.InvalidData(err.Error()))
	}
	if err := parsed.Validate(); err != nil {
		return c.reject(metrics.OpSave, types.InvalidData(err.Error()))
	}

	unlock := c.Locks.Lock(publisher, pkg)
	defer unlock()

	fields := fieldsFor(publisher, pkg, keys.LatestTag)
	key := c.Layout.KeyFor(publisher, pkg, keys.LatestTag, keys.DescriptorFile)
	if err := c.Store.Put(ctx, key, descriptor, contentTypeJSON, objectstore.ACLPublicRead); err != nil {
		return c.step(ctx, metrics.OpSave, metrics.OutcomeObjectFailure, MsgWriteObjectsFailed, fields, err)
	}
	if readme != nil {
		key := c.Layout.KeyFor(publisher, pkg, keys.LatestTag, keys.ReadmeFile)
		if err := c.Store.Put(ctx, key, []byte(*readme), contentTypeMarkdown, objectstore.ACLPublicRead); err != nil {
			return c.step(ctx, metrics.OpSave, metrics.OutcomeObjectFailure, MsgWriteObjectsFailed, fields, err)
		}
	}
	if err := c.reopen(ctx, metrics.OpSave, publisher, pkg, fields); err != nil {
		return err
	}

	if err := c.Packages.CreateOrUpdate(ctx, publisher, pkg, descriptor, readme, keys.LatestTag); err != nil {
		return c.step(ctx, metrics.OpSave, metrics.OutcomeMetadataFailed, MsgSaveMetadataFailed, fields, err)
	}

	c.Metrics.Record(metrics.OpSave, metrics.OutcomeOK)
	logging.FromContext(ctx).WithFields(fields).Info("Package saved")
	return nil
}

// Finalize reads the descriptor and readme uploaded to the latest prefix and
// records them in the metadata store. A missing or malformed descriptor
// aborts before the metadata write.
func (c *Coordinator) Finalize(ctx context.Context, user *models.User, publisher, pkg string) error {
	if err := validNames(publisher, pkg); err != nil {
		return c.reject(metrics.OpFinalize, err)
	}
	if err := c.authorize(metrics.OpFinalize, user, publisher, ActionFinalize); err != nil {
		return err
	}

	unlock := c.Locks.Lock(publisher, pkg)
	defer unlock()

	fields := fieldsFor(publisher, pkg, keys.LatestTag)
	raw, err := c.Store.Get(ctx, c.Layout.KeyFor(publisher, pkg, keys.LatestTag, keys.DescriptorFile))
	if err != nil {
		return c.step(ctx, metrics.OpFinalize, metrics.OutcomeObjectFailure, MsgFetchMetadataFailed, fields, err)
	}
	if _, err := models.ParseDescriptor(raw); err != nil {
		logging.FromContext(ctx).WithFields(fields).WithError(err).Error("Uploaded descriptor is malformed")
		c.Metrics.Record(metrics.OpFinalize, metrics.OutcomeObjectFailure)
		return types.Generic(MsgInvalidStoredJSON, err)
	}

	readme := ""
	data, err := c.Store.Get(ctx, c.Layout.KeyFor(publisher, pkg, keys.LatestTag, keys.ReadmeFile))
	switch {
	case err == nil:
		readme = string(data)
	case errors.Is(err, objectstore.ErrNotFound):
	default:
		return c.step(ctx, metrics.OpFinalize, metrics.OutcomeObjectFailure, MsgFetchMetadataFailed, fields, err)
	}

	if err := c.reopen(ctx, metrics.OpFinalize, publisher, pkg, fields); err != nil {
		return err
	}
	if err := c.Packages.CreateOrUpdate(ctx, publisher, pkg, raw, &readme, keys.LatestTag); err != nil {
		return c.step(ctx, metrics.OpFinalize, metrics.OutcomeMetadataFailed, MsgSaveMetadataFailed, fields, err)
	}

	c.Metrics.Record(metrics.OpFinalize, metrics.OutcomeOK)
	logging.FromContext(ctx).WithFields(fields).Info("Package finalized")
	return nil
}

// Tag publishes the latest working copy as version: the object prefix is
// copied first and the version row is recorded only if the copy succeeded.
// Existing versions are never overwritten.
func (c *Coordinator) Tag(ctx context.Context, user *models.User, publisher, pkg, version string) error {
	if version == "" {
		return c.reject(metrics.OpTag, types.AttributeMissing("version"))
	}
	if err := validNames(publisher, pkg); err != nil {
		return c.reject(metrics.OpTag, err)
	}
	if !keys.ValidSegment(version) || version == keys.LatestTag {
		return c.reject(metrics.OpTag, types.InvalidInput("Invalid version"))
	}
	if err := c.authorize(metrics.OpTag, user, publisher, ActionTag); err != nil {
		return err
	}

	unlock := c.Locks.Lock(publisher, pkg)
	defer unlock()

	latest, err := c.Packages.FindPackage(ctx, publisher, pkg, keys.LatestTag)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return c.reject(metrics.OpTag, types.DataNotFound("Package not found"))
		}
		return c.step(ctx, metrics.OpTag, metrics.OutcomeMetadataFailed, MsgCreateVersionFailed, fieldsFor(publisher, pkg, version), err)
	}
	// Deleted packages are private; a copy would publish them again.
	if latest.Status != models.StatusActive {
		return c.reject(metrics.OpTag, types.DataNotFound("Package not found"))
	}
	if _, err := c.Packages.FindPackage(ctx, publisher, pkg, version); err == nil {
		return c.reject(metrics.OpTag, types.Conflict("Version "+version+" already exists", ErrTagExists))
	} else if !errors.Is(err, ErrPackageNotFound) {
		return c.step(ctx, metrics.OpTag, metrics.OutcomeMetadataFailed, MsgCreateVersionFailed, fieldsFor(publisher, pkg, version), err)
	}

	fields := fieldsFor(publisher, pkg, version)
	src := c.Layout.PrefixFor(publisher, pkg, keys.LatestTag)
	dst := c.Layout.PrefixFor(publisher, pkg, version)
	stored, err := c.Store.List(ctx, src)
	if err != nil {
		return c.step(ctx, metrics.OpTag, metrics.OutcomeObjectFailure, MsgCopyFailed, fields, err)
	}
	descriptorKey := c.Layout.KeyFor(publisher, pkg, keys.LatestTag, keys.DescriptorFile)
	if !slices.Contains(stored, descriptorKey) {
		missing := &objectstore.ObjectError{Op: objectstore.OpCopy, Key: descriptorKey, Err: objectstore.ErrNotFound}
		return c.step(ctx, metrics.OpTag, metrics.OutcomeObjectFailure, MsgCopyFailed, fields, missing)
	}
	if err := c.Store.CopyPrefix(ctx, src, dst, objectstore.ACLPublicRead); err != nil {
		return c.step(ctx, metrics.OpTag, metrics.OutcomeObjectFailure, MsgCopyFailed, fields, err)
	}

	if err := c.Packages.CreateOrUpdateVersion(ctx, publisher, pkg, keys.LatestTag, version); err != nil {
		if errors.Is(err, ErrTagExists) {
			return c.reject(metrics.OpTag, types.Conflict("Version "+version+" already exists", err))
		}
		return c.step(ctx, metrics.OpTag, metrics.OutcomeMetadataFailed, MsgCreateVersionFailed, fields, err)
	}

	c.Metrics.Record(metrics.OpTag, metrics.OutcomeOK)
	logging.FromContext(ctx).WithFields(fields).Info("Package tagged")
	return nil
}

// SoftDelete makes every object of the package private, then marks every
// version deleted. Rows and objects are kept.
func (c *Coordinator) SoftDelete(ctx context.Context, user *models.User, publisher, pkg string) error {
	if err := validNames(publisher, pkg); err != nil {
		return c.reject(metrics.OpSoftDelete, err)
	}
	if err := c.authorize(metrics.OpSoftDelete, user, publisher, ActionSoftDelete); err != nil {
		return err
	}

	unlock := c.Locks.Lock(publisher, pkg)
	defer unlock()

	if err := c.exists(ctx, metrics.OpSoftDelete, publisher, pkg); err != nil {
		return err
	}

	fields := fieldsFor(publisher, pkg, "")
	if err := c.Store.SetACL(ctx, c.Layout.PackagePrefix(publisher, pkg), objectstore.ACLPrivate); err != nil {
		return c.step(ctx, metrics.OpSoftDelete, metrics.OutcomeObjectFailure, MsgACLFailed, fields, err)
	}
	if err := c.Packages.ChangeStatus(ctx, publisher, pkg, models.StatusDeleted); err != nil {
		return c.step(ctx, metrics.OpSoftDelete, metrics.OutcomeMetadataFailed, MsgStatusFailed, fields, err)
	}

	c.Metrics.Record(metrics.OpSoftDelete, metrics.OutcomeOK)
	logging.FromContext(ctx).WithFields(fields).Info("Package soft deleted")
	return nil
}

// Purge deletes every object of every version, then every metadata row.
// Only publisher owners may purge.
func (c *Coordinator) Purge(ctx context.Context, user *models.User, publisher, pkg string) error {
	if err := validNames(publisher, pkg); err != nil {
		return c.reject(metrics.OpPurge, err)
	}
	if err := c.authorize(metrics.OpPurge, user, publisher, ActionPurge); err != nil {
		return err
	}

	unlock := c.Locks.Lock(publisher, pkg)
	defer unlock()

	if err := c.exists(ctx, metrics.OpPurge, publisher, pkg); err != nil {
		return err
	}

	fields := fieldsFor(publisher, pkg, "")
	if err := c.Store.DeletePrefix(ctx, c.Layout.PackagePrefix(publisher, pkg)); err != nil {
		return c.step(ctx, metrics.OpPurge, metrics.OutcomeObjectFailure, MsgDeleteObjectsFailed, fields, err)
	}
	if err := c.Packages.Purge(ctx, publisher, pkg); err != nil {
		return c.step(ctx, metrics.OpPurge, metrics.OutcomeMetadataFailed, MsgDeleteMetadataFailed, fields, err)
	}

	c.Metrics.Record(metrics.OpPurge, metrics.OutcomeOK)
	logging.FromContext(ctx).WithFields(fields).Info("Package purged")
	return nil
}

// reopen makes the latest objects public again when the latest row is
// soft-deleted, ahead of the upsert that reactivates it.
func (c *Coordinator) reopen(ctx context.Context, op, publisher, pkg string, fields logrus.Fields) error {
	row, err := c.Packages.FindPackage(ctx, publisher, pkg, keys.LatestTag)
	switch {
	case errors.Is(err, ErrPackageNotFound):
		return nil
	case err != nil:
		return c.step(ctx, op, metrics.OutcomeMetadataFailed, MsgSaveMetadataFailed, fields, err)
	case row.Status == models.StatusActive:
		return nil
	}

	if err := c.Store.SetACL(ctx, c.Layout.PrefixFor(publisher, pkg, keys.LatestTag), objectstore.ACLPublicRead); err != nil {
		return c.step(ctx, op, metrics.OutcomeObjectFailure, MsgACLFailed, fields, err)
	}
	logging.FromContext(ctx).WithFields(fields).Info("Restoring soft deleted package")
	return nil
}

func (c *Coordinator) exists(ctx context.Context, op, publisher, pkg string) error {
	_, err := c.Packages.FindPackage(ctx, publisher, pkg, keys.LatestTag)
	if errors.Is(err, ErrPackageNotFound) {
		return c.reject(op, types.DataNotFound("Package not found"))
	}
	if err != nil {
		c.Metrics.Record(op, metrics.OutcomeMetadataFailed)
		return types.Unexpected(err)
	}
	return nil
}

// SignedUpload returns a pre-signed URL for uploading resource into the
// latest prefix of the package. An empty resource targets the descriptor.
func (c *Coordinator) SignedUpload(ctx context.Context, user *models.User, publisher, pkg, resource, contentMD5, contentType string) (string, error) {
	if err := validNames(publisher, pkg); err != nil {
		return "", c.reject(metrics.OpSignedUpload, err)
	}
	if resource == "" {
		resource = keys.DescriptorFile
	}
	if !keys.ValidResource(resource) {
		return "", c.reject(metrics.OpSignedUpload, types.InvalidInput("Invalid resource path"))
	}
	if err := c.authorize(metrics.OpSignedUpload, user, publisher, ActionSignedUpload); err != nil {
		return "", err
	}

	key := c.Layout.KeyFor(publisher, pkg, keys.LatestTag, resource)
	url, err := c.Store.SignedUploadURL(ctx, key, contentMD5, contentType)
	if err != nil {
		return "", c.step(ctx, metrics.OpSignedUpload, metrics.OutcomeObjectFailure, MsgSignURLFailed, fieldsFor(publisher, pkg, keys.LatestTag), err)
	}

	c.Metrics.Record(metrics.OpSignedUpload, metrics.OutcomeOK)
	return url, nil
}

func toView(row *models.PackageMetadata, publisher string) (*PackageView, error) {
	descriptor, err := models.ParseDescriptor(row.Descriptor.Bytes())
	if err != nil {
		return nil, types.Generic(MsgInvalidStoredJSON, err)
	}
	return &PackageView{
		ID:         row.ID,
		Name:       row.Name,
		Publisher:  publisher,
		Descriptor: descriptor,
		Readme:     row.ReadmeText(),
		Tag:        row.Tag,
		Status:     row.Status,
	}, nil
}

// Get returns one version of a package, deleted or not. A stored descriptor
// that is not a JSON object is reported as a server error.
func (c *Coordinator) Get(ctx context.Context, publisher, pkg, tag string) (*PackageView, error) {
	row, err := c.Packages.FindPackage(ctx, publisher, pkg, tag)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, types.DataNotFound("Package not found")
		}
		return nil, types.Unexpected(err)
	}
	return toView(row, publisher)
}

// List returns the active latest versions of a publisher's packages.
func (c *Coordinator) List(ctx context.Context, publisher string) ([]PackageView, error) {
	rows, err := c.Packages.ListByPublisher(ctx, publisher, ListOptions{})
	if err != nil {
		if errors.Is(err, ErrPublisherNotFound) {
			return nil, types.DataNotFound("Publisher not found")
		}
		return nil, types.Unexpected(err)
	}

	views := make([]PackageView, 0, len(rows))
	for i := range rows {
		view, err := toView(&rows[i], publisher)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// StoredPackages returns the names of the publisher's packages found in the
// object store alone, without consulting the metadata store.
func (c *Coordinator) StoredPackages(ctx context.Context, publisher string) ([]string, error) {
	objects, err := c.Store.List(ctx, c.Layout.PublisherPrefix(publisher))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, key := range objects {
		loc, err := c.Layout.Parse(key)
		if err != nil || loc.Resource != keys.DescriptorFile || seen[loc.Package] {
			continue
		}
		seen[loc.Package] = true
		names = append(names, loc.Package)
	}
	sort.Strings(names)
	return names, nil
}

// DetectDrift compares the publisher's tag prefixes in the object store with
// its metadata rows, including deleted ones.
func (c *Coordinator) DetectDrift(ctx context.Context, publisher string) (*DriftReport, error) {
	rows, err := c.Packages.ListByPublisher(ctx, publisher, ListOptions{IncludeDeleted: true, AllTags: true})
	if err != nil {
		return nil, err
	}
	objects, err := c.Store.List(ctx, c.Layout.PublisherPrefix(publisher))
	if err != nil {
		return nil, err
	}

	stored := make(map[string]bool)
	described := make(map[string]bool)
	for _, key := range objects {
		loc, err := c.Layout.Parse(key)
		if err != nil {
			continue
		}
		prefix := c.Layout.PrefixFor(loc.Publisher, loc.Package, loc.Tag)
		stored[prefix] = true
		if loc.Resource == keys.DescriptorFile {
			described[prefix] = true
		}
	}

	recorded := make(map[string]bool)
	report := &DriftReport{Publisher: publisher, ObjectsWithoutRow: []string{}, RowsWithoutObjects: []string{}}
	for _, row := range rows {
		prefix := c.Layout.PrefixFor(publisher, row.Name, row.Tag)
		recorded[prefix] = true
		if !described[prefix] {
			report.RowsWithoutObjects = append(report.RowsWithoutObjects, prefix)
		}
	}
	for prefix := range stored {
		if !recorded[prefix] {
			report.ObjectsWithoutRow = append(report.ObjectsWithoutRow, prefix)
		}
	}
	sort.Strings(report.ObjectsWithoutRow)
	sort.Strings(report.RowsWithoutObjects)
	return report, nil
}
