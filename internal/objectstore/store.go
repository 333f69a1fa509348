// store.go
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

// Package objectstore defines the object storage capability used for package
// descriptors, readmes and resource files.
//
// Keys follow the layout computed by the keys package. Bulk operations work on
// a key prefix and report partial failure through [BatchError]:
//
//	err := store.DeletePrefix(ctx, layout.PackagePrefix(pub, pkg))
//	if errors.Is(err, objectstore.ErrIncomplete) {
//	    // some objects remain
//	}
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors returned by Store implementations.
var (
	// ErrNotFound is returned when the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrAccessDenied is returned when the credentials lack permission for the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnavailable is returned when the store cannot be reached or timed out.
	ErrUnavailable = errors.New("object store unavailable")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrIncomplete is returned when a prefix operation failed for some objects.
	ErrIncomplete = errors.New("operation incomplete")
)

// ACL is a canned object visibility.
type ACL string

const (
	ACLPublicRead ACL = "public-read"
	ACLPrivate    ACL = "private"
)

// ObjectError wraps an error with the object key for context.
type ObjectError struct {
	Op  string // Operation that failed (e.g., "Put", "Get", "SetACL")
	Key string // Object key or prefix
	Err error  // Underlying error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("objectstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

// BatchError reports the keys a prefix operation could not process.
// It matches ErrIncomplete with errors.Is.
type BatchError struct {
	Op     string
	Prefix string
	Failed map[string]error
}

func (e *BatchError) Error() string {
	keys := make([]string, 0, len(e.Failed))
	for k := range e.Failed {
		keys = append(keys, k)
	}
	return fmt.Sprintf("objectstore: %s %q: %d object(s) failed: %s", e.Op, e.Prefix, len(e.Failed), strings.Join(keys, ", "))
}

func (e *BatchError) Is(target error) bool {
	return target == ErrIncomplete
}

// Store is the interface for object storage operations.
//
// All methods accept a context for cancellation and deadline propagation.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data at key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string, acl ACL) error

	// Get retrieves an entire object.
	//
	// Returns ErrNotFound if the object doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// CopyPrefix duplicates every object under src to the same relative key under dst.
	// Copies carry acl, not the ACL of their source.
	// Returns a *BatchError if any object failed to copy.
	CopyPrefix(ctx context.Context, src, dst string, acl ACL) error

	// DeletePrefix removes every object under prefix.
	// Returns a *BatchError if any object failed to delete.
	DeletePrefix(ctx context.Context, prefix string) error

	// SetACL changes the visibility of every object under prefix.
	// Returns a *BatchError if any object failed to change.
	SetACL(ctx context.Context, prefix string, acl ACL) error

	// SignedUploadURL returns a time limited URL that accepts a single PUT of
	// an object whose Content-MD5 equals contentMD5.
	SignedUploadURL(ctx context.Context, key, contentMD5, contentType string) (string, error)

	// List returns the keys under prefix in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// DefaultSignedURLTTL is the lifetime of signed upload URLs when none is configured.
const DefaultSignedURLTTL = 15 * time.Minute
