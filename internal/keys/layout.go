// layout.go
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

// Package keys maps (publisher, package, tag, resource) onto object store keys.
//
// Every object lives under
//
//	<prefix>/<publisher>/<package>/_v/<tag>/<resource>
//
// and the mapping is reversible with [Layout.Parse].
package keys

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LatestTag is the mutable working copy of a package.
	LatestTag = "latest"

	// DescriptorFile is the canonical metadata document of a package.
	DescriptorFile = "datapackage.json"

	// ReadmeFile is the optional readme stored next to the descriptor.
	ReadmeFile = "README.md"

	// DefaultPrefix is the type-prefix segment used when none is configured.
	DefaultPrefix = "metadata"

	versionSegment = "_v"
)

// ErrMalformedKey is returned by Parse when a key does not follow the layout.
var ErrMalformedKey = errors.New("malformed object key")

// Location is a parsed object key.
type Location struct {
	Publisher string
	Package   string
	Tag       string
	Resource  string
}

// Layout computes object keys under a fixed type prefix.
type Layout struct {
	Prefix string
}

// New returns a Layout for prefix, falling back to DefaultPrefix.
func New(prefix string) Layout {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Layout{Prefix: prefix}
}

func (l Layout) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return l.Prefix
}

// NormalizeTag returns LatestTag for an empty tag.
func NormalizeTag(tag string) string {
	if tag == "" {
		return LatestTag
	}
	return tag
}

// KeyFor returns the key of resource in the given package version.
func (l Layout) KeyFor(publisher, pkg, tag, resource string) string {
	return l.PrefixFor(publisher, pkg, tag) + resource
}

// PrefixFor returns the prefix holding every object of one package version.
func (l Layout) PrefixFor(publisher, pkg, tag string) string {
	return l.PackagePrefix(publisher, pkg) + versionSegment + "/" + NormalizeTag(tag) + "/"
}

// PackagePrefix returns the prefix holding every version of a package.
func (l Layout) PackagePrefix(publisher, pkg string) string {
	return l.PublisherPrefix(publisher) + pkg + "/"
}

// PublisherPrefix returns the prefix holding every package of a publisher.
func (l Layout) PublisherPrefix(publisher string) string {
	return l.prefix() + "/" + publisher + "/"
}

// Parse splits key back into its components. Resource may contain slashes.
func (l Layout) Parse(key string) (Location, error) {
	root := l.prefix() + "/"
	if !strings.HasPrefix(key, root) {
		return Location{}, fmt.Errorf("%w: %q lacks prefix %q", ErrMalformedKey, key, root)
	}

	parts := strings.SplitN(strings.TrimPrefix(key, root), "/", 5)
	if len(parts) != 5 || parts[2] != versionSegment {
		return Location{}, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	for _, p := range parts {
		if p == "" {
			return Location{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedKey, key)
		}
	}

	return Location{
		Publisher: parts[0],
		Package:   parts[1],
		Tag:       parts[3],
		Resource:  parts[4],
	}, nil
}

// ValidResource reports whether name is a usable resource path below a tag
// prefix. Nested paths are allowed, traversal and empty segments are not.
func ValidResource(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// ValidSegment reports whether s can be used as a publisher, package or tag name.
func ValidSegment(s string) bool {
	return s != "" && s != versionSegment && !strings.Contains(s, "/")
}
