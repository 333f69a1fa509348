// proxy.go
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
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"

	"github.com/localnerve/datapackage-registry/internal/keys"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/types"
)

// Resource formats served by the proxy.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ProxyReader serves resource files from the object store, transcoding CSV
// into JSON on request. When Packages is set, versions whose metadata row is
// soft-deleted are not served.
type ProxyReader struct {
	Store    objectstore.Store
	Layout   keys.Layout
	Packages PackageRepository
}

// ReadResource fetches resource (without extension) of a package version
// and renders it as format. Resources are always stored as CSV.
func (p *ProxyReader) ReadResource(ctx context.Context, publisher, pkg, resource, tag, format string) ([]byte, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, types.InvalidInput("Unsupported format: " + format)
	}
	if !keys.ValidSegment(publisher) || !keys.ValidSegment(pkg) || !keys.ValidResource(resource) {
		return nil, types.InvalidInput("Invalid resource")
	}

	if p.Packages != nil {
		row, err := p.Packages.FindPackage(ctx, publisher, pkg, tag)
		switch {
		case err == nil && row.Status != models.StatusActive:
			return nil, types.DataNotFound("Package not found")
		case err != nil && !errors.Is(err, ErrPackageNotFound):
			return nil, types.Unexpected(err)
		}
	}

	data, err := p.Store.Get(ctx, p.Layout.KeyFor(publisher, pkg, tag, resource+"."+FormatCSV))
	if err != nil {
		return nil, types.Unexpected(err)
	}

	if format == FormatCSV {
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		return data, nil
	}

	out, err := CSVToJSON(data)
	if err != nil {
		return nil, types.Unexpected(err)
	}
	return out, nil
}

// CSVToJSON converts CSV with a header row into a JSON array holding one
// object per data row, in source order. Keys are the header fields and values
// are matched by position; short rows leave later keys out.
func CSVToJSON(data []byte) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for n := 0; ; n++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		if err := writeRow(&buf, header, record); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// writeRow encodes one row as an object with keys in header order.
func writeRow(buf *bytes.Buffer, header, record []string) error {
	buf.WriteByte('{')
	for i, field := range header {
		if i >= len(record) {
			break
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field)
		if err != nil {
			return err
		}
		v, err := json.Marshal(record[i])
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}
