package models

import (
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping.
// The bytes are stored as given; validation happens when a Descriptor is parsed.
type JSON struct {
	datatypes.JSON
}

// RawJSON wraps raw bytes without validating them.
func RawJSON(raw []byte) JSON {
	return JSON{JSON: datatypes.JSON(append([]byte(nil), raw...))}
}

// Bytes returns the stored document.
func (j JSON) Bytes() []byte {
	return []byte(j.JSON)
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return "null", nil
	}
	return string(j.JSON), nil
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL has no json type, and sqlite stores text so stored-but-malformed
// descriptors stay representable there.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "TEXT"
	}
	return "TEXT"
}
