package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  FlexString
	}{
		{`{"version":"v1.0"}`, "v1.0"},
		{`{"version":1.10}`, "1.10"},
		{`{"version":2}`, "2"},
		{`{"version":null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var out struct {
			Version FlexString `json:"version"`
		}
		require.NoError(t, json.Unmarshal([]byte(tt.input), &out), tt.input)
		assert.Equal(t, tt.want, out.Version, tt.input)
	}
}

func TestFlexStringRejectsObjects(t *testing.T) {
	var out struct {
		Version FlexString `json:"version"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"version":{"a":1}}`), &out))
	assert.Error(t, json.Unmarshal([]byte(`{"version":true}`), &out))
}

func TestCustomErrorHelpers(t *testing.T) {
	err := AttributeMissing("name")
	assert.Equal(t, 400, err.Status)
	assert.Equal(t, CodeAttributeMissing, err.ErrorCode)
	assert.Equal(t, "Attribute 'name' is missing", err.Message)

	wrapped := AsCustomError(assert.AnError)
	assert.Equal(t, 500, wrapped.Status)
	assert.Equal(t, CodeGenericError, wrapped.ErrorCode)
	assert.Equal(t, assert.AnError.Error(), wrapped.Message)
	assert.ErrorIs(t, wrapped, assert.AnError)

	conflict := Conflict("Tag exists", assert.AnError)
	assert.Same(t, conflict, AsCustomError(conflict))
	assert.Nil(t, AsCustomError(nil))
}
