package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString is a string that can be unmarshaled from either a JSON string or a JSON number,
// so {"version": 1.2} and {"version": "1.2"} name the same tag.
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}

	// Try unmarshaling as a string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	// Keep the number's literal text; parsing into a float would turn 1.10 into 1.1
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return fmt.Errorf("FlexString: invalid number %q: %w", n, err)
		}
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: unexpected type, expected string or number")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// String converts FlexString back to string.
func (f FlexString) String() string {
	return string(f)
}
