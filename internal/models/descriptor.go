package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Descriptor is a parsed datapackage.json document.
type Descriptor map[string]any

// MalformedDescriptorError reports stored descriptor bytes that are not a JSON object.
type MalformedDescriptorError struct {
	Reason string
	Err    error
}

func (e *MalformedDescriptorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed descriptor: %s: %v", e.Reason, e.Err)
	}
	return "malformed descriptor: " + e.Reason
}

func (e *MalformedDescriptorError) Unwrap() error {
	return e.Err
}

// ParseDescriptor decodes raw into a Descriptor. Anything other than a single
// JSON object yields a *MalformedDescriptorError.
func ParseDescriptor(raw []byte) (Descriptor, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &MalformedDescriptorError{Reason: "empty document"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedDescriptorError{Reason: "invalid JSON", Err: err}
	}
	if dec.More() {
		return nil, &MalformedDescriptorError{Reason: "trailing data after JSON value"}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedDescriptorError{Reason: fmt.Sprintf("expected a JSON object, got %T", v)}
	}
	return Descriptor(obj), nil
}

// Name returns the descriptor's "name", or "" when absent or not a string.
func (d Descriptor) Name() string {
	name, _ := d["name"].(string)
	return name
}

// Validate checks the fields a package needs to be saved.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name()) == "" {
		return fmt.Errorf("descriptor must have a non-empty \"name\"")
	}
	return nil
}

// Resources returns the "resources" list, or an empty list.
func (d Descriptor) Resources() []any {
	list, _ := d["resources"].([]any)
	if list == nil {
		return []any{}
	}
	return list
}

// Views returns the "views" list, or an empty list.
func (d Descriptor) Views() []any {
	list, _ := d["views"].([]any)
	if list == nil {
		return []any{}
	}
	return list
}

// Dataset returns a copy of d extended with its owner and readme, with the
// resource list copied so callers can modify it freely.
func (d Descriptor) Dataset(owner, readme string) Descriptor {
	out := make(Descriptor, len(d)+3)
	for k, v := range d {
		out[k] = v
	}
	resources := d.Resources()
	out["resources"] = append(make([]any, 0, len(resources)), resources...)
	out["owner"] = owner
	out["readme"] = readme
	return out
}

// Marshal encodes d as JSON.
func (d Descriptor) Marshal() ([]byte, error) {
	return json.Marshal(d)
}
