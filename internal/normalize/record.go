package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a polymorphic order record queried by accessor or property name.
// Which accessors exist depends on the features installed in the host point
// of sale, so every lookup reports presence explicitly.
type Record interface {
	// Call invokes a named accessor; present is false when there is none.
	Call(accessor string) (value any, present bool, err error)
	// Field reads a named property.
	Field(name string) (value any, present bool)
}

// AccessorFunc computes an accessor value on demand
type AccessorFunc func() (any, error)

// Object is a Record over a property map with an optional accessor table
type Object struct {
	props     map[string]any
	accessors map[string]AccessorFunc
}

// NewObject wraps props; a nil map is treated as empty
func NewObject(props map[string]any) *Object {
	if props == nil {
		props = map[string]any{}
	}
	return &Object{props: props, accessors: map[string]AccessorFunc{}}
}

// WithAccessor registers an accessor and returns the object for chaining
func (o *Object) WithAccessor(name string, fn AccessorFunc) *Object {
	o.accessors[name] = fn
	return o
}

// WithValueAccessor registers an accessor that always returns v
func (o *Object) WithValueAccessor(name string, v any) *Object {
	return o.WithAccessor(name, func() (any, error) { return v, nil })
}

// Call runs a registered accessor. The second result is false when o has none by that name.
func (o *Object) Call(accessor string) (any, bool, error) {
	fn, ok := o.accessors[accessor]
	if !ok || fn == nil {
		return nil, false, nil
	}
	v, err := fn()
	return v, true, err
}

// Field reads a plain property
func (o *Object) Field(name string) (any, bool) {
	v, ok := o.props[name]
	return v, ok
}

// AsRecord lifts maps and records into a Record
func AsRecord(v any) (Record, bool) {
	switch r := v.(type) {
	case nil:
		return nil, false
	case Record:
		return r, true
	case map[string]any:
		return NewObject(r), true
	}
	return nil, false
}

// DecodeRecord decodes a JSON object into a property-only Record.
// Numbers are kept as json.Number so ids and quantities stay exact.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var props map[string]any
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return NewObject(props), nil
}
