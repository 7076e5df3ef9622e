package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Well-known selection keys captured on cart and order lines.
const (
	AttrColor  = "color"
	AttrSize   = "size"
	AttrModel  = "model"
	AttrCustom = "custom"
)

// Attributes is a free-form name → value bag (color, size, model, custom
// options). It is stored as a JSON text column and only serialized at the
// storage boundary.
type Attributes map[string]string

// Get returns the value for name, or "" when absent.
func (a Attributes) Get(name string) string { return a[name] }

// With returns a copy of a with name set to value.
func (a Attributes) With(name, value string) Attributes {
	out := a.Clone()
	if out == nil {
		out = Attributes{}
	}
	out[name] = value
	return out
}

// Clone returns an independent copy; nil stays nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal compares two bags; nil and empty are equal.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// String renders the bag as sorted key=value pairs.
func (a Attributes) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+a[k])
	}
	return strings.Join(parts, ",")
}

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("attributes: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("attributes: %w", err)
	}
	if len(m) == 0 {
		*a = nil
		return nil
	}
	*a = Attributes(m)
	return nil
}

// GormDataType maps the bag to a text column on every dialect.
func (Attributes) GormDataType() string { return "text" }
