package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"marketplace-admin/internal/query"
	"marketplace-admin/pkg/utils"
)

// maxExactInt is the largest integer a JSON number (float64) holds exactly.
const maxExactInt = 1 << 53

type FieldType int

const (
	Any FieldType = iota
	String
	Bool
	Int
	Number
	Object
	List
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Number:
		return "number"
	case Object:
		return "object"
	case List:
		return "array"
	}
	return "any"
}

type Field struct {
	Name     string
	Type     FieldType
	Enum     []string
	Required bool // on create
	Secret   bool // bcrypt-hashed on write, never returned
	Unique   bool // backed by a unique index
}

// ValidationError is returned for request data the resource does not accept.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Resource describes one entity kind served by the generic CRUD routes.
type Resource struct {
	Name       string // route suffix, e.g. "seller" -> /admin-all-seller
	Collection string
	Fields     []Field
	Search     query.Spec
	// Scopes maps list query parameters to document paths; present parameters
	// narrow the base filter, which is also the total-count filter.
	Scopes map[string]string
	// Defaults are written on create (and on upsert-insert) unless supplied.
	Defaults map[string]any
	// Stamps are set to the request time on every create and update.
	Stamps []string
	// Upsert makes updates on an unknown id create the document.
	Upsert bool
	// DuplicateMessage is returned with 400 when a unique index rejects a write.
	DuplicateMessage string
}

func (r *Resource) field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Title is the capitalised name used in response messages.
func (r *Resource) Title() string {
	if r.Name == "" {
		return ""
	}
	return strings.ToUpper(r.Name[:1]) + r.Name[1:]
}

// Hidden lists fields excluded from every read.
func (r *Resource) Hidden() []string {
	var out []string
	for _, f := range r.Fields {
		if f.Secret {
			out = append(out, f.Name)
		}
	}
	return out
}

func (r *Resource) UniqueFields() []string {
	var out []string
	for _, f := range r.Fields {
		if f.Unique {
			out = append(out, f.Name)
		}
	}
	return out
}

// ScopeFilter builds the base filter from the scope parameters found by get.
func (r *Resource) ScopeFilter(get func(string) string) bson.M {
	base := bson.M{}
	for param, path := range r.Scopes {
		if v := strings.TrimSpace(get(param)); v != "" {
			base[path] = v
		}
	}
	return base
}

// Sanitize keeps only allow-listed fields from data, checking types and enums.
// On create, required fields must be present.
func (r *Resource) Sanitize(data map[string]any, create bool) (bson.M, error) {
	out := bson.M{}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f, ok := r.field(k)
		if !ok {
			return nil, &ValidationError{Field: k, Reason: "unknown field"}
		}
		v, err := f.coerce(data[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	if create {
		if err := r.CheckRequired(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CheckRequired reports the first required field missing from doc. Updates
// that may insert run it over the would-be document.
func (r *Resource) CheckRequired(doc bson.M) error {
	for _, f := range r.Fields {
		if _, ok := doc[f.Name]; f.Required && !ok {
			return &ValidationError{Field: f.Name, Reason: "is required"}
		}
	}
	return nil
}

func (f Field) coerce(v any) (any, error) {
	bad := func() error {
		return &ValidationError{Field: f.Name, Reason: "must be " + f.Type.String()}
	}
	if v == nil {
		if f.Required {
			return nil, &ValidationError{Field: f.Name, Reason: "must not be null"}
		}
		return nil, nil
	}
	switch f.Type {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("must be one of %s", strings.Join(f.Enum, ", "))}
		}
		if f.Secret {
			if s == "" {
				return nil, &ValidationError{Field: f.Name, Reason: "must not be empty"}
			}
			h, err := utils.HashPassword(s)
			if err != nil {
				return nil, &ValidationError{Field: f.Name, Reason: err.Error()}
			}
			return h, nil
		}
		return s, nil
	case Bool:
		if _, ok := v.(bool); !ok {
			return nil, bad()
		}
	case Int:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) || math.IsInf(n, 0) {
				return nil, bad()
			}
			if math.Abs(n) > maxExactInt {
				return nil, &ValidationError{Field: f.Name, Reason: "is out of range"}
			}
			return int64(n), nil
		case int, int32, int64:
			return v, nil
		default:
			return nil, bad()
		}
	case Number:
		switch v.(type) {
		case float64, float32, int, int32, int64:
		default:
			return nil, bad()
		}
	case Object:
		if _, ok := v.(map[string]any); !ok {
			return nil, bad()
		}
	case List:
		if _, ok := v.([]any); !ok {
			return nil, bad()
		}
	}
	return v, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
