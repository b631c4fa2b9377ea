package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultSheet is the schema name used for sheets without an explicit entry.
const DefaultSheet = "Default"

// ErrNoDefault is returned when a schema set lacks the Default entry.
var ErrNoDefault = errors.New("schema: missing Default sheet")

// Registry maps sheet names to schemas with a guaranteed Default fallback.
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	schemas map[string]*SheetSchema
	def     *SheetSchema
}

// NewRegistry validates the schema set and builds a registry from it.
// All problems are reported together.
func NewRegistry(schemas []SheetSchema) (*Registry, error) {
	var errs []string

	r := &Registry{schemas: make(map[string]*SheetSchema, len(schemas))}

	for i := range schemas {
		s := schemas[i]
		errs = append(errs, checkSchema(&s)...)
		if s.Name == "" {
			continue
		}
		if _, dup := r.schemas[s.Name]; dup {
			errs = append(errs, fmt.Sprintf("sheet %q: declared more than once", s.Name))
			continue
		}

		// Own the slices so later edits by the caller cannot reach us.
		fields := make([]FieldRule, len(s.Fields))
		for j, f := range s.Fields {
			f.ValidValues = append([]string(nil), f.ValidValues...)
			fields[j] = f
		}
		s.Fields = fields
		r.schemas[s.Name] = &s
	}

	def, ok := r.schemas[DefaultSheet]
	if !ok {
		errs = append(errs, ErrNoDefault.Error())
	}
	r.def = def

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return r, nil
}

// Resolve returns the schema for sheetName, or the Default schema when the
// name has no entry. It never returns nil.
func (r *Registry) Resolve(sheetName string) *SheetSchema {
	if s, ok := r.schemas[sheetName]; ok {
		return s
	}
	return r.def
}

// Lookup returns the schema registered under name without falling back.
func (r *Registry) Lookup(name string) (*SheetSchema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Default returns the fallback schema.
func (r *Registry) Default() *SheetSchema {
	return r.def
}

// Names returns registered schema names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	return len(r.schemas)
}
