// Package schema defines the per-sheet field rules that drive row validation
// and the registry that resolves a sheet name to its rule set.
//
// Schemas are configuration, not runtime state: a Registry is built once at
// startup (from the built-in tables or a YAML file), validated, and then only
// read. Every registry carries a Default schema which is used for any sheet
// name without an explicit entry.
package schema

// FieldType is the target type a cell value is coerced to.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeDate    FieldType = "date"
	TypeBoolean FieldType = "boolean"
)

// FieldRule is the validation and coercion policy for one source column.
type FieldRule struct {
	Column   string    `yaml:"column" validate:"notblank"`                                // Header text in the sheet (matched exactly)
	Type     FieldType `yaml:"type" validate:"required,oneof=string number date boolean"` // Target type
	Required bool      `yaml:"required"`                                                  // Empty or absent value is an error

	// AllowZero lifts the greater-than-zero check on number fields.
	AllowZero bool `yaml:"allowZero,omitempty" validate:"excluded_unless=Type number"`

	// AllowPreviousMonth accepts dates outside the current calendar month.
	AllowPreviousMonth bool `yaml:"allowPreviousMonth,omitempty" validate:"excluded_unless=Type date"`

	// ValidValues enumerates accepted boolean spellings. The first entry maps
	// to true, the second to false.
	ValidValues []string `yaml:"validValues,omitempty" validate:"required_if=Type boolean,excluded_unless=Type boolean,omitempty,len=2,unique,dive,notblank"`

	// OutputKey is the field name in the validated record.
	OutputKey string `yaml:"outputKey" validate:"notblank"`
}

// TrueValue returns the enumerated spelling that maps to true.
func (r FieldRule) TrueValue() string {
	if len(r.ValidValues) == 0 {
		return ""
	}
	return r.ValidValues[0]
}

// FalseValue returns the enumerated spelling that maps to false.
func (r FieldRule) FalseValue() string {
	if len(r.ValidValues) < 2 {
		return ""
	}
	return r.ValidValues[1]
}

// AcceptsValue reports whether v is one of the rule's enumerated values.
// Matching is exact, including case.
func (r FieldRule) AcceptsValue(v string) bool {
	for _, vv := range r.ValidValues {
		if vv == v {
			return true
		}
	}
	return false
}

// SheetSchema is the ordered rule set for one sheet name.
// Field order determines the order of error messages for a row.
// A SheetSchema obtained from a Registry must not be modified.
type SheetSchema struct {
	Name   string      `yaml:"name" validate:"notblank"`
	Fields []FieldRule `yaml:"fields" validate:"min=1,unique=Column,unique=OutputKey,dive"`
}

// Columns returns the source column names in declaration order.
func (s *SheetSchema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Field returns the rule for a column, matched exactly.
func (s *SheetSchema) Field(column string) (FieldRule, bool) {
	for _, f := range s.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return FieldRule{}, false
}
