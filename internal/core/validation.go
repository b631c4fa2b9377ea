package core

// validation.go provides row-level validation of sheet data.
//
// Every configured field is checked, in schema order, so a rejected row
// reports all of its problems at once instead of the first one only. This
// lets a client re-present just the failing rows for correction.

import (
	"time"

	"github.com/JonMunkholm/SheetUpload/internal/schema"
)

// RowValidator validates rows against one sheet schema.
type RowValidator struct {
	schema *schema.SheetSchema
	now    time.Time
}

// NewRowValidator creates a validator for s. now is the reference time for
// current-month date checks and is fixed for the validator's lifetime.
func NewRowValidator(s *schema.SheetSchema, now time.Time) *RowValidator {
	return &RowValidator{schema: s, now: now}
}

// ValidateRow coerces every configured field of row.
// It returns the accumulated record and the field error messages; the row
// is valid only when no messages are returned. Columns not in the schema
// are ignored.
func (v *RowValidator) ValidateRow(row RawRow) (*Record, []string) {
	rec := NewRecord(len(v.schema.Fields))
	var errs []string

	for _, rule := range v.schema.Fields {
		c := Coerce(row[rule.Column], rule, v.now)
		if c.Set {
			rec.Set(rule.OutputKey, c.Value)
		}
		if c.Err != "" {
			errs = append(errs, c.Err)
		}
	}

	return rec, errs
}

// IsBlankRow reports whether no cell of row holds a value.
func IsBlankRow(row RawRow) bool {
	for _, v := range row {
		if !IsEmptyCell(v) {
			return false
		}
	}
	return true
}
