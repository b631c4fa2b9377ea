package core

// coerce.go converts untyped cell values into typed field values.
//
// Coercion is pure: the result depends only on the cell, the field rule and
// the reference time used for the current-month check. It handles the messy
// parts of spreadsheet input:
//   - Thousands separators in numbers ("1,200")
//   - Dates either stored as real dates or typed as DD-MM-YYYY text
//   - Yes/No style booleans restricted to the rule's enumeration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/SheetUpload/internal/schema"
)

// numericRegex validates that a string is a plain decimal after separators
// are removed. Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateTextRegex is the only accepted textual date shape: day-month-year.
var dateTextRegex = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

// Coerced is the outcome of coercing one cell.
//
// Set means Value must be written under the rule's output key. Err holds a
// field error message. Neither set means the optional field was empty and
// is skipped. Both set happens for dates outside the current month: the
// date is still written alongside the error.
type Coerced struct {
	Value Value
	Set   bool
	Err   string
}

func accept(v Value) Coerced { return Coerced{Value: v, Set: true} }
func reject(format string, args ...any) Coerced {
	return Coerced{Err: fmt.Sprintf(format, args...)}
}

// Coerce applies rule to raw. now is the reference for the current-month
// check on date fields.
func Coerce(raw any, rule schema.FieldRule, now time.Time) Coerced {
	if IsEmptyCell(raw) {
		if rule.Required {
			return reject("%s is required", rule.Column)
		}
		return Coerced{}
	}

	switch rule.Type {
	case schema.TypeNumber:
		return coerceNumber(raw, rule)
	case schema.TypeDate:
		return coerceDate(raw, rule, now)
	case schema.TypeBoolean:
		return coerceBool(raw, rule)
	default:
		return accept(StringValue(CellText(raw)))
	}
}

func coerceNumber(raw any, rule schema.FieldRule) Coerced {
	n, valid := ParseNumber(raw)
	if !valid || (!rule.AllowZero && n <= 0) {
		if rule.AllowZero {
			return reject("%s must be a valid number", rule.Column)
		}
		return reject("%s must be a valid number greater than 0", rule.Column)
	}
	return accept(NumberValue(n))
}

func coerceDate(raw any, rule schema.FieldRule, now time.Time) Coerced {
	t, valid := ParseDate(raw)
	if !valid {
		return reject("%s is invalid", rule.Column)
	}

	c := accept(DateValue(t))
	if !rule.AllowPreviousMonth && !SameMonth(t, now) {
		c.Err = fmt.Sprintf("%s must be within the current month", rule.Column)
	}
	return c
}

// coerceBool matches the cell text exactly, without trimming or case folding.
func coerceBool(raw any, rule schema.FieldRule) Coerced {
	s := CellText(raw)
	if !rule.AcceptsValue(s) {
		return reject("%s must be one of: %s", rule.Column, strings.Join(rule.ValidValues, ", "))
	}
	return accept(BoolValue(s == rule.TrueValue()))
}

// ParseNumber converts a cell to a float64. Commas are treated as thousands
// separators and removed. NaN and infinities are rejected.
func ParseNumber(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		s := strings.ReplaceAll(strings.TrimSpace(CellText(raw)), ",", "")
		if !numericRegex.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ParseDate converts a cell to a date. Structured dates are used as-is.
// Text must be day-month-year separated by dashes (DD-MM-YYYY, leading
// zeros optional) and name a real calendar day; any other shape is
// rejected rather than guessed at.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		m := dateTextRegex.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (31-02 becomes 03-03); reject it.
		if t.Day() != day || int(t.Month()) != month || t.Year() != year {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// SameMonth reports whether t falls in the calendar month of ref.
func SameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

// FormatDateText renders t in the accepted textual date shape.
func FormatDateText(t time.Time) string {
	return t.Format("02-01-2006")
}

// IsEmptyCell reports whether a cell holds no value.
// Whitespace-only text counts as empty.
func IsEmptyCell(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case time.Time:
		return v.IsZero()
	default:
		return false
	}
}

// CellText returns the text form of a cell. Strings are returned as entered.
func CellText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return FormatDateText(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
