package core

import (
	"time"

	"github.com/JonMunkholm/SheetUpload/internal/schema"
)

// Processor validates whole sheets against the schema registry.
// It holds no per-request state and is safe for concurrent use.
type Processor struct {
	registry *schema.Registry
	now      func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithClock sets the time source for current-month date checks.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor creates a sheet processor over registry.
func NewProcessor(registry *schema.Registry, opts ...ProcessorOption) *Processor {
	p := &Processor{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the schema registry the processor resolves against.
func (p *Processor) Registry() *schema.Registry {
	return p.registry
}

// Process validates rows of the named sheet in order.
//
// Row numbers are 1-based positions among all data rows. Fully blank rows
// are skipped without a record or an error but still occupy their position.
// A sheet with no rows is flagged Empty and yields nothing else.
func (p *Processor) Process(sheetName string, rows []RawRow) SheetResult {
	s := p.registry.Resolve(sheetName)
	result := SheetResult{
		SheetName: sheetName,
		Schema:    s.Name,
		Records:   []*Record{},
		RowErrors: []RowError{},
	}

	if len(rows) == 0 {
		result.Empty = true
		return result
	}

	v := NewRowValidator(s, p.now())

	for i, row := range rows {
		if IsBlankRow(row) {
			result.Blank++
			continue
		}

		rec, errs := v.ValidateRow(row)
		if len(errs) > 0 {
			result.RowErrors = append(result.RowErrors, RowError{Row: i + 1, Errors: errs})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result
}
