// Package core provides the validation and import logic for spreadsheet uploads.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"
)

// RawRow is one data row of a sheet keyed by header text. Values are
// untyped: nil or absent, string, a Go number, or time.Time for cells the
// workbook stored as dates.
type RawRow map[string]any

// Sheet is one named tab of a workbook with its data rows in sheet order.
// Blank rows are kept so row numbers match their position in the sheet.
type Sheet struct {
	Name string
	Rows []RawRow
}

// RowError lists the field errors of one rejected row.
type RowError struct {
	Row    int      `json:"row"`    // 1-based position among data rows
	Errors []string `json:"errors"` // One message per failing field, in schema order
}

// SheetResult is the validation outcome of one sheet.
// Every non-blank row lands in exactly one of Records or RowErrors.
type SheetResult struct {
	SheetName string
	Schema    string // Name of the schema that was applied
	Records   []*Record
	RowErrors []RowError
	Blank     int  // Fully blank rows that were skipped
	Empty     bool // Sheet had no data rows at all
	Message   string
}

// Rows returns the number of rows that were validated.
func (r *SheetResult) Rows() int {
	return len(r.Records) + len(r.RowErrors)
}

// PersistedRecord is a validated record after it was written by an Inserter.
type PersistedRecord struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batchId"`
	SheetName string    `json:"sheetName"`
	CreatedAt time.Time `json:"createdAt"`
	Data      *Record   `json:"data"`
}

// Inserter persists the validated records of one sheet as a single batch.
// Implementations must either store the whole batch or none of it.
type Inserter interface {
	InsertBatch(ctx context.Context, sheetName string, records []*Record) ([]PersistedRecord, error)
}

// UploadedSheet is the persisted part of the batch response for one sheet.
type UploadedSheet struct {
	SheetName     string            `json:"sheetName"`
	UploadedCount int               `json:"uploadedCount"`
	UploadedData  []PersistedRecord `json:"uploadedData"`
}

// SheetErrors is the rejected part of the batch response for one sheet.
type SheetErrors struct {
	SheetName    string     `json:"sheetName"`
	SkippedCount int        `json:"skippedCount"`
	Details      []RowError `json:"details"`
	Error        string     `json:"error,omitempty"` // Sheet-level condition, e.g. empty sheet
}

// BatchSuccess wraps the uploaded sheets.
type BatchSuccess struct {
	UploadedSheets []UploadedSheet `json:"uploadedSheets"`
}

// BatchResponse is the combined outcome of one workbook upload.
// It keeps what was imported apart from what was skipped and why.
type BatchResponse struct {
	Message string        `json:"message"`
	Success BatchSuccess  `json:"success"`
	Errors  []SheetErrors `json:"errors"`

	Sheets []SheetResult `json:"-"`
}

// Recorder receives engine measurements. Implemented by the metrics package.
type Recorder interface {
	ObserveSheet(schema string, result *SheetResult)
	ObservePersist(schema string, records int, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSheet(string, *SheetResult)                {}
func (nopRecorder) ObservePersist(string, int, time.Duration, error) {}
