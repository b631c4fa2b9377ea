package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "no file",
			err:         ErrNoFile,
			wantCode:    "FILE004",
			wantMessage: "No file uploaded!",
		},
		{
			name:        "wrong content type",
			err:         fmt.Errorf("%w: text/csv", ErrUnsupportedType),
			wantCode:    "FILE003",
			wantMessage: "Only .xlsx files are allowed!",
		},
		{
			name:        "empty workbook",
			err:         ErrEmptyWorkbook,
			wantCode:    "FILE005",
			wantMessage: "Excel file is empty",
		},
		{
			name:        "body limit",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the upload size limit",
		},
		{
			name:        "workbook parse failure",
			err:         fmt.Errorf("%w: zip: not a valid zip file", ErrInvalidWorkbook),
			wantCode:    "FILE002",
			wantMessage: "File could not be read as a workbook",
		},
		{
			name:        "persist failure wins over connection pattern",
			err:         &PersistError{Sheet: "Default", Err: errors.New("dial tcp: connection refused")},
			wantCode:    "DB008",
			wantMessage: "Error processing file",
		},
		{
			name:        "persist failure wins over duplicate key",
			err:         &PersistError{Sheet: "Invoices", Err: errors.New("ERROR: duplicate key value violates unique constraint")},
			wantCode:    "DB008",
			wantMessage: "Error processing file",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "busy",
			err:         ErrTooManyUploads,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "case insensitive",
			err:         errors.New("RATE LIMIT EXCEEDED"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error falls back",
			err:         errors.New("something odd"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNoFile)
	if !strings.Contains(got, "(Code: FILE004)") || !strings.HasPrefix(got, "No file uploaded!") {
		t.Errorf("FormatUserError = %q", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrEmptyWorkbook) {
		t.Error("ErrEmptyWorkbook should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unknown errors should not be user facing")
	}
}

func TestIsRejection(t *testing.T) {
	for _, err := range []error{ErrNoFile, ErrUnsupportedType, ErrFileTooLarge, ErrInvalidWorkbook, ErrEmptyWorkbook} {
		if !IsRejection(fmt.Errorf("wrapped: %w", err)) {
			t.Errorf("IsRejection(%v) = false", err)
		}
	}
	if IsRejection(&PersistError{Sheet: "s", Err: errors.New("x")}) {
		t.Error("persist errors are not rejections")
	}
}
