package core

import "errors"

// Upload rejections. These fail the request before any validation runs.
var (
	ErrNoFile          = errors.New("no file provided")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidWorkbook = errors.New("invalid workbook")
	ErrEmptyWorkbook   = errors.New("empty workbook")
)

// IsRejection reports whether err is an upload rejection, as opposed to a
// failure while processing an accepted upload.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidWorkbook) ||
		errors.Is(err, ErrEmptyWorkbook)
}
