// Package workbook reads uploaded .xlsx files into sheets of raw rows.
//
// The first non-blank row of every sheet is its header; each following row
// becomes a core.RawRow keyed by header text. Cells formatted as dates are returned as
// time.Time, everything else as the cell's raw text, so the date-versus-text
// distinction survives into validation.
package workbook

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

// ContentType is the MIME type of an .xlsx upload.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Default unzip limits for an uploaded workbook.
const (
	DefaultUnzipSizeLimit    = 64 << 20
	DefaultUnzipXMLSizeLimit = 16 << 20
)

// Options bounds the resources spent opening a workbook.
type Options struct {
	UnzipSizeLimit    int64 // Total decompressed size
	UnzipXMLSizeLimit int64 // Decompressed size of a single worksheet held in memory
}

// Read parses the workbook in r and returns its sheets in workbook order.
//
// A stream that is not a readable workbook yields an error wrapping
// core.ErrInvalidWorkbook; a workbook without sheets yields
// core.ErrEmptyWorkbook.
func Read(r io.Reader, opts Options) ([]core.Sheet, error) {
	if opts.UnzipSizeLimit <= 0 {
		opts.UnzipSizeLimit = DefaultUnzipSizeLimit
	}
	if opts.UnzipXMLSizeLimit <= 0 {
		opts.UnzipXMLSizeLimit = DefaultUnzipXMLSizeLimit
	}
	if opts.UnzipXMLSizeLimit > opts.UnzipSizeLimit {
		opts.UnzipXMLSizeLimit = opts.UnzipSizeLimit
	}

	f, err := excelize.OpenReader(r, excelize.Options{
		UnzipSizeLimit:    opts.UnzipSizeLimit,
		UnzipXMLSizeLimit: opts.UnzipXMLSizeLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidWorkbook, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, core.ErrEmptyWorkbook
	}

	rd := &reader{
		f:          f,
		date1904:   uses1904(f),
		dateStyles: make(map[int]bool),
	}

	sheets := make([]core.Sheet, 0, len(names))
	for _, name := range names {
		rows, err := rd.sheet(name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", core.ErrInvalidWorkbook, name, err)
		}
		sheets = append(sheets, core.Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

type reader struct {
	f          *excelize.File
	date1904   bool
	dateStyles map[int]bool // style ID -> formats as date
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

// sheet returns the data rows of one sheet. The header is the first row
// holding any text, so leading blank rows above a table are skipped. Blank
// rows between data rows are kept as empty rows so positions match the
// sheet.
func (rd *reader) sheet(name string) ([]core.RawRow, error) {
	grid, err := rd.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	h := headerIndex(grid)
	if h < 0 {
		return nil, nil
	}

	header := make([]string, len(grid[h]))
	seen := make(map[string]bool, len(grid[h]))
	for i, text := range grid[h] {
		text = strings.TrimSpace(text)
		// First occurrence of a duplicated header wins.
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		header[i] = text
	}

	data := grid[h+1:]
	rows := make([]core.RawRow, 0, len(data))
	for i, cells := range data {
		// grid is indexed from sheet row 1.
		sheetRow := h + i + 2
		row := make(core.RawRow, len(header))
		for c, text := range cells {
			if c >= len(header) || header[c] == "" || text == "" {
				continue
			}
			row[header[c]] = rd.cell(name, c+1, sheetRow, text)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// headerIndex returns the index of the first row with a non-blank cell,
// or -1 when the sheet has none.
func headerIndex(grid [][]string) int {
	for i, cells := range grid {
		for _, text := range cells {
			if strings.TrimSpace(text) != "" {
				return i
			}
		}
	}
	return -1
}

// cell converts the raw text of one cell. Date-formatted numeric cells
// become time.Time; text cells stay text whatever their format.
func (rd *reader) cell(sheet string, col, row int, text string) any {
	serial, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return text
	}
	if !rd.isNumberCell(sheet, ref) {
		return text
	}
	styleID, err := rd.f.GetCellStyle(sheet, ref)
	if err != nil || !rd.isDateStyle(styleID) {
		return text
	}

	t, err := excelize.ExcelDateToTime(serial, rd.date1904)
	if err != nil {
		return text
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isNumberCell reports whether the cell stores a number. Numeric cells
// usually carry no type attribute, which excelize reports as unset.
func (rd *reader) isNumberCell(sheet, ref string) bool {
	ct, err := rd.f.GetCellType(sheet, ref)
	if err != nil {
		return false
	}
	return ct == excelize.CellTypeNumber || ct == excelize.CellTypeUnset
}

func (rd *reader) isDateStyle(id int) bool {
	if v, ok := rd.dateStyles[id]; ok {
		return v
	}
	v := false
	if style, err := rd.f.GetStyle(id); err == nil && style != nil {
		v = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	rd.dateStyles[id] = v
	return v
}

// stripLiterals removes quoted text, escaped characters and bracketed
// sections (colors, locales, elapsed time) from a number format code.
var stripLiterals = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)

// isDateNumFmt reports whether a number format renders a calendar date.
func isDateNumFmt(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		code := strings.ToLower(stripLiterals.ReplaceAllString(*custom, ""))
		return strings.ContainsAny(code, "dy")
	}
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		// Locale-specific built-in date formats.
		return true
	}
	return false
}
