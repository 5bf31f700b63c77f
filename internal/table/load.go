package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are not .csv, .xls or .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedFile reports whether a filename has a spreadsheet extension the
// loaders understand.
func SupportedFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	return false
}

// Load reads a spreadsheet, choosing the reader by file extension.
func Load(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r)
	case ".xls", ".xlsx":
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("Load: %q: %w", filename, ErrUnsupportedFormat)
	}
}

// ReadCSV parses a CSV document whose first record is the header.
// Ragged records are allowed.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: parse records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ReadCSV: no columns to parse from file")
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	return New(header, records[1:]), nil
}

// ReadXLSX parses the first sheet of an Excel workbook. Raw cell values are
// used so that dates arrive as Excel serial numbers instead of locale text.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ReadXLSX: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ReadXLSX: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("ReadXLSX: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ReadXLSX: sheet %q is empty", sheets[0])
	}

	return New(rows[0], rows[1:]), nil
}
