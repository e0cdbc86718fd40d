package repository

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetFormat is the on-disk encoding of a tabular file
type SheetFormat string

const (
	SheetFormatXLSX SheetFormat = "xlsx"
	SheetFormatCSV  SheetFormat = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported tabular file format")

const (
	defaultSheetName = "Sheet1"
	utf8BOM          = "\ufeff"
)

// Ext returns the file extension including the dot
func (f SheetFormat) Ext() string {
	return "." + string(f)
}

func (f SheetFormat) Valid() bool {
	return f == SheetFormatXLSX || f == SheetFormatCSV
}

// FormatOf infers the format from a file name
func FormatOf(name string) (SheetFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return SheetFormatXLSX, nil
	case ".csv":
		return SheetFormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Sheet is a header row plus data rows. Rows may be shorter than the header; missing cells are empty.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Index maps each header name to its column position
func (s *Sheet) Index() map[string]int {
	idx := make(map[string]int, len(s.Header))
	for i, h := range s.Header {
		name := strings.TrimSpace(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// Cell returns the value at row, col or "" when the row is short
func (s *Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ReadSheet loads a tabular file, choosing the decoder by extension
func ReadSheet(path string) (*Sheet, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := DecodeSheet(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return sheet, nil
}

// DecodeSheet parses tabular content from r
func DecodeSheet(r io.Reader, format SheetFormat) (*Sheet, error) {
	switch format {
	case SheetFormatXLSX:
		return decodeXLSX(r)
	case SheetFormatCSV:
		return decodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Sheet{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return sheetFromRecords(rows), nil
}

func decodeCSV(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return sheetFromRecords(records), nil
}

func sheetFromRecords(records [][]string) *Sheet {
	if len(records) == 0 {
		return &Sheet{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	var rows [][]string
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return &Sheet{Header: header, Rows: rows}
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteSheet replaces path with the encoded sheet. The content is written to a
// temporary sibling first and renamed into place so readers never see a torn file.
func WriteSheet(path string, sheet *Sheet) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := EncodeSheet(sheet, format)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// EncodeSheet renders the sheet in the given format
func EncodeSheet(sheet *Sheet, format SheetFormat) ([]byte, error) {
	switch format {
	case SheetFormatXLSX:
		return encodeXLSX(sheet)
	case SheetFormatCSV:
		return encodeCSV(sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func encodeXLSX(sheet *Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(defaultSheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range sheet.Rows {
		values := make([]any, len(sheet.Header))
		for j := range values {
			if v := sheet.Cell(row, j); v != "" {
				values[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(defaultSheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCSV(sheet *Sheet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sheet.Header); err != nil {
		return nil, err
	}
	for _, row := range sheet.Rows {
		record := make([]string, len(sheet.Header))
		for j := range record {
			record[j] = sheet.Cell(row, j)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
