package repository

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		want        SheetFormat
		expectError bool
	}{
		{name: "xlsx", file: "leads_CAMP-001.xlsx", want: SheetFormatXLSX},
		{name: "upper case csv", file: "LEADS.CSV", want: SheetFormatCSV},
		{name: "legacy xls", file: "old.xls", expectError: true},
		{name: "no extension", file: "leads", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.file)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteReadSheet(t *testing.T) {
	sheet := &Sheet{
		Header: []string{"lead_id", "phone", "notes"},
		Rows: [][]string{
			{"L1", "0812345678", "call after 5pm, ask for \"Khun A\""},
			{"", "", ""},
			{"L2", "", ""},
			{"L3"},
		},
	}

	for _, format := range []SheetFormat{SheetFormatXLSX, SheetFormatCSV} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "table"+format.Ext())
			require.NoError(t, WriteSheet(path, sheet))

			got, err := ReadSheet(path)
			require.NoError(t, err)
			assert.Equal(t, sheet.Header, got.Header)
			require.Len(t, got.Rows, 3, "rows with only empty cells are dropped")
			assert.Equal(t, "0812345678", got.Cell(got.Rows[0], 1), "leading zero survives")
			assert.Equal(t, sheet.Rows[0][2], got.Cell(got.Rows[0], 2))
			assert.Equal(t, "L2", got.Cell(got.Rows[1], 0))
			assert.Equal(t, "", got.Cell(got.Rows[2], 2), "short row reads as empty")

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp file left behind")
		})
	}
}

func TestDecodeCSVWithBOM(t *testing.T) {
	data := []byte(utf8BOM + "lead_id, status \nL1,contacted\n,\nL2\n")

	sheet, err := DecodeSheet(bytes.NewReader(data), SheetFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"lead_id", "status"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	idx := sheet.Index()
	assert.Equal(t, "contacted", sheet.Cell(sheet.Rows[0], idx["status"]))
	assert.Equal(t, "", sheet.Cell(sheet.Rows[1], idx["status"]), "short row reads as empty")
}

func TestReadSheetCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := ReadSheet(path)
	assert.Error(t, err)
}

func TestReadSheetEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	sheet, err := ReadSheet(path)
	require.NoError(t, err)
	assert.Empty(t, sheet.Header)
	assert.Empty(t, sheet.Rows)
}
