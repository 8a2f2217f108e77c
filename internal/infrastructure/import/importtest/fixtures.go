// Package importtest builds upload fixtures that look like marketplace and
// carrier exports.
package importtest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Spreadsheet builds an xlsx workbook with headers in the first row
func Spreadsheet(headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]string{headers}, rows...)
	for r, record := range all {
		for c, value := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShiftJIS converts UTF-8 text to Shift-JIS
func ShiftJIS(text string) ([]byte, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode shift-jis: %w", err)
	}
	return out, nil
}
