package csvimport

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSpreadsheet reads the first sheet of an xlsx workbook. The first
// non-empty row is the header.
func ReadSpreadsheet(content []byte) (*Table, error) {
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrMalformed, sheets[0], err)
	}

	headerIdx := -1
	for i, r := range rows {
		if !blankRecord(r) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrMissingHeader
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers}
	for i := headerIdx + 1; i < len(rows); i++ {
		record := rows[i]
		row := &Row{
			LineNumber: i + 1,
			Data:       make(map[string]string, len(headers)),
			RawFields:  record,
		}
		for col, header := range headers {
			if _, seen := row.Data[header]; seen {
				continue
			}
			value := ""
			if col < len(record) {
				value = strings.TrimSpace(record[col])
			}
			row.Data[header] = value
		}
		if row.IsEmpty() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
