package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVParser reads delimited text exports (comma or tab) into rows keyed by
// header. Quoting is lenient and every header and value is trimmed.
type CSVParser struct {
	delimiter  rune
	encoding   Encoding
	headers    []string
	currentRow int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithEncoding sets the source encoding (default EncodingAuto)
func WithEncoding(enc Encoding) ParserOption {
	return func(p *CSVParser) {
		p.encoding = enc
	}
}

// NewCSVParser decodes data and prepares a reader over it
func NewCSVParser(data []byte, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter: ',',
		encoding:  EncodingAuto,
	}
	for _, opt := range opts {
		opt(parser)
	}

	text, err := Decode(data, parser.encoding)
	if err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(bytes.NewReader(text))
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = true
	parser.reader.TrimLeadingSpace = parser.delimiter != '\t'
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = strings.TrimSpace(h)
	}
	if len(p.headers) == 0 || (len(p.headers) == 1 && p.headers[0] == "") {
		return ErrMissingHeader
	}

	p.currentRow = 1
	return nil
}

// ReadRow reads the next row. Structural errors wrap ErrMalformed.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, p.currentRow, err)
	}

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}
	for i, header := range p.headers {
		if _, seen := row.Data[header]; seen {
			continue
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row.Data[header] = value
	}
	return row, nil
}

// ReadAllRows reads all remaining rows, skipping empty ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadTable parses the header and every row
func (p *CSVParser) ReadTable() (*Table, error) {
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, err
	}
	return &Table{Headers: p.headers, Rows: rows}, nil
}
