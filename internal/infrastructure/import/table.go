package csvimport

// Row represents a parsed row with its data and line number
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is a header row plus data rows, whatever the source format
type Table struct {
	Headers []string
	Rows    []*Row
}

// HasHeader checks if a header exists
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// MissingHeaders returns the required headers that are absent
func (t *Table) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if !t.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}
