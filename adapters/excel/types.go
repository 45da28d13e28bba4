package excel

// RawRowData represents one parsed worksheet row as header->cell pairs
type RawRowData map[string]string

// SheetTable is a parsed worksheet with its column order preserved.
// Headers hold the (possibly renamed) column labels in sheet order; Rows
// index cells by those labels.
type SheetTable struct {
	Headers []string
	Rows    []RawRowData
}

// HasColumn reports whether the table carries the given column label.
func (t *SheetTable) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
