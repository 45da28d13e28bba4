package excel

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"geneexplorer/domain/expression"
	"geneexplorer/internal"
	"geneexplorer/internal/errors"
)

// Canonical column labels the rest of the application relies on.
const (
	GeneSymbolColumn = "EntrezGeneSymbol"
	LogFCColumn      = "logFC"
	AdjPValColumn    = "adj.P.Val"
)

const (
	// headerScanLimit caps how many leading rows are inspected for the
	// gene-symbol label before falling back to the fixed offset.
	headerScanLimit = 10

	// fallbackHeaderIndex matches the supplement workbook's layout, where
	// two title rows precede the column labels.
	fallbackHeaderIndex = 2
)

// WorkbookReader parses sheets of the supplement workbook into tabular form.
type WorkbookReader struct {
	path string
	log  *internal.Logger
}

// NewWorkbookReader creates a reader for the workbook at path.
func NewWorkbookReader(path string) *WorkbookReader {
	return &WorkbookReader{
		path: path,
		log:  internal.DefaultLogger.Named("WorkbookReader"),
	}
}

// Path returns the workbook location the reader was built with.
func (r *WorkbookReader) Path() string {
	return r.path
}

// ReadExpressionSheet parses a differential-expression sheet: on top of
// ReadSheet, the logFC and adj.P.Val columns are guaranteed to exist under
// their canonical names or the read fails with a schema error listing what
// was actually found.
func (r *WorkbookReader) ReadExpressionSheet(sheetName string) (*SheetTable, error) {
	table, err := r.ReadSheet(sheetName)
	if err != nil {
		return nil, err
	}
	if err := normalizeColumns(table); err != nil {
		return nil, err
	}
	return table, nil
}

// ReadSheet parses the named sheet into a SheetTable. The header row is
// located by scanning the first rows for the EntrezGeneSymbol label, with a
// fixed fallback offset when the label is absent.
func (r *WorkbookReader) ReadSheet(sheetName string) (*SheetTable, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, errors.FileNotFound(r.path)
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", r.path)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up sheet %q", sheetName)
	}
	if idx < 0 {
		return nil, errors.SheetNotFound(sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheetName)
	}

	headerIdx, found := detectHeaderRow(rows)
	if !found {
		r.log.Warn("no %q label in first %d rows of sheet %q, falling back to header index %d",
			GeneSymbolColumn, headerScanLimit, sheetName, fallbackHeaderIndex)
		headerIdx = fallbackHeaderIndex
	}
	if headerIdx >= len(rows) {
		return nil, errors.New(errors.CodeSchemaError,
			fmt.Sprintf("header row %d is out of range: sheet %q has only %d rows",
				headerIdx, sheetName, len(rows)))
	}

	table := buildTable(rows, headerIdx)
	r.log.Info("sheet %q parsed (header row %d, %d columns, %d rows)",
		sheetName, headerIdx, len(table.Headers), len(table.Rows))
	return table, nil
}

// detectHeaderRow scans the first headerScanLimit rows for a cell holding
// the literal gene-symbol label (case-sensitive) and returns its row index.
func detectHeaderRow(rows [][]string) (int, bool) {
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if strings.TrimSpace(cell) == GeneSymbolColumn {
				return i, true
			}
		}
	}
	return 0, false
}

// buildTable turns raw rows into a SheetTable using headerIdx as the label
// row; everything below it is data.
func buildTable(rows [][]string, headerIdx int) *SheetTable {
	headerRow := rows[headerIdx]
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = strings.TrimSpace(h)
	}

	var dataRows []RawRowData
	for i := headerIdx + 1; i < len(rows); i++ {
		rowData := make(RawRowData)
		for j, cell := range rows[i] {
			if j < len(headers) && headers[j] != "" {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetTable{Headers: headers, Rows: dataRows}
}

// normalizeColumns renames fold-change-like and p-value-like columns to
// their canonical labels when the literal ones are absent. A table with no
// fold-change candidate at all is a schema error.
func normalizeColumns(t *SheetTable) error {
	if !t.HasColumn(LogFCColumn) {
		if !renameFirstMatch(t, LogFCColumn, "fc", "fold") {
			return errors.SchemaError("fold-change", t.Headers)
		}
	}
	if !t.HasColumn(AdjPValColumn) {
		if !renameFirstMatch(t, AdjPValColumn, "p.val", "p-val", "pvalue", "p value") {
			return errors.SchemaError("p-value", t.Headers)
		}
	}
	return nil
}

// renameFirstMatch renames the first column whose label contains one of the
// given substrings (case-insensitive) to canonical, rewriting row keys too.
func renameFirstMatch(t *SheetTable, canonical string, substrings ...string) bool {
	for i, header := range t.Headers {
		lower := strings.ToLower(header)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				t.Headers[i] = canonical
				for _, row := range t.Rows {
					if v, ok := row[header]; ok {
						delete(row, header)
						row[canonical] = v
					}
				}
				return true
			}
		}
	}
	return false
}

// PrimaryRows extracts the cleaned differential-expression rows from a
// parsed primary sheet: gene symbol present, both numeric columns coercible
// and the adjusted p-value inside [0, 1]. Everything else is dropped.
func PrimaryRows(t *SheetTable) []expression.RawRow {
	rows := make([]expression.RawRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		symbol := row[GeneSymbolColumn]
		if symbol == "" {
			continue
		}
		logFC, ok := parseCell(row[LogFCColumn])
		if !ok {
			continue
		}
		pValue, ok := parseCell(row[AdjPValColumn])
		if !ok || pValue < 0 || pValue > 1 {
			continue
		}
		rows = append(rows, expression.RawRow{
			GeneSymbol:     symbol,
			LogFoldChange:  logFC,
			AdjustedPValue: pValue,
		})
	}
	return rows
}

// MeasurementsFor extracts one measurement per donor column for the given
// gene from a parsed values sheet. Columns are visited in sheet order; the
// first row matching the symbol supplies every value. Non-donor columns and
// non-numeric cells are skipped.
func MeasurementsFor(t *SheetTable, geneSymbol string) []expression.SampleMeasurement {
	var geneRow RawRowData
	for _, row := range t.Rows {
		if row[GeneSymbolColumn] == geneSymbol {
			geneRow = row
			break
		}
	}
	if geneRow == nil {
		return nil
	}

	var measurements []expression.SampleMeasurement
	for _, header := range t.Headers {
		if header == GeneSymbolColumn {
			continue
		}
		ageGroup, ok := expression.AgeGroupForSample(header)
		if !ok {
			continue
		}
		value, ok := parseCell(geneRow[header])
		if !ok {
			continue
		}
		measurements = append(measurements, expression.SampleMeasurement{
			GeneSymbol: geneSymbol,
			SampleID:   header,
			AgeGroup:   ageGroup,
			Value:      value,
		})
	}
	return measurements
}

// parseCell coerces a cell to a finite float64.
func parseCell(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
