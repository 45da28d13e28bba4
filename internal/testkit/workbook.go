// Package testkit builds synthetic supplement workbooks for tests, so the
// loader and service tests never depend on the real data file.
package testkit

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Default sheet names, matching the supplement workbook.
const (
	PrimarySheet = "S4B limma results"
	ValuesSheet  = "S4A values"
)

// Sheet is one worksheet: its name and the literal cell grid, row by row.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook writes an xlsx file containing the given sheets, in order,
// at path.
func WriteWorkbook(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}
		for i, row := range sheet.Rows {
			cell := fmt.Sprintf("A%d", i+1)
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				return fmt.Errorf("failed to write row %d of %q: %w", i, sheet.Name, err)
			}
		}
	}

	// Drop the implicit default sheet so lookups only see what was asked for.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	return f.SaveAs(path)
}

// DefaultPrimarySheet is the standard four-gene limma fixture: two title
// rows, then the header at index 2.
func DefaultPrimarySheet() Sheet {
	return Sheet{
		Name: PrimarySheet,
		Rows: [][]interface{}{
			{"Supplementary Table 4B"},
			{},
			{"EntrezGeneSymbol", "logFC", "adj.P.Val"},
			{"GENE1", 1.5, 0.01},
			{"GENE2", -2.0, 0.001},
			{"GENE3", 0.2, 0.2},
			{"GENE4", -0.3, 0.5},
		},
	}
}

// DefaultValuesSheet is the matching values fixture. GENE1 has two Young
// measurements, GENE2 all four, GENE3 none (empty donor cells), and GENE4
// is absent entirely.
func DefaultValuesSheet() Sheet {
	return Sheet{
		Name: ValuesSheet,
		Rows: [][]interface{}{
			{"Supplementary Table 4A"},
			{},
			{"EntrezGeneSymbol", "Set002.H4.YD12", "Set002.H4.YD13", "Set002.H4.OD12", "Set002.H4.OD13", "Other.Column"},
			{"GENE1", 1.5, 1.7, nil, nil, 0.9},
			{"GENE2", 0.8, 1.2, 1.8, 2.2, 0.5},
			{"GENE3", nil, nil, nil, nil, nil},
		},
	}
}

// WriteDefaultWorkbook writes the standard two-sheet fixture at path.
func WriteDefaultWorkbook(path string) error {
	return WriteWorkbook(path, DefaultPrimarySheet(), DefaultValuesSheet())
}
