package collect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetCollector extracts non-empty cell text from workbooks, one Line
// per cell, sorted row-major within each worksheet.
type SpreadsheetCollector struct {
	BaseCollector
}

// NewSpreadsheet returns a SpreadsheetCollector accepting xls, xlsx, xlsb,
// and ods extensions.
func NewSpreadsheet() *SpreadsheetCollector {
	return &SpreadsheetCollector{BaseCollector{Extensions: []string{"xls", "xlsx", "xlsb", "ods"}}}
}

// Name returns "sheet".
func (c *SpreadsheetCollector) Name() string { return "sheet" }

// Collect iterates worksheets in workbook order; within each it visits
// non-empty cells row-major (ascending row, then ascending column) and
// emits one Line per kept cell, with Position "sheet(row,col)" using
// 0-based row/column indices. Only string, numeric, and date/time cells
// are kept; booleans, formulas, errors, and other cell kinds are dropped,
// matching calamine's DataType match in the original collector.
func (c *SpreadsheetCollector) Collect(path string) ([]Line, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	var lines []Line

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q in %s: %w", sheet, path, err)
		}

		for rowIdx, row := range rows {
			for colIdx, cell := range row {
				text := strings.TrimSpace(cell)
				if text == "" {
					continue
				}

				cellRef, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return nil, fmt.Errorf("resolve cell (%d,%d) in %q of %s: %w", rowIdx, colIdx, sheet, path, err)
				}

				cellType, err := f.GetCellType(sheet, cellRef)
				if err != nil {
					return nil, fmt.Errorf("read cell type %s in %q of %s: %w", cellRef, sheet, path, err)
				}

				if !keepCellType(cellType) {
					continue
				}

				pos := sheet + "(" + strconv.Itoa(rowIdx) + "," + strconv.Itoa(colIdx) + ")"
				lines = append(lines, Line{Position: pos, Line: text})
			}
		}
	}

	return lines, nil
}

// keepCellType reports whether a cell's data type survives collection:
// shared/inline strings, numbers, dates, and cells with no type tag
// (CellTypeUnset). Booleans, formulas, errors, and every other type are
// dropped.
func keepCellType(t excelize.CellType) bool {
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		return true
	default:
		return false
	}
}
