package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/types"
)

const (
	spreadsheetLevelHeader  = "Level"
	spreadsheetLabelHeader  = "Label"
	spreadsheetDefaultSheet = "Sheet1"
	spreadsheetLevelColumn  = "A"
	spreadsheetLabelColumn  = "B"
	spreadsheetHeaderCell   = "A1"
	spreadsheetHeaderEnd    = "B1"
	spreadsheetLevelWidth   = 10
	spreadsheetLabelWidth   = 30
	spreadsheetFirstDataRow = 2

	errorSpreadsheetCellFormat = "locating spreadsheet row %d: %w"
)

// SpreadsheetSheetName is the name of the only sheet in a spreadsheet export.
const SpreadsheetSheetName = types.DocumentTitle

// SpreadsheetRow is one data row of a spreadsheet export.
type SpreadsheetRow struct {
	Level int
	Label string
}

// SpreadsheetHeader returns the header row of a spreadsheet export.
func SpreadsheetHeader() []string {
	return []string{spreadsheetLevelHeader, spreadsheetLabelHeader}
}

// SpreadsheetRows flattens nodes in pre-order into Level/Label rows.
func SpreadsheetRows(nodes []*sitetree.TreeNode) []SpreadsheetRow {
	rows := make([]SpreadsheetRow, 0, sitetree.CountNodes(nodes))
	_ = sitetree.Traverse(nodes, sitetree.Visitor{Enter: func(node *sitetree.TreeNode, depth int) error {
		rows = append(rows, SpreadsheetRow{Level: depth, Label: node.Label})
		return nil
	}})
	return rows
}

// SpreadsheetSerializer writes SpreadsheetRows into a single-sheet XLSX workbook.
type SpreadsheetSerializer struct{}

// Serialize implements Serializer.
func (SpreadsheetSerializer) Serialize(nodes []*sitetree.TreeNode, writer io.Writer) (err error) {
	workbook := excelize.NewFile()
	defer func() {
		if closeError := workbook.Close(); closeError != nil && err == nil {
			err = closeError
		}
	}()

	if err := workbook.SetSheetName(spreadsheetDefaultSheet, SpreadsheetSheetName); err != nil {
		return err
	}
	if err := workbook.SetColWidth(SpreadsheetSheetName, spreadsheetLevelColumn, spreadsheetLevelColumn, spreadsheetLevelWidth); err != nil {
		return err
	}
	if err := workbook.SetColWidth(SpreadsheetSheetName, spreadsheetLabelColumn, spreadsheetLabelColumn, spreadsheetLabelWidth); err != nil {
		return err
	}

	header := SpreadsheetHeader()
	if err := workbook.SetSheetRow(SpreadsheetSheetName, spreadsheetHeaderCell, &[]interface{}{header[0], header[1]}); err != nil {
		return err
	}
	headerStyle, styleError := workbook.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if styleError != nil {
		return styleError
	}
	if err := workbook.SetCellStyle(SpreadsheetSheetName, spreadsheetHeaderCell, spreadsheetHeaderEnd, headerStyle); err != nil {
		return err
	}

	for rowIndex, row := range SpreadsheetRows(nodes) {
		rowNumber := spreadsheetFirstDataRow + rowIndex
		cellName, cellError := excelize.CoordinatesToCellName(1, rowNumber)
		if cellError != nil {
			return fmt.Errorf(errorSpreadsheetCellFormat, rowNumber, cellError)
		}
		if err := workbook.SetSheetRow(SpreadsheetSheetName, cellName, &[]interface{}{row.Level, row.Label}); err != nil {
			return err
		}
	}

	_, err = workbook.WriteTo(writer)
	return err
}
