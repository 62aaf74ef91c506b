package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/sitetree"
)

const (
	tableHeaderKind = "Kind"
	tableRowsFormat = "(%d rows)\n"
)

// WriteTable prints one row per node with its depth, kind and label,
// mirroring the rows of the spreadsheet export.
func WriteTable(writer io.Writer, nodes []*sitetree.TreeNode) {
	header := export.SpreadsheetHeader()
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(writer)
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.AppendHeader(table.Row{header[0], tableHeaderKind, header[1]})

	rowCount := 0
	_ = sitetree.Traverse(nodes, sitetree.Visitor{Enter: func(node *sitetree.TreeNode, depth int) error {
		tableWriter.AppendRow(table.Row{depth, string(node.Kind), node.Label})
		rowCount++
		return nil
	}})
	tableWriter.Render()
	_, _ = fmt.Fprintf(writer, tableRowsFormat, rowCount)
}
