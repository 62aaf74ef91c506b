package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/types"
)

const (
	documentIndentWidth    = 4
	documentOrientation    = "P"
	documentUnit           = "mm"
	documentPageSize       = "A4"
	documentFontFamily     = "Helvetica"
	documentTitleStyle     = "U"
	documentBodyStyle      = ""
	documentTitleFontSize  = 14
	documentBodyFontSize   = 12
	documentTitleHeight    = 8
	documentLineHeight     = 6
	documentBottomMargin   = 15
	documentCreator        = "sitemapper"
	documentCellAlignment  = "L"
	documentCellBorder     = ""
	documentCellNextLine   = 1
	documentTitleSpacingMm = 4

	documentEmbeddedFontFamily  = "SiteFont"
	errorReadDocumentFontFormat = "reading document font %s: %w"
	errorLoadDocumentFontFormat = "loading document font %s: %w"
)

// DocumentLines returns the text lines of a document export: the title line
// followed by one line per node in pre-order, indented by four spaces per level.
func DocumentLines(nodes []*sitetree.TreeNode) []string {
	lines := make([]string, 0, sitetree.CountNodes(nodes)+1)
	lines = append(lines, types.DocumentTitle)
	_ = sitetree.Traverse(nodes, sitetree.Visitor{Enter: func(node *sitetree.TreeNode, depth int) error {
		lines = append(lines, strings.Repeat(" ", documentIndentWidth*depth)+node.Label)
		return nil
	}})
	return lines
}

// DocumentSerializer writes DocumentLines into a paged PDF document.
//
// With FontPath empty the built-in Helvetica is used. It covers cp1252 only,
// so characters outside it, Cyrillic included, print as dots; the line count
// is unaffected. Set FontPath to a TrueType font to print any label as is.
type DocumentSerializer struct {
	FontPath string
}

// Serialize implements Serializer.
func (serializer DocumentSerializer) Serialize(nodes []*sitetree.TreeNode, writer io.Writer) error {
	lines := DocumentLines(nodes)

	document := fpdf.New(documentOrientation, documentUnit, documentPageSize, "")
	document.SetTitle(types.DocumentTitle, true)
	document.SetCreator(documentCreator, true)
	document.SetAutoPageBreak(true, documentBottomMargin)

	fontFamily := documentFontFamily
	translate := document.UnicodeTranslatorFromDescriptor("")
	if serializer.FontPath != "" {
		fontData, readError := os.ReadFile(serializer.FontPath)
		if readError != nil {
			return fmt.Errorf(errorReadDocumentFontFormat, serializer.FontPath, readError)
		}
		document.AddUTF8FontFromBytes(documentEmbeddedFontFamily, documentBodyStyle, fontData)
		if fontError := document.Error(); fontError != nil {
			return fmt.Errorf(errorLoadDocumentFontFormat, serializer.FontPath, fontError)
		}
		fontFamily = documentEmbeddedFontFamily
		translate = func(text string) string { return text }
	}

	document.AddPage()
	document.SetFont(fontFamily, documentTitleStyle, documentTitleFontSize)
	document.CellFormat(0, documentTitleHeight, translate(lines[0]), documentCellBorder, documentCellNextLine, documentCellAlignment, false, 0, "")
	document.Ln(documentTitleSpacingMm)

	document.SetFont(fontFamily, documentBodyStyle, documentBodyFontSize)
	for _, line := range lines[1:] {
		document.CellFormat(0, documentLineHeight, translate(line), documentCellBorder, documentCellNextLine, documentCellAlignment, false, 0, "")
	}

	return document.Output(writer)
}
