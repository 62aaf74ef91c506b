// Package types defines every cross‑package constant used by the sitemapper CLI.
package types

const (
	NodeKindFolder = "folder"
	NodeKindFile   = "file"

	CommandScan   = "scan"
	CommandExport = "export"
	CommandWatch  = "watch"

	FormatRaw   = "raw"
	FormatJSON  = "json"
	FormatXML   = "xml"
	FormatTable = "table"

	// ExportDirectoryName is the directory created under the workspace root for export files.
	ExportDirectoryName = "site-structure-export"
	// ExportFileBaseName is the file name, without extension, of every export file.
	ExportFileBaseName = "site_structure"
	// DocumentTitle is the title line of document exports and the spreadsheet sheet name.
	DocumentTitle = "Site Structure"
)

// DefaultWebExtensions lists the file suffixes included in a scan when none are configured.
var DefaultWebExtensions = []string{".html", ".css", ".js"}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}
