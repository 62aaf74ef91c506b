// Package export serializes a site tree into document, markup and spreadsheet files.
package export

import (
	"fmt"
	"strings"
)

// Format selects a serializer. Its value is the extension of the written file.
type Format string

const (
	FormatDocument    Format = "pdf"
	FormatMarkup      Format = "xml"
	FormatSpreadsheet Format = "xlsx"
)

const errorUnknownFormatNameFormat = "unknown export format %q (expected pdf, xml or excel)"

var formatAliases = map[string]Format{
	"pdf":         FormatDocument,
	"document":    FormatDocument,
	"xml":         FormatMarkup,
	"markup":      FormatMarkup,
	"excel":       FormatSpreadsheet,
	"xlsx":        FormatSpreadsheet,
	"spreadsheet": FormatSpreadsheet,
}

// SupportedFormats lists every format in the order the CLI offers them.
func SupportedFormats() []Format {
	return []Format{FormatDocument, FormatMarkup, FormatSpreadsheet}
}

// ParseFormat maps a user supplied name such as "PDF", "markup" or "Excel" to a Format.
func ParseFormat(name string) (Format, error) {
	format, known := formatAliases[strings.ToLower(strings.TrimSpace(name))]
	if !known {
		return "", &Error{Kind: ErrUnsupportedFormat, Format: Format(name), Err: fmt.Errorf(errorUnknownFormatNameFormat, name)}
	}
	return format, nil
}

// Extension returns the file extension written for the format.
func (format Format) Extension() string {
	return string(format)
}
