package export

import (
	"errors"
	"fmt"
)

// Export failure categories. Every error returned by Exporter matches exactly
// one of them with errors.Is.
var (
	ErrDirectoryCreateFailed = errors.New("export directory could not be created")
	ErrUnsupportedFormat     = errors.New("unsupported export format")
	ErrSerializationFailed   = errors.New("export serialization failed")
	ErrWriteFailed           = errors.New("export file could not be written")
)

// Error describes a failed export with enough context for a user-facing message.
type Error struct {
	Kind   error
	Format Format
	Path   string
	Err    error
}

func (exportError *Error) Error() string {
	message := fmt.Sprintf("%v (format %q", exportError.Kind, string(exportError.Format))
	if exportError.Path != "" {
		message += ", path " + exportError.Path
	}
	message += ")"
	if exportError.Err != nil {
		message += ": " + exportError.Err.Error()
	}
	return message
}

// Unwrap exposes both the category sentinel and the underlying cause.
func (exportError *Error) Unwrap() []error {
	if exportError.Err == nil {
		return []error{exportError.Kind}
	}
	return []error{exportError.Kind, exportError.Err}
}
