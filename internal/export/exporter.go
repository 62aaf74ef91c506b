package export

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/sitemapper/internal/filelock"
	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/types"
)

const (
	exportDirectoryMode = 0o755

	logMessageExportWritten = "export written"
	logMessageExportFailed  = "export failed"
)

// Serializer turns a tree into the bytes of one export file.
type Serializer interface {
	Serialize(nodes []*sitetree.TreeNode, writer io.Writer) error
}

// Exporter writes site trees to disk in the registered formats.
type Exporter struct {
	logger        *zap.Logger
	serializers   map[Format]Serializer
	lockDirectory string
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithLockDirectory places the advisory lock files in directory instead of os.TempDir.
func WithLockDirectory(directory string) Option {
	return func(exporter *Exporter) {
		exporter.lockDirectory = directory
	}
}

// WithDocumentFont prints PDF labels with the TrueType font at fontPath.
// An empty fontPath keeps the built-in font.
func WithDocumentFont(fontPath string) Option {
	return func(exporter *Exporter) {
		if fontPath != "" {
			exporter.serializers[FormatDocument] = DocumentSerializer{FontPath: fontPath}
		}
	}
}

// WithSerializer registers or replaces the serializer used for format.
func WithSerializer(format Format, serializer Serializer) Option {
	return func(exporter *Exporter) {
		exporter.serializers[format] = serializer
	}
}

// NewExporter returns an Exporter with the document, markup and spreadsheet serializers registered.
func NewExporter(logger *zap.Logger, options ...Option) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	exporter := &Exporter{
		logger: logger,
		serializers: map[Format]Serializer{
			FormatDocument:    DocumentSerializer{},
			FormatMarkup:      MarkupSerializer{},
			FormatSpreadsheet: SpreadsheetSerializer{},
		},
	}
	for _, option := range options {
		option(exporter)
	}
	return exporter
}

// FileName returns the name of the file written for format.
func FileName(format Format) string {
	return types.ExportFileBaseName + "." + format.Extension()
}

// Export serializes nodes with the serializer for format and writes the result
// to destinationDirectory, creating it when missing. It returns the written path.
// An unsupported format fails before anything touches the disk.
func (exporter *Exporter) Export(ctx context.Context, nodes []*sitetree.TreeNode, format Format, destinationDirectory string) (string, error) {
	serializer, supported := exporter.serializers[format]
	if !supported || serializer == nil {
		return "", exporter.fail(&Error{Kind: ErrUnsupportedFormat, Format: format, Path: destinationDirectory})
	}
	if contextError := ctx.Err(); contextError != nil {
		return "", contextError
	}

	if err := os.MkdirAll(destinationDirectory, exportDirectoryMode); err != nil {
		return "", exporter.fail(&Error{Kind: ErrDirectoryCreateFailed, Format: format, Path: destinationDirectory, Err: err})
	}

	destinationPath := filepath.Join(destinationDirectory, FileName(format))
	var buffer bytes.Buffer
	if err := serializer.Serialize(nodes, &buffer); err != nil {
		return "", exporter.fail(&Error{Kind: ErrSerializationFailed, Format: format, Path: destinationPath, Err: err})
	}
	if err := filelock.LockAndWrite(exporter.lockDirectory, destinationPath, buffer.Bytes()); err != nil {
		return "", exporter.fail(&Error{Kind: ErrWriteFailed, Format: format, Path: destinationPath, Err: err})
	}

	exporter.logger.Debug(logMessageExportWritten,
		zap.String("format", string(format)),
		zap.String("path", destinationPath),
		zap.Int("nodes", sitetree.CountNodes(nodes)),
		zap.Int("bytes", buffer.Len()),
	)
	return destinationPath, nil
}

// ExportAll runs one export per format concurrently. Each format writes its own
// file, so the exports never contend for a path. Paths are returned in the
// order of formats; the first failure is returned after all exports finish.
func (exporter *Exporter) ExportAll(ctx context.Context, nodes []*sitetree.TreeNode, formats []Format, destinationDirectory string) ([]string, error) {
	writtenPaths := make([]string, len(formats))
	group, groupContext := errgroup.WithContext(ctx)
	for formatIndex, format := range formats {
		group.Go(func() error {
			writtenPath, err := exporter.Export(groupContext, nodes, format, destinationDirectory)
			if err != nil {
				return err
			}
			writtenPaths[formatIndex] = writtenPath
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return writtenPaths, err
	}
	return writtenPaths, nil
}

func (exporter *Exporter) fail(exportError *Error) error {
	exporter.logger.Debug(logMessageExportFailed,
		zap.String("format", string(exportError.Format)),
		zap.String("path", exportError.Path),
		zap.Error(exportError),
	)
	return exportError
}
