package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/services/clipboard"
	"github.com/temirov/sitemapper/internal/types"
	"github.com/temirov/sitemapper/internal/utils"
)

// lockedBuffer is a bytes.Buffer safe for the concurrent writes of the watch command.
type lockedBuffer struct {
	mutex  sync.Mutex
	buffer bytes.Buffer
}

func (buffer *lockedBuffer) Write(data []byte) (int, error) {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buffer.Write(data)
}

func (buffer *lockedBuffer) String() string {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buffer.String()
}

type commandHarness struct {
	dependencies *applicationDependencies
	stdout       *lockedBuffer
	stderr       *lockedBuffer
	copied       []string
}

func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	t.Chdir(t.TempDir())

	harness := &commandHarness{stdout: &lockedBuffer{}, stderr: &lockedBuffer{}}
	harness.dependencies = &applicationDependencies{
		logger:     zap.NewNop(),
		fileSystem: afero.NewOsFs(),
		copier: clipboard.Func(func(text string) error {
			harness.copied = append(harness.copied, text)
			return nil
		}),
		stdout:        harness.stdout,
		stderr:        harness.stderr,
		lockDirectory: t.TempDir(),
	}
	return harness
}

func (harness *commandHarness) run(ctx context.Context, arguments ...string) error {
	rootCommand := createRootCommand(harness.dependencies)
	rootCommand.SetArgs(expandToggleArguments(rootCommand, arguments))
	return rootCommand.ExecuteContext(ctx)
}

// createSite lays out the example site used across the command tests.
func createSite(t *testing.T) string {
	t.Helper()
	rootPath := t.TempDir()
	files := map[string]string{
		"index.html":      "<html></html>",
		"style.css":       "body{}",
		"readme.md":       "# readme",
		"assets/logo.png": "png",
	}
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootPath, relativePath)
		require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(t, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
	return rootPath
}

func TestScanPrintsRawTree(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)

	require.NoError(t, harness.run(context.Background(), "scan", rootPath))

	rendered := harness.stdout.String()
	require.Contains(t, rendered, "├── [dir] assets\n")
	require.Contains(t, rendered, "├── [html] index.html\n")
	require.Contains(t, rendered, "└── [css] style.css\n")
	require.NotContains(t, rendered, "readme.md")
	require.NotContains(t, rendered, "logo.png")
	require.Empty(t, harness.copied)
}

func TestScanJSONReportsNodeCount(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)

	require.NoError(t, harness.run(context.Background(), "scan", "--format", "JSON", rootPath))

	var decoded struct {
		RootPath  string `json:"rootPath"`
		NodeCount int    `json:"nodeCount"`
	}
	require.NoError(t, json.Unmarshal([]byte(harness.stdout.String()), &decoded))
	require.Equal(t, rootPath, decoded.RootPath)
	require.Equal(t, 3, decoded.NodeCount)
}

func TestScanCopyPlacesRawTreeOnClipboard(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)

	require.NoError(t, harness.run(context.Background(), "scan", "--format", "table", "--copy", rootPath))

	require.Len(t, harness.copied, 1)
	require.Contains(t, harness.copied[0], "[html] index.html")
	require.Contains(t, harness.stdout.String(), "(3 rows)")
}

func TestScanHonorsExclusionsAndIgnoreFile(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(rootPath, utils.IgnoreFileName), []byte("assets/\n"), 0o644))

	require.NoError(t, harness.run(context.Background(), "scan", "-e", "*.css", rootPath))
	rendered := harness.stdout.String()
	require.NotContains(t, rendered, "assets")
	require.NotContains(t, rendered, "style.css")
	require.Contains(t, rendered, "index.html")

	harness.stdout = &lockedBuffer{}
	harness.dependencies.stdout = harness.stdout
	require.NoError(t, harness.run(context.Background(), "scan", "--no-ignore", rootPath))
	require.Contains(t, harness.stdout.String(), "assets")
}

func TestScanRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name      string
		arguments func(rootPath string) []string
		message   string
	}{
		{
			name:      "unknown_format",
			arguments: func(rootPath string) []string { return []string{"scan", "--format", "yaml", rootPath} },
			message:   "Invalid format value 'yaml'",
		},
		{
			name:      "missing_root",
			arguments: func(rootPath string) []string { return []string{"scan", filepath.Join(rootPath, "missing")} },
			message:   "does not exist",
		},
		{
			name:      "file_root",
			arguments: func(rootPath string) []string { return []string{"scan", filepath.Join(rootPath, "index.html")} },
			message:   "is not a directory",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			rootPath := createSite(t)
			err := harness.run(context.Background(), testCase.arguments(rootPath)...)
			require.Error(t, err)
			require.Contains(t, err.Error(), testCase.message)
		})
	}
}

func TestScanUsesConfigurationFile(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)
	configurationPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configurationPath, []byte("scan:\n  format: xml\n  extensions: [css]\n"), 0o600))

	require.NoError(t, harness.run(context.Background(), "--config", configurationPath, "scan", rootPath))

	rendered := harness.stdout.String()
	require.True(t, strings.HasPrefix(rendered, "<?xml"))
	require.Contains(t, rendered, `label="style.css"`)
	require.NotContains(t, rendered, "index.html")
}

func TestExportWritesEveryFormatByDefault(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)

	require.NoError(t, harness.run(context.Background(), "export", rootPath))

	exportDirectory := filepath.Join(rootPath, types.ExportDirectoryName)
	entries, err := os.ReadDir(exportDirectory)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, fileName := range []string{"site_structure.pdf", "site_structure.xml", "site_structure.xlsx"} {
		require.FileExists(t, filepath.Join(exportDirectory, fileName))
		require.Contains(t, harness.stdout.String(), filepath.Join(exportDirectory, fileName))
	}
}

func TestExportSelectedFormatToOutputDirectory(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)
	outputDirectory := filepath.Join(t.TempDir(), "reports")

	require.NoError(t, harness.run(context.Background(), "export", "--format", "excel", "-o", outputDirectory, rootPath))

	entries, err := os.ReadDir(outputDirectory)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "site_structure.xlsx", entries[0].Name())
	require.NoDirExists(t, filepath.Join(rootPath, types.ExportDirectoryName))
}

func TestExportUnsupportedFormatWritesNothing(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)

	err := harness.run(context.Background(), "export", "--format", "docx", rootPath)

	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
	require.NoDirExists(t, filepath.Join(rootPath, types.ExportDirectoryName))
}

func TestParseExportFormats(t *testing.T) {
	testCases := []struct {
		name        string
		names       []string
		expected    []export.Format
		expectError bool
	}{
		{name: "none_selects_all", names: nil, expected: export.SupportedFormats()},
		{name: "all_keyword", names: []string{"ALL"}, expected: export.SupportedFormats()},
		{name: "comma_list_dedup", names: []string{"xml, excel", "XML"}, expected: []export.Format{export.FormatMarkup, export.FormatSpreadsheet}},
		{name: "aliases", names: []string{"document", "spreadsheet"}, expected: []export.Format{export.FormatDocument, export.FormatSpreadsheet}},
		{name: "unknown", names: []string{"pdf", "csv"}, expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			formats, err := parseExportFormats(testCase.names)
			if testCase.expectError {
				require.ErrorIs(t, err, export.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, formats)
		})
	}
}

func TestConfigInitWritesLocalFile(t *testing.T) {
	harness := newCommandHarness(t)
	workingDirectory, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, harness.run(context.Background(), "config", "init"))
	require.FileExists(t, filepath.Join(workingDirectory, utils.ConfigFileName))
	require.Contains(t, harness.stderr.String(), "configuration written to")

	require.Error(t, harness.run(context.Background(), "config", "init"))
	require.NoError(t, harness.run(context.Background(), "config", "init", "--force"))
}

func TestVersionFlag(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run(context.Background(), "--version"))

	require.Contains(t, harness.stdout.String(), "sitemapper version: "+utils.GetApplicationVersion())
}

func TestWatchRefreshesAndExportsOnChange(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan error, 1)
	go func() {
		finished <- harness.run(ctx, "watch", "--debounce", "20ms", "--export", "xml", rootPath)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(harness.stderr.String(), "watching "+rootPath)
	}, 5*time.Second, 10*time.Millisecond)
	require.Contains(t, harness.stdout.String(), "generation 1: 3 nodes")
	markupPath := filepath.Join(rootPath, types.ExportDirectoryName, "site_structure.xml")
	require.FileExists(t, markupPath)

	require.NoError(t, os.WriteFile(filepath.Join(rootPath, "assets", "app.js"), []byte("x"), 0o644))
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(markupPath)
		return err == nil && strings.Contains(string(content), `label="app.js"`)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
