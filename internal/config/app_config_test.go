package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/temirov/sitemapper/internal/utils"
)

type configTestCase struct {
	name             string
	globalContent    string
	localContent     string
	explicitPath     string
	explicitContent  string
	expectFormat     string
	expectExtensions []string
	expectExclude    []string
	expectDirectory  string
	expectFormats    []string
	expectDebounce   string
	expectWatchSync  *bool
	expectFont       string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:             "local_overrides_global",
			globalContent:    "scan:\n  format: table\n  extensions: [html]\n  exclude: [drafts/]\nexport:\n  formats: [pdf]\n  document_font: /fonts/DejaVuSans.ttf\nwatch:\n  debounce: 1s\n  export: true\n",
			localContent:     "scan:\n  format: json\nexport:\n  directory: out\nwatch:\n  export: false\n",
			expectFormat:     "json",
			expectExtensions: []string{".html"},
			expectExclude:    []string{"drafts/"},
			expectDirectory:  "out",
			expectFormats:    []string{"pdf"},
			expectDebounce:   "1s",
			expectWatchSync:  boolPointer(false),
			expectFont:       "/fonts/DejaVuSans.ttf",
		},
		{
			name:             "explicit_path_replaces_local",
			globalContent:    "scan:\n  format: json\n",
			localContent:     "scan:\n  format: table\n",
			explicitPath:     "custom.yaml",
			explicitContent:  "scan:\n  format: xml\n  extensions: [\".htm\", \" css \", \".htm\"]\n",
			expectFormat:     "xml",
			expectExtensions: []string{".htm", ".css"},
			expectExclude:    []string{},
		},
		{
			name:             "no_files",
			expectFormat:     "",
			expectExtensions: []string{},
			expectExclude:    []string{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.GlobalConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			if loadedConfig.Scan.Format != testCase.expectFormat {
				t.Fatalf("expected format %q, got %q", testCase.expectFormat, loadedConfig.Scan.Format)
			}
			if !reflect.DeepEqual(loadedConfig.Scan.Extensions, testCase.expectExtensions) {
				t.Fatalf("expected extensions %v, got %v", testCase.expectExtensions, loadedConfig.Scan.Extensions)
			}
			if !reflect.DeepEqual(loadedConfig.Scan.Exclude, testCase.expectExclude) {
				t.Fatalf("expected exclude %v, got %v", testCase.expectExclude, loadedConfig.Scan.Exclude)
			}
			if loadedConfig.Export.Directory != testCase.expectDirectory {
				t.Fatalf("expected export directory %q, got %q", testCase.expectDirectory, loadedConfig.Export.Directory)
			}
			if len(testCase.expectFormats) > 0 && !reflect.DeepEqual(loadedConfig.Export.Formats, testCase.expectFormats) {
				t.Fatalf("expected export formats %v, got %v", testCase.expectFormats, loadedConfig.Export.Formats)
			}
			if loadedConfig.Export.DocumentFont != testCase.expectFont {
				t.Fatalf("expected document font %q, got %q", testCase.expectFont, loadedConfig.Export.DocumentFont)
			}
			if loadedConfig.Watch.Debounce != testCase.expectDebounce {
				t.Fatalf("expected debounce %q, got %q", testCase.expectDebounce, loadedConfig.Watch.Debounce)
			}
			if testCase.expectWatchSync == nil {
				if loadedConfig.Watch.Export != nil {
					t.Fatalf("expected no watch export override")
				}
			} else if loadedConfig.Watch.Export == nil || *loadedConfig.Watch.Export != *testCase.expectWatchSync {
				t.Fatalf("unexpected watch export value")
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	workingDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(workingDir, utils.ConfigFileName), 0o755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error when configuration path is a directory")
	}
}

func TestMergeKeepsBaseWhenOverrideIsEmpty(t *testing.T) {
	base := ApplicationConfiguration{
		Scan:  ScanConfiguration{Format: "table", Clipboard: boolPointer(true)},
		Watch: WatchConfiguration{Debounce: "500ms"},
	}
	merged := base.Merge(ApplicationConfiguration{})
	if !reflect.DeepEqual(merged, base) {
		t.Fatalf("expected %+v, got %+v", base, merged)
	}

	override := ApplicationConfiguration{Scan: ScanConfiguration{Clipboard: boolPointer(false)}}
	merged = base.Merge(override)
	if merged.Scan.Clipboard == nil || *merged.Scan.Clipboard {
		t.Fatalf("expected clipboard override to apply")
	}
	*override.Scan.Clipboard = true
	if *merged.Scan.Clipboard {
		t.Fatalf("merged configuration must not share pointers with the override")
	}
}

func TestWatchDebounceDuration(t *testing.T) {
	testCases := []struct {
		name        string
		value       string
		expected    time.Duration
		expectError bool
	}{
		{name: "empty", value: "", expected: 0},
		{name: "milliseconds", value: "250ms", expected: 250 * time.Millisecond},
		{name: "invalid", value: "soon", expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			duration, err := WatchConfiguration{Debounce: testCase.value}.DebounceDuration()
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected parse error for %q", testCase.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("DebounceDuration error: %v", err)
			}
			if duration != testCase.expected {
				t.Fatalf("expected %v, got %v", testCase.expected, duration)
			}
		})
	}
}
