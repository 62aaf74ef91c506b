package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/sitemapper/internal/utils"
)

const (
	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorResolvePathFormat      = "resolve configuration path %s: %w"
	errorStatFormat             = "stat configuration %s: %w"
	errorPathIsDirectoryFormat  = "configuration path %s is a directory"
	errorReadFormat             = "read configuration from %s: %w"
	errorDecodeFormat           = "decode configuration from %s: %w"
	errorDebounceFormat         = "parse watch.debounce %q: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Scan   ScanConfiguration   `mapstructure:"scan"`
	Export ExportConfiguration `mapstructure:"export"`
	Watch  WatchConfiguration  `mapstructure:"watch"`
}

// ScanConfiguration defines how the tree is built and printed.
type ScanConfiguration struct {
	Format     string   `mapstructure:"format"`
	Extensions []string `mapstructure:"extensions"`
	Exclude    []string `mapstructure:"exclude"`
	UseIgnore  *bool    `mapstructure:"use_ignore"`
	Clipboard  *bool    `mapstructure:"clipboard"`
}

// ExportConfiguration defines where export files go and which formats are written.
// DocumentFont names a TrueType font used for PDF labels outside cp1252.
type ExportConfiguration struct {
	Directory    string   `mapstructure:"directory"`
	Formats      []string `mapstructure:"formats"`
	DocumentFont string   `mapstructure:"document_font"`
}

// WatchConfiguration defines the watch command defaults.
type WatchConfiguration struct {
	Debounce string `mapstructure:"debounce"`
	Export   *bool  `mapstructure:"export"`
}

// DebounceDuration parses Debounce. An empty value yields zero.
func (config WatchConfiguration) DebounceDuration() (time.Duration, error) {
	trimmed := strings.TrimSpace(config.Debounce)
	if trimmed == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf(errorDebounceFormat, config.Debounce, err)
	}
	return duration, nil
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Local values override global ones field by field.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Scan.Exclude = utils.DeduplicatePatterns(merged.Scan.Exclude)
	merged.Scan.Extensions = utils.NormalizeExtensions(merged.Scan.Extensions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolvePathFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorPathIsDirectoryFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Scan = result.Scan.merge(override.Scan)
	result.Export = result.Export.merge(override.Export)
	result.Watch = result.Watch.merge(override.Watch)
	return result
}

func (config ScanConfiguration) merge(override ScanConfiguration) ScanConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, override.Extensions...)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.UseIgnore != nil {
		result.UseIgnore = cloneBool(override.UseIgnore)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config ExportConfiguration) merge(override ExportConfiguration) ExportConfiguration {
	result := config
	if override.Directory != "" {
		result.Directory = override.Directory
	}
	if len(override.Formats) > 0 {
		result.Formats = append([]string{}, override.Formats...)
	}
	if override.DocumentFont != "" {
		result.DocumentFont = override.DocumentFont
	}
	return result
}

func (config WatchConfiguration) merge(override WatchConfiguration) WatchConfiguration {
	result := config
	if override.Debounce != "" {
		result.Debounce = override.Debounce
	}
	if override.Export != nil {
		result.Export = cloneBool(override.Export)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
