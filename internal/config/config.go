// Package config loads application configuration and the ignore patterns
// applied while scanning a workspace.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/sitemapper/internal/utils"
)

const (
	commentPrefix = "#"

	errorLoadIgnoreFileFormat = "loading %s from %s: %w"
)

// LoadIgnoreFilePatterns reads the patterns listed in ignoreFilePath, one per
// line. Blank lines and lines starting with # are skipped. A missing file yields no patterns.
func LoadIgnoreFilePatterns(fileSystem afero.Fs, ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := fileSystem.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		_ = fileHandle.Close()
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadCombinedIgnorePatterns returns the patterns of the ignore file at the top
// of rootPath, when useIgnoreFile is set, followed by exclusionPatterns that are
// not already listed.
func LoadCombinedIgnorePatterns(fileSystem afero.Fs, rootPath string, exclusionPatterns []string, useIgnoreFile bool) ([]string, error) {
	var combinedPatterns []string

	if useIgnoreFile {
		ignoreFilePath := filepath.Join(rootPath, utils.IgnoreFileName)
		ignoreFilePatterns, loadError := LoadIgnoreFilePatterns(fileSystem, ignoreFilePath)
		if loadError != nil {
			return nil, fmt.Errorf(errorLoadIgnoreFileFormat, utils.IgnoreFileName, rootPath, loadError)
		}
		combinedPatterns = append(combinedPatterns, ignoreFilePatterns...)
	}

	deduplicatedPatterns := utils.DeduplicatePatterns(combinedPatterns)

	for _, pattern := range exclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !utils.ContainsString(deduplicatedPatterns, trimmedPattern) {
			deduplicatedPatterns = append(deduplicatedPatterns, trimmedPattern)
		}
	}

	return deduplicatedPatterns, nil
}
