package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/types"
)

const (
	exportUse              = "export [root]"
	exportAlias            = "x"
	exportShortDescription = "write the tree as PDF, XML or Excel (" + exportAlias + ")"
	exportLongDescription  = `Scan a root directory once and write the tree to ` + types.ExportDirectoryName + `/` + types.ExportFileBaseName + `.{pdf,xml,xlsx}.
Repeat --format, or pass a comma separated list, to write several files at once; "all" selects every format.`
	exportUsageExample = `  # Write all three export files
  sitemapper export ./site

  # Write only the Excel workbook into a custom directory
  sitemapper export --format excel --output ./reports ./site`

	exportFormatFlagDescription = "export format: pdf, xml, excel or all (repeatable)"
	outputFlagName              = "output"
	outputFlagDescription       = "destination directory (default <root>/" + types.ExportDirectoryName + ")"
	allFormatsName              = "all"
	exportWrittenTemplate       = "wrote %d export file(s) to %s\n"
	exportFailedFormat          = "export %s failed: %w"
)

// parseExportFormats resolves format names, comma separated lists and "all"
// into distinct formats in the order given. No names selects every format.
func parseExportFormats(names []string) ([]export.Format, error) {
	var formats []export.Format
	seen := map[export.Format]struct{}{}
	appendFormat := func(format export.Format) {
		if _, duplicate := seen[format]; duplicate {
			return
		}
		seen[format] = struct{}{}
		formats = append(formats, format)
	}
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			trimmedPart := strings.TrimSpace(part)
			if trimmedPart == "" {
				continue
			}
			if strings.EqualFold(trimmedPart, allFormatsName) {
				for _, format := range export.SupportedFormats() {
					appendFormat(format)
				}
				continue
			}
			format, err := export.ParseFormat(trimmedPart)
			if err != nil {
				return nil, err
			}
			appendFormat(format)
		}
	}
	if len(formats) == 0 {
		return export.SupportedFormats(), nil
	}
	return formats, nil
}

// resolveOutputDirectory returns the absolute destination of export files.
// An empty directory selects the default under the root.
func resolveOutputDirectory(directory string, rootPath string) (string, error) {
	if strings.TrimSpace(directory) == "" {
		return filepath.Join(rootPath, types.ExportDirectoryName), nil
	}
	absolutePath, err := filepath.Abs(directory)
	if err != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, directory, err)
	}
	return absolutePath, nil
}

// createExportCommand returns the export subcommand.
func createExportCommand(dependencies *applicationDependencies) *cobra.Command {
	var options scanOptions
	var formatNames []string
	var outputDirectory string

	exportCommand := &cobra.Command{
		Use:     exportUse,
		Aliases: []string{exportAlias},
		Short:   exportShortDescription,
		Long:    exportLongDescription,
		Example: exportUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			exportConfiguration := dependencies.configuration.Export
			if !command.Flags().Changed(formatFlagName) {
				formatNames = exportConfiguration.Formats
			}
			if !command.Flags().Changed(outputFlagName) {
				outputDirectory = exportConfiguration.Directory
			}
			formats, err := parseExportFormats(formatNames)
			if err != nil {
				return err
			}

			projectWorkspace, _, err := dependencies.openWorkspace(rootArgumentOf(arguments), options)
			if err != nil {
				return err
			}
			destinationDirectory, err := resolveOutputDirectory(outputDirectory, projectWorkspace.RootPath())
			if err != nil {
				return err
			}
			if _, err := projectWorkspace.Refresh(command.Context()); err != nil {
				return err
			}
			writtenPaths, err := projectWorkspace.ExportAll(command.Context(), formats, destinationDirectory)
			writtenCount := 0
			for _, writtenPath := range writtenPaths {
				if writtenPath != "" {
					writtenCount++
					fmt.Fprintln(dependencies.stdout, writtenPath)
				}
			}
			if err != nil {
				var exportError *export.Error
				if errors.As(err, &exportError) {
					return fmt.Errorf(exportFailedFormat, exportError.Format, err)
				}
				return err
			}
			dependencies.printSuccess(exportWrittenTemplate, writtenCount, destinationDirectory)
			return nil
		},
	}

	addScanFlags(exportCommand, &options)
	exportCommand.Flags().StringArrayVar(&formatNames, formatFlagName, nil, exportFormatFlagDescription)
	exportCommand.Flags().StringVarP(&outputDirectory, outputFlagName, "o", "", outputFlagDescription)
	return exportCommand
}
