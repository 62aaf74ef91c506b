package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/sitemapper/internal/output"
	"github.com/temirov/sitemapper/internal/types"
)

const (
	scanUse              = "scan [root]"
	scanAlias            = "s"
	scanShortDescription = "print the web file tree (" + scanAlias + ")"
	scanLongDescription  = `Scan a root directory once and print its folders and .html, .css and .js files.
Use --format to select raw, json, xml, or table output.`
	scanUsageExample = `  # Print the tree of the current directory
  sitemapper scan

  # Render the tree as a table, skipping vendored code
  sitemapper scan --format table -e vendor/ ./site`

	copyFlagName              = "copy"
	copyFlagDescription       = "copy the raw tree to the clipboard"
	formatFlagDescription     = "output format (raw, json, xml, table)"
	invalidFormatMessage      = "Invalid format value '%s'"
	copiedToClipboardTemplate = "copied tree of %s to clipboard\n"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML, types.FormatTable:
		return true
	default:
		return false
	}
}

// createScanCommand returns the scan subcommand.
func createScanCommand(dependencies *applicationDependencies) *cobra.Command {
	var options scanOptions
	var outputFormat string
	var copyEnabled bool

	scanCommand := &cobra.Command{
		Use:     scanUse,
		Aliases: []string{scanAlias},
		Short:   scanShortDescription,
		Long:    scanLongDescription,
		Example: scanUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			scanConfiguration := dependencies.configuration.Scan
			if !command.Flags().Changed(formatFlagName) && scanConfiguration.Format != "" {
				outputFormat = scanConfiguration.Format
			}
			outputFormatLower := strings.ToLower(strings.TrimSpace(outputFormat))
			if !isSupportedFormat(outputFormatLower) {
				return fmt.Errorf(invalidFormatMessage, outputFormatLower)
			}
			if !command.Flags().Changed(copyFlagName) && scanConfiguration.Clipboard != nil {
				copyEnabled = *scanConfiguration.Clipboard
			}

			projectWorkspace, _, err := dependencies.openWorkspace(rootArgumentOf(arguments), options)
			if err != nil {
				return err
			}
			snapshot, err := projectWorkspace.Refresh(command.Context())
			if err != nil {
				return err
			}
			if err := output.Render(dependencies.stdout, outputFormatLower, snapshot); err != nil {
				return err
			}
			if !copyEnabled {
				return nil
			}
			var rawTree bytes.Buffer
			if err := output.WriteTreeRaw(&rawTree, snapshot); err != nil {
				return err
			}
			if err := dependencies.copier.Copy(rawTree.String()); err != nil {
				return err
			}
			dependencies.printNotice(copiedToClipboardTemplate, snapshot.RootPath)
			return nil
		},
	}

	addScanFlags(scanCommand, &options)
	scanCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerToggleFlag(scanCommand.Flags(), &copyEnabled, copyFlagName, copyFlagDescription)
	return scanCommand
}
