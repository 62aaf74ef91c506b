// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sitemapper/internal/config"
	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/services/clipboard"
	"github.com/temirov/sitemapper/internal/services/workspace"
	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/types"
	"github.com/temirov/sitemapper/internal/utils"
)

const (
	configFlagName       = "config"
	verboseFlagName      = "verbose"
	exclusionFlagName    = "e"
	noIgnoreFlagName     = "no-ignore"
	extensionFlagName    = "ext"
	formatFlagName       = "format"
	versionTemplate      = "sitemapper version: {{.Version}}\n"
	defaultPath          = "."
	rootUse              = "sitemapper"
	rootShortDescription = "map the web files of a site into a tree and export it"
	rootLongDescription  = `sitemapper scans a directory for .html, .css and .js files and the folders holding them.
Use scan to print the tree, export to write it as PDF, XML or Excel under <root>/site-structure-export,
and watch to keep the tree current while files change.`
	configFlagDescription    = "path to a configuration file (default ./.sitemapper.yaml)"
	verboseFlagDescription   = "log debug messages with timestamps"
	exclusionFlagDescription = "exclude path pattern"
	noIgnoreFlagDescription  = "do not read " + utils.IgnoreFileName
	extensionFlagDescription = "file extension to include (repeatable, default .html, .css, .js)"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNotDirectoryFormat reports a root that is a file.
	errorNotDirectoryFormat      = "path '%s' is not a directory"
	errorLoadConfigurationFormat = "load configuration: %w"
)

// applicationDependencies carries everything commands need from the host process.
type applicationDependencies struct {
	logger        *zap.Logger
	fileSystem    afero.Fs
	copier        clipboard.Copier
	stdout        io.Writer
	stderr        io.Writer
	configuration config.ApplicationConfiguration
	lockDirectory string
}

// Execute runs the sitemapper application with the process arguments.
func Execute(logger *zap.Logger) error {
	dependencies := &applicationDependencies{
		logger:     logger,
		fileSystem: afero.NewOsFs(),
		copier:     clipboard.NewService(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	rootCommand := createRootCommand(dependencies)
	rootCommand.SetArgs(expandToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(context.Background())
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies *applicationDependencies) *cobra.Command {
	if dependencies.logger == nil {
		dependencies.logger = zap.NewNop()
	}
	var configurationPath string
	var verbose bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Version:      utils.GetApplicationVersion(),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if verbose {
				verboseLogger, err := utils.NewVerboseLogger()
				if err != nil {
					return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, err)
				}
				dependencies.logger = verboseLogger
			}
			loaded, err := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: configurationPath})
			if err != nil {
				return fmt.Errorf(errorLoadConfigurationFormat, err)
			}
			dependencies.configuration = loaded
			return nil
		},
	}
	rootCommand.SetOut(dependencies.stdout)
	rootCommand.SetErr(dependencies.stderr)
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.PersistentFlags().StringVar(&configurationPath, configFlagName, "", configFlagDescription)
	registerToggleFlag(rootCommand.PersistentFlags(), &verbose, verboseFlagName, verboseFlagDescription)
	rootCommand.AddCommand(
		createScanCommand(dependencies),
		createExportCommand(dependencies),
		createWatchCommand(dependencies),
		createConfigCommand(dependencies),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// scanOptions stores the flags shared by every command that scans a root.
type scanOptions struct {
	exclusionPatterns []string
	extensions        []string
	disableIgnoreFile bool
}

// addScanFlags registers scan-related flags on the command.
func addScanFlags(command *cobra.Command, options *scanOptions) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	command.Flags().StringArrayVar(&options.extensions, extensionFlagName, nil, extensionFlagDescription)
	registerToggleFlag(command.Flags(), &options.disableIgnoreFile, noIgnoreFlagName, noIgnoreFlagDescription)
}

// openWorkspace validates rootArgument and assembles a workspace that scans it
// with the configured extensions and exclusions, command flags taking precedence.
// The returned builder is the one the workspace refreshes with.
func (dependencies *applicationDependencies) openWorkspace(rootArgument string, options scanOptions) (*workspace.Workspace, *sitetree.Builder, error) {
	validatedRoot, err := resolveRoot(rootArgument)
	if err != nil {
		return nil, nil, err
	}
	scanConfiguration := dependencies.configuration.Scan

	useIgnoreFile := !options.disableIgnoreFile
	if scanConfiguration.UseIgnore != nil && !*scanConfiguration.UseIgnore {
		useIgnoreFile = false
	}
	exclusions := append(append([]string{}, scanConfiguration.Exclude...), options.exclusionPatterns...)
	ignorePatterns, err := config.LoadCombinedIgnorePatterns(dependencies.fileSystem, validatedRoot.AbsolutePath, exclusions, useIgnoreFile)
	if err != nil {
		return nil, nil, err
	}

	extensions := utils.NormalizeExtensions(options.extensions)
	if len(extensions) == 0 {
		extensions = scanConfiguration.Extensions
	}

	builder := &sitetree.Builder{
		FileSystem:     dependencies.fileSystem,
		Extensions:     extensions,
		IgnorePatterns: ignorePatterns,
	}
	exporter := export.NewExporter(dependencies.logger,
		export.WithLockDirectory(dependencies.lockDirectory),
		export.WithDocumentFont(dependencies.configuration.Export.DocumentFont),
	)
	return workspace.New(validatedRoot.AbsolutePath, builder, exporter, dependencies.logger), builder, nil
}

// resolveRoot converts the root argument to an absolute directory path.
func resolveRoot(rootArgument string) (types.ValidatedPath, error) {
	if strings.TrimSpace(rootArgument) == "" {
		rootArgument = defaultPath
	}
	absolutePath, absolutePathError := filepath.Abs(rootArgument)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, rootArgument, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	info, fileStatusError := os.Stat(cleanPath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, rootArgument)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, rootArgument, fileStatusError)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorNotDirectoryFormat, rootArgument)
	}
	return types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true}, nil
}

func rootArgumentOf(arguments []string) string {
	if len(arguments) == 0 {
		return defaultPath
	}
	return arguments[0]
}

func (dependencies *applicationDependencies) printSuccess(format string, values ...interface{}) {
	_, _ = color.New(color.FgGreen).Fprintf(dependencies.stderr, format, values...)
}

func (dependencies *applicationDependencies) printNotice(format string, values ...interface{}) {
	_, _ = color.New(color.FgCyan).Fprintf(dependencies.stderr, format, values...)
}
