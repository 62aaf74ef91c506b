package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/services/watch"
	"github.com/temirov/sitemapper/internal/services/workspace"
)

const (
	watchUse              = "watch [root]"
	watchAlias            = "w"
	watchShortDescription = "rescan whenever web files change (" + watchAlias + ")"
	watchLongDescription  = `Scan a root directory and rescan it whenever a web file or folder below it is
created, changed, removed or renamed. With --export, the chosen files are rewritten after every rescan.
Stop with Ctrl+C.`
	watchUsageExample = `  # Keep the XML export of ./site current
  sitemapper watch --export xml ./site`

	watchExportFlagName        = "export"
	watchExportFlagDescription = "export format to rewrite after every rescan: pdf, xml, excel or all (repeatable)"
	debounceFlagName           = "debounce"
	debounceFlagDescription    = "quiet period after the last change before rescanning"
	watchStartedTemplate       = "watching %s (%d directories)\n"
	refreshedTemplate          = "generation %d: %d nodes\n"

	logMessageAutoExportFailed = "export after refresh failed"
)

// createWatchCommand returns the watch subcommand.
func createWatchCommand(dependencies *applicationDependencies) *cobra.Command {
	var options scanOptions
	var exportFormatNames []string
	var debounce time.Duration

	watchCommand := &cobra.Command{
		Use:     watchUse,
		Aliases: []string{watchAlias},
		Short:   watchShortDescription,
		Long:    watchLongDescription,
		Example: watchUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := dependencies.configuration
			if !command.Flags().Changed(debounceFlagName) {
				configuredDebounce, err := configuration.Watch.DebounceDuration()
				if err != nil {
					return err
				}
				if configuredDebounce > 0 {
					debounce = configuredDebounce
				}
			}
			var exportFormats []export.Format
			if command.Flags().Changed(watchExportFlagName) {
				parsed, err := parseExportFormats(exportFormatNames)
				if err != nil {
					return err
				}
				exportFormats = parsed
			} else if configuration.Watch.Export != nil && *configuration.Watch.Export {
				parsed, err := parseExportFormats(configuration.Export.Formats)
				if err != nil {
					return err
				}
				exportFormats = parsed
			}

			projectWorkspace, builder, err := dependencies.openWorkspace(rootArgumentOf(arguments), options)
			if err != nil {
				return err
			}
			destinationDirectory, err := resolveOutputDirectory(configuration.Export.Directory, projectWorkspace.RootPath())
			if err != nil {
				return err
			}

			signalContext, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return dependencies.runWatch(signalContext, projectWorkspace, watchSettings{
				extensions:           builder.Extensions,
				ignorePatterns:       builder.IgnorePatterns,
				debounce:             debounce,
				exportFormats:        exportFormats,
				destinationDirectory: destinationDirectory,
			})
		},
	}

	addScanFlags(watchCommand, &options)
	watchCommand.Flags().StringArrayVar(&exportFormatNames, watchExportFlagName, nil, watchExportFlagDescription)
	watchCommand.Flags().DurationVar(&debounce, debounceFlagName, watch.DefaultDebounce, debounceFlagDescription)
	return watchCommand
}

type watchSettings struct {
	extensions           []string
	ignorePatterns       []string
	debounce             time.Duration
	exportFormats        []export.Format
	destinationDirectory string
}

// runWatch performs the initial scan, reports every refresh and blocks until ctx is done.
func (dependencies *applicationDependencies) runWatch(ctx context.Context, projectWorkspace *workspace.Workspace, settings watchSettings) error {
	unsubscribe := projectWorkspace.Subscribe(func(event workspace.ChangeEvent) {
		fmt.Fprintf(dependencies.stdout, refreshedTemplate, event.Generation, event.NodeCount)
		if len(settings.exportFormats) == 0 {
			return
		}
		if _, err := projectWorkspace.ExportAll(ctx, settings.exportFormats, settings.destinationDirectory); err != nil && !errors.Is(err, context.Canceled) {
			dependencies.logger.Warn(logMessageAutoExportFailed, zap.String("directory", settings.destinationDirectory), zap.Error(err))
		}
	})
	defer unsubscribe()

	if _, err := projectWorkspace.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	watcher, err := watch.New(watch.Options{
		Root:           projectWorkspace.RootPath(),
		Extensions:     settings.extensions,
		IgnorePatterns: settings.ignorePatterns,
		Debounce:       settings.debounce,
	}, projectWorkspace, dependencies.logger)
	if err != nil {
		return err
	}
	dependencies.printNotice(watchStartedTemplate, projectWorkspace.RootPath(), watcher.WatchedDirectories())
	return watcher.Run(ctx)
}
