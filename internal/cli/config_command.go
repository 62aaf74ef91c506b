package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/sitemapper/internal/config"
)

const (
	configUse                  = "config"
	configShortDescription     = "manage sitemapper configuration"
	configInitUse              = "init"
	configInitShortDescription = "write the default configuration file"
	configInitLongDescription  = `Write the default configuration to ./.sitemapper.yaml, or with --global to ~/.sitemapper/config.yaml.
An existing file is only replaced with --force.`
	globalFlagName        = "global"
	globalFlagDescription = "write the global configuration instead of the local one"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	configWrittenTemplate = "configuration written to %s\n"
)

// createConfigCommand returns the config command with its init subcommand.
func createConfigCommand(dependencies *applicationDependencies) *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Long:  configInitLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, err := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if err != nil {
				return err
			}
			dependencies.printSuccess(configWrittenTemplate, writtenPath)
			return nil
		},
	}
	registerToggleFlag(initCommand.Flags(), &global, globalFlagName, globalFlagDescription)
	registerToggleFlag(initCommand.Flags(), &force, forceFlagName, forceFlagDescription)

	configCommand.AddCommand(initCommand)
	return configCommand
}
