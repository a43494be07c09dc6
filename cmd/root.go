// Package cmd assembles the mongovault command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	backupcmd "mongovault/cmd/backup"
	configcmd "mongovault/cmd/config"
	listcmd "mongovault/cmd/list"
	prunecmd "mongovault/cmd/prune"
	statuscmd "mongovault/cmd/status"
	validatecmd "mongovault/cmd/validate"
	"mongovault/internal/conf"
	"mongovault/internal/logging"
)

// RootCommand creates and returns the root command. The settings struct is
// shared with every subcommand and populated from the environment and the
// optional config file before any subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	var configDir string
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "mongovault",
		Short:         "MongoDB backup orchestrator",
		Long:          "mongovault dumps a MongoDB deployment to a compressed archive,\nuploads it to the configured storage target and prunes local archives\npast the retention window.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := conf.Load(configDir)
			if err != nil {
				return err
			}
			*settings = *loaded
			if cmd.Flags().Changed("debug") {
				settings.Debug = debug
			}
			logging.Init(&settings.Log, settings.Debug)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory to read config.yaml from")

	rootCmd.AddCommand(
		backupcmd.Command(settings),
		validatecmd.Command(settings),
		prunecmd.Command(settings),
		listcmd.Command(settings),
		statuscmd.Command(settings),
		configcmd.Command(settings),
	)

	return rootCmd
}
