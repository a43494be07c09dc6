// Package config provides the config command.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mongovault/internal/conf"
)

// Command creates and returns the config command group.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(initCommand())
	return cmd
}

func initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter config.yaml with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, "config.yaml")

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
			}

			data, err := yaml.Marshal(conf.Defaults())
			if err != nil {
				return fmt.Errorf("marshaling defaults: %w", err)
			}

			header := []byte("# mongovault configuration.\n# Every value can also be set by its environment variable\n# (MONGO_URI, BACKUP_TARGET, ...); the environment wins over this file.\n")
			if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			cmd.Println("wrote", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
