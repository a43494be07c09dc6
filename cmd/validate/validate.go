// Package validate provides the validate command.
package validate

import (
	"github.com/spf13/cobra"

	"mongovault/internal/conf"
)

// Command creates and returns the validate command. It runs the same
// checks the backup command runs before touching anything external, so a
// deployment pipeline can verify an environment without producing a dump.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without running a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.Validate(settings); err != nil {
				return err
			}
			cmd.Println("configuration ok")
			return nil
		},
	}
}
