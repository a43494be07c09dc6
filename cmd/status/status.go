// Package status provides the status command.
package status

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// Command creates and returns the status command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the result of the last backup run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.Backup.Path == "" {
				return &conf.MissingValueError{Var: "BACKUP_PATH"}
			}

			state := backup.NewStateManager(settings.Backup.Path)
			last, err := state.Last()
			if err != nil {
				return err
			}
			if last == nil {
				cmd.Println("no recorded runs")
				return nil
			}

			cmd.Printf("run:      %s\n", last.RunID)
			cmd.Printf("started:  %s\n", last.StartedAt.Format(time.RFC3339))
			cmd.Printf("finished: %s\n", last.FinishedAt.Format(time.RFC3339))
			cmd.Printf("result:   %s\n", last.Phase)
			if last.Archive != "" {
				cmd.Printf("archive:  %s\n", last.Archive)
			}
			if last.Target != "" {
				cmd.Printf("target:   %s\n", last.Target)
			}
			if last.Phase == backup.PhaseFailed {
				cmd.Printf("failed in: %s\n", last.FailedIn)
				cmd.Printf("error:    %s\n", last.Error)
				return fmt.Errorf("last run failed")
			}
			return nil
		},
	}
}
