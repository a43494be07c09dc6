// Package backup provides the backup command.
package backup

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mongovault/internal/backup"
	"mongovault/internal/backup/sources"
	"mongovault/internal/backup/targets"
	"mongovault/internal/conf"
)

// Command creates and returns the backup command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Dump the deployment, upload the archive and prune old local archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(settings)
		},
	}
}

func runBackup(settings *conf.Settings) error {
	// Fail fast on configuration before anything external runs.
	if err := conf.Validate(settings); err != nil {
		return err
	}

	logger := slog.Default()
	executor := backup.NewExecutor(logger)

	source := sources.NewMongoDBSource(&settings.Mongo, executor, logger)
	target, err := targets.New(settings, executor, logger)
	if err != nil {
		return err
	}

	state := backup.NewStateManager(settings.Backup.Path)
	runner := backup.NewRunner(settings, source, target, state, logger)

	// The run blocks until its subprocesses finish; the only cancellation
	// mechanism is the operator terminating the process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runner.Run(ctx)
}
