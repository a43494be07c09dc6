package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mongovault/internal/conf"
)

// Source produces one compressed archive representing the configured
// backup scope.
type Source interface {
	// Name returns the name of the source
	Name() string
	// Dump writes the backup archive to archivePath
	Dump(ctx context.Context, archivePath string) error
	// Validate validates the source configuration
	Validate() error
}

// Target stores a finished archive in a remote location.
type Target interface {
	// Name returns the name of the target
	Name() string
	// Store uploads the archive at archivePath
	Store(ctx context.Context, archivePath string) error
	// Validate validates the target configuration
	Validate() error
}

// Phase is the current stage of a backup run. A run moves strictly forward
// through the phases; any error moves it to PhaseFailed and stops the run.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseDumping    Phase = "dumping"
	PhaseUploading  Phase = "uploading"
	PhaseCleaning   Phase = "cleaning"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Runner executes one backup run: validate, dump, upload, sweep. It is
// single-use and fully sequential; every error is fatal and unrecovered.
type Runner struct {
	settings *conf.Settings
	source   Source
	target   Target // nil means the archive stays local only
	state    *StateManager
	logger   *slog.Logger
	now      func() time.Time

	phase Phase
}

// NewRunner creates a runner for one backup run. target may be nil when no
// upload target is configured.
func NewRunner(settings *conf.Settings, source Source, target Target, state *StateManager, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		settings: settings,
		source:   source,
		target:   target,
		state:    state,
		logger:   logger,
		now:      time.Now,
		phase:    PhaseValidating,
	}
}

// Phase returns the phase the run is in.
func (r *Runner) Phase() Phase {
	return r.phase
}

// ArchiveName returns the archive filename for a run started at ts.
func ArchiveName(prefix string, ts time.Time) string {
	return fmt.Sprintf("%s-%s%s", prefix, ts.Format(ArchiveTimeFormat), ArchiveExt)
}

// Run executes the whole backup procedure. The first error aborts the run:
// a failed dump is never uploaded, and a failed upload skips the retention
// sweep so the only copy of the archive is not aged out.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	logger := r.logger.With("run", runID)

	start := r.now()
	result := &RunResult{
		RunID:     runID,
		StartedAt: start,
	}
	if r.target != nil {
		result.Target = r.target.Name()
	}

	r.phase = PhaseValidating
	logger.Info("validating configuration")
	if err := r.validate(); err != nil {
		return r.fail(result, err, logger)
	}

	archivePath := filepath.Join(r.settings.Backup.Path, ArchiveName(r.settings.Backup.Prefix, start))
	result.Archive = archivePath

	if err := os.MkdirAll(r.settings.Backup.Path, PermBackupDir); err != nil {
		return r.fail(result, NewError(ErrIO, "failed to create backup directory", err), logger)
	}

	r.phase = PhaseDumping
	logger.Info("dumping", "source", r.source.Name(), "archive", archivePath)
	if err := r.dump(ctx, archivePath); err != nil {
		// A partial archive may remain on disk; it is left for the operator
		// and for the retention sweep of a later successful run.
		return r.fail(result, err, logger)
	}

	r.phase = PhaseUploading
	if r.target == nil {
		logger.Warn("no upload target configured, archive kept on local disk only")
	} else {
		logger.Info("uploading", "target", r.target.Name())
		if err := r.upload(ctx, archivePath); err != nil {
			return r.fail(result, err, logger)
		}
	}

	r.phase = PhaseCleaning
	logger.Info("sweeping expired archives", "path", r.settings.Backup.Path, "retention_days", r.settings.Backup.RetentionDays)
	removed, err := SweepExpired(r.settings.Backup.Path, r.settings.Backup.RetentionDays, r.now(), logger)
	if err != nil {
		return r.fail(result, err, logger)
	}
	if removed > 0 {
		logger.Info("removed expired archives", "count", removed)
	}

	r.phase = PhaseDone
	result.Phase = PhaseDone
	result.FinishedAt = r.now()
	r.record(result, logger)
	logger.Info("backup completed", "archive", archivePath, "elapsed", result.FinishedAt.Sub(start).Round(time.Second).String())
	return nil
}

func (r *Runner) validate() error {
	if err := conf.Validate(r.settings); err != nil {
		return NewError(ErrValidation, "invalid configuration", err)
	}
	if err := r.source.Validate(); err != nil {
		return NewError(ErrValidation, "invalid source configuration", err)
	}
	if r.target != nil {
		if err := r.target.Validate(); err != nil {
			return NewError(ErrValidation, "invalid target configuration", err)
		}
	}
	return nil
}

func (r *Runner) dump(ctx context.Context, archivePath string) error {
	if timeout := r.settings.Backup.DumpTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.source.Dump(ctx, archivePath)
}

func (r *Runner) upload(ctx context.Context, archivePath string) error {
	if timeout := r.settings.Backup.UploadTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.target.Store(ctx, archivePath)
}

// fail moves the run to the terminal failed state, records it, and returns
// the error that caused it.
func (r *Runner) fail(result *RunResult, err error, logger *slog.Logger) error {
	failedIn := r.phase
	r.phase = PhaseFailed
	result.Phase = PhaseFailed
	result.FailedIn = failedIn
	result.Error = err.Error()
	result.FinishedAt = r.now()
	r.record(result, logger)
	logger.Error("backup failed", "phase", string(failedIn), "error", err)
	return err
}

func (r *Runner) record(result *RunResult, logger *slog.Logger) {
	if r.state == nil {
		return
	}
	if err := r.state.Record(result); err != nil {
		// State is advisory; failing to persist it must not change the
		// exit status of the run.
		logger.Warn("failed to persist run state", "error", err)
	}
}
