package backup

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SweepExpired deletes every regular file directly under dir whose
// modification time is older than now minus retentionDays. The sweep is a
// plain age sweep over the whole directory: it is not limited to archives
// this run created, nor to files matching the archive naming pattern, so
// the backup directory must not be shared with unrelated data.
//
// The first deletion error aborts the sweep, keeping the run's fail-fast
// discipline. It returns the number of files removed.
func SweepExpired(dir string, retentionDays int, now time.Time, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, NewError(ErrIO, "failed to read backup directory", err)
	}

	cutoff := now.Add(-time.Duration(retentionDays) * HoursPerDay * time.Hour)

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, NewError(ErrIO, "failed to stat "+entry.Name(), err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, NewError(ErrIO, "failed to remove "+entry.Name(), err)
		}
		logger.Debug("removed expired file", "file", entry.Name(), "modified", info.ModTime())
		removed++
	}

	return removed, nil
}
