package backup

import (
	"os"
	"time"
)

// File system permission constants
const (
	// PermBackupDir is the permission for the local backup directory
	PermBackupDir os.FileMode = 0o750

	// PermBackupFile is the permission for archive and state files
	PermBackupFile os.FileMode = 0o640
)

// ArchiveTimeFormat is the timestamp layout embedded in archive filenames,
// second resolution: {prefix}-{YYYYMMDD_HHMMSS}.gz
const ArchiveTimeFormat = "20060102_150405"

// ArchiveExt is the extension of produced archives.
const ArchiveExt = ".gz"

// StateFileName is the run-state file kept in the backup directory.
const StateFileName = ".mongovault-state.json"

// HoursPerDay is used for retention window calculations.
const HoursPerDay = 24

// DefaultUploadTimeout bounds a single upload when none is configured.
// The dump deliberately has no default timeout: a dump of a large
// deployment can legitimately run for hours, and the tool has always
// blocked until mongodump finishes.
const DefaultUploadTimeout = time.Duration(0)
