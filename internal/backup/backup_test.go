package backup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mongovault/internal/backup"
	"mongovault/internal/backup/sources"
	"mongovault/internal/backup/targets"
	"mongovault/internal/conf"
)

// fakeExecutor records every command instead of running it, and can be told
// to fail for a given command name.
type fakeExecutor struct {
	commands []backup.Command
	failures map[string]error
}

func (f *fakeExecutor) Run(ctx context.Context, cmd *backup.Command) error {
	f.commands = append(f.commands, *cmd)
	if err, ok := f.failures[cmd.Name]; ok {
		return err
	}
	return nil
}

func (f *fakeExecutor) names() []string {
	var names []string
	for i := range f.commands {
		names = append(names, f.commands[i].Name)
	}
	return names
}

func testSettings(t *testing.T, target string) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		Mongo: conf.MongoConfig{
			URI:      "mongodb://db.internal:27017",
			Username: "backup",
			Password: "hunter2",
			AuthDB:   "admin",
			Scope:    conf.ScopeAll,
		},
		Backup: conf.BackupConfig{
			Target:        target,
			Path:          t.TempDir(),
			Prefix:        "mongodb",
			RetentionDays: 7,
			AWS: conf.AWSConfig{
				Auth:   conf.AWSAuthEC2,
				Region: "eu-north-1",
				S3URI:  "s3://backups/mongo",
			},
			Azure: conf.AzureConfig{
				SASURI: "https://acct.blob.core.windows.net/backups?sv=2022&sig=abc",
			},
		},
	}
}

// newRunner wires a runner the way the backup command does, with the fake
// executor substituted for the real one.
func newRunner(t *testing.T, settings *conf.Settings, executor backup.Executor) *backup.Runner {
	t.Helper()
	source := sources.NewMongoDBSource(&settings.Mongo, executor, nil)
	target, err := targets.New(settings, executor, nil)
	require.NoError(t, err)
	state := backup.NewStateManager(settings.Backup.Path)
	return backup.NewRunner(settings, source, target, state, nil)
}

// expiredFile drops a file into dir with a modification time older than the
// retention window.
func expiredFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o640))
	old := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func TestRunDumpsUploadsAndSweeps(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetAWS)
	expired := expiredFile(t, settings.Backup.Path, "mongodb-20200101_000000.gz")

	executor := &fakeExecutor{}
	runner := newRunner(t, settings, executor)

	require.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, backup.PhaseDone, runner.Phase())

	require.Equal(t, []string{"mongodump", "aws"}, executor.names())

	// The whole-cluster scope must not restrict the dump to one database.
	assert.NotContains(t, executor.commands[0].Args, "--db")

	// ec2 auth relies on the instance role: region exported, no keys.
	env := executor.commands[1].Env
	assert.Contains(t, env, "AWS_DEFAULT_REGION=eu-north-1")
	for _, v := range env {
		assert.NotContains(t, v, "AWS_ACCESS_KEY_ID")
		assert.NotContains(t, v, "AWS_SECRET_ACCESS_KEY")
	}

	// The sweep ran: the expired file is gone.
	_, err := os.Stat(expired)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	last, err := backup.NewStateManager(settings.Backup.Path).Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, backup.PhaseDone, last.Phase)
	assert.Equal(t, "aws", last.Target)
}

func TestRunArchiveNameFormat(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetNone)
	executor := &fakeExecutor{}
	runner := newRunner(t, settings, executor)

	require.NoError(t, runner.Run(context.Background()))

	// mongodump is told to write {prefix}-{YYYYMMDD}_{HHMMSS}.gz
	require.Len(t, executor.commands, 1)
	var archiveArg string
	for _, arg := range executor.commands[0].Args {
		if len(arg) > len("--archive=") && arg[:len("--archive=")] == "--archive=" {
			archiveArg = arg[len("--archive="):]
		}
	}
	require.NotEmpty(t, archiveArg)
	assert.Equal(t, settings.Backup.Path, filepath.Dir(archiveArg))
	assert.Regexp(t, regexp.MustCompile(`^mongodb-\d{8}_\d{6}\.gz$`), filepath.Base(archiveArg))
}

func TestRunSpecificScopeRestrictsDump(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetNone)
	settings.Mongo.Scope = conf.ScopeSpecific
	settings.Mongo.Database = "orders"

	executor := &fakeExecutor{}
	runner := newRunner(t, settings, executor)
	require.NoError(t, runner.Run(context.Background()))

	require.Len(t, executor.commands, 1)
	args := executor.commands[0].Args
	require.Contains(t, args, "--db")
	assert.Equal(t, "orders", args[indexOf(args, "--db")+1])
}

func TestRunIAMCredentialsExported(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetAWS)
	settings.Backup.AWS.Auth = conf.AWSAuthIAM
	settings.Backup.AWS.Key = "AKIAEXAMPLE"
	settings.Backup.AWS.Secret = "sekrit"

	executor := &fakeExecutor{}
	runner := newRunner(t, settings, executor)
	require.NoError(t, runner.Run(context.Background()))

	require.Equal(t, []string{"mongodump", "aws"}, executor.names())
	env := executor.commands[1].Env
	assert.Contains(t, env, "AWS_ACCESS_KEY_ID=AKIAEXAMPLE")
	assert.Contains(t, env, "AWS_SECRET_ACCESS_KEY=sekrit")
}

func TestRunFailsBeforeAnySubprocessOnMissingConfig(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetAWS)
	settings.Mongo.Password = ""

	executor := &fakeExecutor{}
	runner := newRunner(t, settings, executor)

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, backup.IsValidationError(err))
	assert.Contains(t, err.Error(), "MONGO_PASSWORD")
	assert.Empty(t, executor.commands)
	assert.Equal(t, backup.PhaseFailed, runner.Phase())
}

func TestRunDumpFailureSkipsUploadAndSweep(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetAWS)
	expired := expiredFile(t, settings.Backup.Path, "stale.gz")

	executor := &fakeExecutor{failures: map[string]error{
		"mongodump": errors.New("exit status 1"),
	}}
	runner := newRunner(t, settings, executor)

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, backup.IsErrorCode(err, backup.ErrDump))

	// No upload happened, and the expired file was not swept.
	assert.Equal(t, []string{"mongodump"}, executor.names())
	_, statErr := os.Stat(expired)
	assert.NoError(t, statErr)

	last, lastErr := backup.NewStateManager(settings.Backup.Path).Last()
	require.NoError(t, lastErr)
	require.NotNil(t, last)
	assert.Equal(t, backup.PhaseFailed, last.Phase)
	assert.Equal(t, backup.PhaseDumping, last.FailedIn)
}

func TestRunUploadFailureSkipsSweep(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetAzure)
	settings.Backup.Target = conf.TargetAzure
	expired := expiredFile(t, settings.Backup.Path, "stale.gz")

	executor := &fakeExecutor{failures: map[string]error{
		"azcopy": errors.New("exit status 1"),
	}}
	runner := newRunner(t, settings, executor)

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, backup.IsErrorCode(err, backup.ErrUpload))

	assert.Equal(t, []string{"mongodump", "azcopy"}, executor.names())
	_, statErr := os.Stat(expired)
	assert.NoError(t, statErr)

	last, lastErr := backup.NewStateManager(settings.Backup.Path).Last()
	require.NoError(t, lastErr)
	assert.Equal(t, backup.PhaseUploading, last.FailedIn)
}

func TestRunWithoutTargetKeepsArchiveLocal(t *testing.T) {
	t.Parallel()

	settings := testSettings(t, conf.TargetNone)
	expired := expiredFile(t, settings.Backup.Path, "stale.gz")

	executor := &fakeExecutor{}
	runner := newRunner(t, settings, executor)
	require.NoError(t, runner.Run(context.Background()))

	// Only the dump ran, and the sweep still happened.
	assert.Equal(t, []string{"mongodump"}, executor.names())
	_, statErr := os.Stat(expired)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestArchiveName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 23, 4, 5, 6, 0, time.UTC)
	assert.Equal(t, "mongodb-20260823_040506.gz", backup.ArchiveName("mongodb", ts))
}

func indexOf(args []string, want string) int {
	for i, arg := range args {
		if arg == want {
			return i
		}
	}
	return -1
}
