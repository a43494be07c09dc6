package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("MONGO_USERNAME", "backup")
	t.Setenv("MONGO_PASSWORD", "hunter2")
	t.Setenv("MONGO_AUTH_DB", "admin")
	t.Setenv("MONGO_SCOPE", "specific")
	t.Setenv("MONGO_DB", "orders")
	t.Setenv("BACKUP_TARGET", "AWS") // selectors are case-insensitive
	t.Setenv("BACKUP_PATH", "/var/backups/mongodb")
	t.Setenv("FILE_PREFIX", "orders-db")
	t.Setenv("BACKUP_RETENTION", "14")
	t.Setenv("AWS_AUTH", "iam")
	t.Setenv("AWS_REGION", "eu-north-1")
	t.Setenv("AWS_S3_URI", "s3://backups/mongo")
	t.Setenv("AWS_KEY", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET", "secret")
	t.Setenv("DUMP_TIMEOUT", "90m")

	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db.internal:27017", s.Mongo.URI)
	assert.Equal(t, "specific", s.Mongo.Scope)
	assert.Equal(t, "orders", s.Mongo.Database)
	assert.Equal(t, "aws", s.Backup.Target)
	assert.Equal(t, "iam", s.Backup.AWS.Auth)
	assert.Equal(t, 14, s.Backup.RetentionDays)
	assert.Equal(t, 90*time.Minute, s.Backup.DumpTimeout)
	assert.Zero(t, s.Backup.UploadTimeout)

	require.NoError(t, Validate(s))
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, AWSAuthEC2, s.Backup.AWS.Auth)
	assert.Equal(t, 22, s.Backup.SFTP.Port)
	assert.False(t, s.Mongo.Ping)
	assert.Zero(t, s.Backup.DumpTimeout)

	// An empty environment is an incomplete configuration.
	err = Validate(s)
	var missing *MissingValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "MONGO_URI", missing.Var)
}

func TestDefaultsValidateAsLocalOnly(t *testing.T) {
	s := Defaults()
	// Defaults are a starting point, not a runnable config: connection
	// values must still come from the operator.
	err := Validate(s)
	var missing *MissingValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "MONGO_URI", missing.Var)

	require.NoError(t, ValidateSweep(s))
}
