package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactArgsMasksPasswordValues(t *testing.T) {
	t.Parallel()

	args := []string{
		"--uri", "mongodb://db.internal:27017",
		"--username", "backup",
		"--password", "hunter2",
		"--gzip",
	}
	redacted := RedactArgs(args)

	assert.NotContains(t, redacted, "hunter2")
	assert.Contains(t, redacted, "*****")
	assert.Contains(t, redacted, "backup")
	// The original slice is untouched.
	assert.Contains(t, args, "hunter2")
}

func TestRedactArgsMasksInlinePassword(t *testing.T) {
	t.Parallel()

	redacted := RedactArgs([]string{"--password=hunter2"})
	assert.Equal(t, []string{"--password=*****"}, redacted)
}

func TestRedactArgsMasksSASSignature(t *testing.T) {
	t.Parallel()

	uri := "https://acct.blob.core.windows.net/backups?sv=2022&sig=topsecret&sp=w"
	redacted := RedactArgs([]string{"copy", "/tmp/a.gz", uri})

	assert.NotContains(t, redacted[2], "topsecret")
	assert.Contains(t, redacted[2], "sig=*****")
	// The rest of the query survives.
	assert.Contains(t, redacted[2], "sv=2022")
	assert.Contains(t, redacted[2], "sp=w")
}

func TestRedactArgsLeavesPlainArgsAlone(t *testing.T) {
	t.Parallel()

	args := []string{"s3", "cp", "/tmp/a.gz", "s3://backups/mongo/a.gz"}
	assert.Equal(t, args, RedactArgs(args))
}
