package targets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

const sasURI = "https://acct.blob.core.windows.net/backups?sv=2022-11-02&sp=w&sig=abcdef"

func TestAzureStoreBuildsCopyCommand(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{}
	target := NewAzureTarget(&conf.AzureConfig{SASURI: sasURI}, executor, nil)

	require.NoError(t, target.Store(context.Background(), "/tmp/mongodb-20260823_030000.gz"))

	require.Len(t, executor.commands, 1)
	cmd := executor.commands[0]
	assert.Equal(t, "azcopy", cmd.Name)
	assert.Equal(t, []string{"copy", "/tmp/mongodb-20260823_030000.gz", sasURI}, cmd.Args)
	// The SAS URI is the authorization; nothing is exported.
	assert.Empty(t, cmd.Env)
}

func TestAzureStoreWrapsFailure(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{err: errors.New("exit status 1")}
	target := NewAzureTarget(&conf.AzureConfig{SASURI: sasURI}, executor, nil)

	err := target.Store(context.Background(), "/tmp/a.gz")
	require.Error(t, err)
	assert.True(t, backup.IsErrorCode(err, backup.ErrUpload))
}

func TestAzureValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{"valid sas uri", sasURI, false},
		{"http scheme", "http://acct.blob.core.windows.net/backups?sig=abc", true},
		{"missing signature", "https://acct.blob.core.windows.net/backups?sv=2022", true},
		{"garbage", "://not-a-uri", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewAzureTarget(&conf.AzureConfig{SASURI: tt.uri}, &fakeExecutor{}, nil).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
