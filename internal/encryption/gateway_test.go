package encryption

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

func TestArchivePath(t *testing.T) {
	got := ArchivePath("/srv/encrypted", "census", "2020", 42)
	assert.Equal(t, filepath.Join("/srv/encrypted", "census", "2020_42.zip.gpg"), got)
}

func TestNewJob(t *testing.T) {
	req := &model.Request{ID: 7, RequestingUserID: 3, DataModelID: 9, Dataset: "2020", RequestType: model.RequestTypePII}
	dm := &model.DataModel{ID: 9, DisplayName: "Census", FileSafeName: "census"}

	job := NewJob("/root", req, dm)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, int64(3), job.UserID)
	assert.Equal(t, int64(9), job.DataModelID)
	assert.Equal(t, "census", job.DataModelFileSafeName)
	assert.Equal(t, filepath.Join("/root", "census", "2020_3.zip.gpg"), job.ArchivePath)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encrypt.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return "/bin/sh " + path
}

func newTestGateway(t *testing.T, script string, timeout time.Duration) *CommandGateway {
	t.Helper()
	g, err := NewCommandGateway(CommandConfig{
		Command:              writeScript(t, script),
		EncryptedDatasetRoot: "/srv/encrypted",
		Timeout:              timeout,
	}, zap.NewNop())
	require.NoError(t, err)
	return g
}

func testJob() Job {
	return Job{
		ID:                    uuid.New(),
		UserID:                3,
		DataModelID:           9,
		DataModelFileSafeName: "census",
		Dataset:               "2020",
		RequestType:           model.RequestTypeNonPII,
		ArchivePath:           "/srv/encrypted/census/2020_3.zip.gpg",
	}
}

func TestCommandGatewaySuccess(t *testing.T) {
	g := newTestGateway(t, `echo "$1 $2 $3 $4 $ENCRYPT_OUTPUT_PATH $DATA_MODEL_FILE_SAFE_NAME $ENCRYPT_JOB_ID"`, time.Minute)
	job := testJob()

	res, err := g.Encrypt(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, job.ArchivePath, res.ArchivePath)
	assert.Contains(t, res.Stdout, "3 9 2020 non_pii /srv/encrypted/census/2020_3.zip.gpg census")
	assert.Contains(t, res.Stdout, job.ID.String())
	assert.Contains(t, res.Command, "3 9 2020 non_pii")
}

func TestCommandGatewayNonZeroExit(t *testing.T) {
	g := newTestGateway(t, `echo partial; exit 3`, time.Minute)

	_, err := g.Encrypt(context.Background(), testJob())
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, failure.ExitCode)
	assert.Equal(t, "partial\n", failure.Stdout)
	assert.Contains(t, failure.Command, "encrypt.sh 3 9 2020 non_pii")
	assert.Error(t, failure.Err)
}

func TestCommandGatewayStderrIsFailure(t *testing.T) {
	g := newTestGateway(t, `echo "gpg: no public key" >&2; exit 0`, time.Minute)

	_, err := g.Encrypt(context.Background(), testJob())

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 0, failure.ExitCode)
	assert.Nil(t, failure.Err)
	assert.Equal(t, "gpg: no public key\n", failure.Stderr)
	assert.Contains(t, failure.Error(), "wrote to stderr")
}

func TestCommandGatewayTimeout(t *testing.T) {
	g := newTestGateway(t, `exec sleep 5`, 100*time.Millisecond)

	_, err := g.Encrypt(context.Background(), testJob())

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewCommandGatewayEmpty(t *testing.T) {
	_, err := NewCommandGateway(CommandConfig{Command: "   "}, zap.NewNop())
	require.Error(t, err)
}
