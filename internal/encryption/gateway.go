// Package encryption wraps the external command that packages and encrypts
// a dataset for a single requester.
package encryption

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

// ArchiveExt is appended to every encrypted archive name.
const ArchiveExt = ".zip.gpg"

// ErrPoolStopped is returned for jobs submitted after the pool shut down.
var ErrPoolStopped = errors.New("encryption pool stopped")

// Gateway encrypts one dataset for one requester. Implementations make no
// retry decisions; a failed call leaves nothing the caller has to undo.
type Gateway interface {
	Encrypt(ctx context.Context, job Job) (*Result, error)
}

// Job identifies what to encrypt and where the archive is expected to appear.
type Job struct {
	ID                    uuid.UUID
	UserID                int64
	DataModelID           int64
	DataModelFileSafeName string
	Dataset               string
	RequestType           model.RequestType
	ArchivePath           string
}

// NewJob builds a job for the given request and computes its archive path.
func NewJob(root string, req *model.Request, dm *model.DataModel) Job {
	return Job{
		ID:                    uuid.New(),
		UserID:                req.RequestingUserID,
		DataModelID:           dm.ID,
		DataModelFileSafeName: dm.FileSafeName,
		Dataset:               req.Dataset,
		RequestType:           req.RequestType,
		ArchivePath:           ArchivePath(root, dm.FileSafeName, req.Dataset, req.RequestingUserID),
	}
}

// Result describes a successful encryption run.
type Result struct {
	ArchivePath string
	Command     string
	Stdout      string
	Stderr      string
}

// Failure carries everything needed to diagnose a failed run.
// ExitCode is -1 when the process never reported one.
type Failure struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (f *Failure) Error() string {
	switch {
	case f.Err != nil && f.Command != "":
		return fmt.Sprintf("encryption command %q failed (exit %d): %v", f.Command, f.ExitCode, f.Err)
	case f.Err != nil:
		return fmt.Sprintf("encryption failed: %v", f.Err)
	default:
		return fmt.Sprintf("encryption command %q wrote to stderr (exit %d): %s", f.Command, f.ExitCode, f.Stderr)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ArchivePath returns <root>/<fileSafeName>/<dataset>_<userID>.zip.gpg.
// Existing archives are located by this name, so it must not change.
func ArchivePath(root, fileSafeName, dataset string, userID int64) string {
	name := dataset + "_" + strconv.FormatInt(userID, 10) + ArchiveExt
	return filepath.Join(root, fileSafeName, name)
}
