package encryption

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const waitDelay = 5 * time.Second

// CommandConfig configures the external encryption executable.
type CommandConfig struct {
	// Command is split on whitespace; the first field is the executable.
	Command              string
	EncryptedDatasetRoot string
	// Timeout of zero means the command may run indefinitely.
	Timeout time.Duration
}

// CommandGateway runs the encryption executable once per job:
//
//	<command> <userID> <dataModelID> <dataset> <requestType>
//
// with ENCRYPT_JOB_ID, ENCRYPT_OUTPUT_PATH, ENCRYPTED_DATASET_ROOT and
// DATA_MODEL_FILE_SAFE_NAME in its environment.
type CommandGateway struct {
	name    string
	args    []string
	root    string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCommandGateway(cfg CommandConfig, logger *zap.Logger) (*CommandGateway, error) {
	fields := strings.Fields(cfg.Command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("encryption command is empty")
	}

	return &CommandGateway{
		name:    fields[0],
		args:    fields[1:],
		root:    cfg.EncryptedDatasetRoot,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Encrypt runs the command and treats a non-zero exit status or any output
// on stderr as failure.
func (g *CommandGateway) Encrypt(ctx context.Context, job Job) (*Result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	args := append([]string{}, g.args...)
	args = append(args,
		strconv.FormatInt(job.UserID, 10),
		strconv.FormatInt(job.DataModelID, 10),
		job.Dataset,
		string(job.RequestType),
	)
	commandLine := strings.Join(append([]string{g.name}, args...), " ")

	cmd := exec.CommandContext(ctx, g.name, args...)
	cmd.Env = append(os.Environ(),
		"ENCRYPT_JOB_ID="+job.ID.String(),
		"ENCRYPT_OUTPUT_PATH="+job.ArchivePath,
		"ENCRYPTED_DATASET_ROOT="+g.root,
		"DATA_MODEL_FILE_SAFE_NAME="+job.DataModelFileSafeName,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Дочерние процессы команды могут держать stdout после kill
	cmd.WaitDelay = waitDelay

	g.logger.Debug("Running encryption command",
		zap.String("job_id", job.ID.String()),
		zap.String("command", commandLine),
	)

	started := time.Now()
	runErr := cmd.Run()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		runErr = fmt.Errorf("timed out after %s: %w", g.timeout, ctx.Err())
	}

	if runErr != nil || stderr.Len() > 0 {
		return nil, &Failure{
			Command:  commandLine,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      runErr,
		}
	}

	g.logger.Info("Encryption command finished",
		zap.String("job_id", job.ID.String()),
		zap.String("archive_path", job.ArchivePath),
		zap.Duration("took", time.Since(started)),
	)

	return &Result{
		ArchivePath: job.ArchivePath,
		Command:     commandLine,
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
	}, nil
}
