package provision

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Runner executes an external command and returns its combined output
type Runner interface {
	Run(ctx context.Context, command string, args ...string) ([]byte, error)
}

// LocalRunner runs commands on this machine
type LocalRunner struct {
	// Dir is the working directory, empty means the current one
	Dir string
	// Output, when set, receives the command output while it runs
	Output io.Writer
}

// Run executes command and waits for it to finish
func (r *LocalRunner) Run(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = r.Dir

	var buf bytes.Buffer
	var out io.Writer = &buf
	if r.Output != nil {
		out = io.MultiWriter(r.Output, &buf)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	// Arguments are left out of the error, they carry passwords
	if err := cmd.Run(); err != nil {
		return buf.Bytes(), errors.Wrapf(err, "failed to execute '%s': %s", command, bytes.TrimSpace(buf.Bytes()))
	}

	return buf.Bytes(), nil
}
