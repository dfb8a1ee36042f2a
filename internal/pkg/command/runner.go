package command

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes external tools and captures their output.
type Runner interface {
	Run(ctx context.Context, binary string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs binaries through os/exec. The process is killed when ctx
// is done.
type ExecRunner struct{}

// Run executes binary with args and returns captured stdout and stderr. A
// non-zero exit is reported as *exec.ExitError.
func (ExecRunner) Run(ctx context.Context, binary string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

// ExitCode extracts the process exit code from a Run error, -1 when the
// process did not start or was killed.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// Diagnostic picks the most useful text a failed tool produced.
func Diagnostic(stdout, stderr []byte) string {
	if d := bytes.TrimSpace(stderr); len(d) > 0 {
		return string(d)
	}
	return string(bytes.TrimSpace(stdout))
}
