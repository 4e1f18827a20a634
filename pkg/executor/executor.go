// Package executor runs a literal argument vector as a child process with a bounded wait.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single invocation.
const DefaultTimeout = 300 * time.Second

// waitDelay is how long the output pipes are drained after the child was killed.
const waitDelay = 2 * time.Second

// ErrTimedOut is returned when the child did not finish within the timeout.
// Cancellation of the caller's context is reported as a wrapped context.Canceled instead.
var ErrTimedOut = errors.New("command timed out")

// Output is the captured result of a finished child process.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Text renders the output for the caller: stdout, then stderr and a non-zero
// exit code as labelled suffixes.
func (o *Output) Text() string {
	text := o.Stdout
	if o.Stderr != "" {
		text += "\nSTDERR:\n" + o.Stderr
	}
	if o.ExitCode != 0 {
		text += fmt.Sprintf("\nExit code: %d", o.ExitCode)
	}
	if text == "" {
		return "(no output)"
	}
	return text
}

// Runner executes an argument vector.
type Runner interface {
	// Run executes argv and waits at most timeout. A non-zero exit status is
	// not an error; it is reported in Output.ExitCode.
	Run(ctx context.Context, argv []string, timeout time.Duration) (*Output, error)
}

// ExecRunner runs commands with os/exec. The child gets an empty stdin.
type ExecRunner struct {
	// Dir is the working directory of the child; empty means the current one.
	Dir string
	// Env is appended to the environment of the current process.
	Env []string
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, argv []string, timeout time.Duration) (*Output, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argument vector")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ErrTimedOut
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("command cancelled: %w", ctxErr)
	}

	out := &Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return nil, err
	}

	return out, nil
}
