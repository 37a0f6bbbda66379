// Package hooks runs the user's post-save command.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// DefaultTimeout bounds a hook that sets no timeout of its own.
const DefaultTimeout = 30 * time.Second

// Environment variables passed to the hook.
const (
	EnvEvent = "TASKGRID_EVENT"
	EnvKey   = "TASKGRID_KEY"
)

// Options describes one hook invocation.
type Options struct {
	// Command is run through the platform shell. Empty means no hook.
	Command string
	// Event names the mutation that triggered the save.
	Event string
	// Key is the storage key that was written.
	Key string
	// Snapshot is fed to the hook on stdin.
	Snapshot []byte
	WorkDir  string
	Timeout  time.Duration
}

// Result reports what happened when the hook ran.
type Result struct {
	Ran      bool
	ExitCode int
	Output   string
	Duration time.Duration
}

// Invoke runs the hook command and waits for it. A non-zero exit is
// returned as an error together with the populated Result.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	var result Result
	if strings.TrimSpace(opts.Command) == "" {
		return result, nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(ctx, opts.Command)
	cmd.Dir = opts.WorkDir
	cmd.Env = append(os.Environ(),
		EnvEvent+"="+opts.Event,
		EnvKey+"="+opts.Key,
	)
	cmd.Stdin = bytes.NewReader(opts.Snapshot)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	result.Ran = true
	result.Duration = time.Since(start)
	result.Output = strings.TrimSpace(out.String())
	result.ExitCode = exitCodeFromError(err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("hook %q: %w", opts.Event, ctxErr)
		}
		if result.Output != "" {
			return result, fmt.Errorf("hook %q exited with code %d: %s", opts.Event, result.ExitCode, firstLine(result.Output))
		}
		return result, fmt.Errorf("hook %q: %w", opts.Event, err)
	}
	return result, nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// exitCodeFromError returns 0 for nil, the process exit code for an
// *exec.ExitError and -1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
