// Package shell runs the external tools the publish pipeline depends on
// (git, docker, helm). Commands are argv-based — nothing is ever passed
// through a shell — and both output streams are captured in full before
// the caller proceeds. Secrets enter a process only via Stdin.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes a single external invocation.
type Cmd struct {
	Argv  []string
	Dir   string // working directory; empty = inherit
	Stdin string // piped to the process; used for credentials
}

// Result carries the captured outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandError is a command that exited non-zero where the caller did not
// tolerate failure. It keeps the full command text and both streams so the
// operator can diagnose without re-running.
type CommandError struct {
	Argv     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed (%d): %s\nstdout:\n%s\nstderr:\n%s",
		e.ExitCode, strings.Join(e.Argv, " "), e.Stdout, e.Stderr)
}

// Runner executes external commands. The single-method interface exists so
// tests can substitute a fake without a docker/helm/git toolchain.
type Runner interface {
	// Run executes the command and blocks until it finishes. A non-zero
	// exit is not an error here — callers that can't tolerate failure use
	// RunChecked. The returned error covers spawn failures only (binary
	// missing, dir unusable).
	Run(ctx context.Context, c Cmd) (Result, error)
}

// ExecRunner is the real Runner backed by os/exec. The process inherits
// the operator's environment; this tool runs in an operator-trusted
// context and external tools need the ambient credentials and config.
type ExecRunner struct {
	Verbose bool
	Trace   io.Writer // where "exec: ..." lines go when Verbose
}

// NewRunner creates an ExecRunner tracing to stderr.
func NewRunner(verbose bool) *ExecRunner {
	return &ExecRunner{Verbose: verbose, Trace: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, c Cmd) (Result, error) {
	if len(c.Argv) == 0 {
		return Result{}, fmt.Errorf("shell: empty command")
	}

	if r.Verbose && r.Trace != nil {
		fmt.Fprintf(r.Trace, "exec: %s\n", strings.Join(c.Argv, " "))
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			// Spawn failure — no exit code to report.
			return Result{ExitCode: -1}, fmt.Errorf("shell: starting %s: %w", c.Argv[0], err)
		}
	}
	return Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// RunChecked runs the command and converts a non-zero exit into a
// *CommandError. This is the default mode for pipeline steps; Run is for
// callers that probe and inspect the exit code themselves.
func RunChecked(ctx context.Context, r Runner, c Cmd) (Result, error) {
	res, err := r.Run(ctx, c)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &CommandError{
			Argv:     c.Argv,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// LookPath reports whether the named tool is on PATH. Every required tool
// is probed before the pipeline does any work.
func LookPath(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("required tool %q not found on PATH", tool)
	}
	return nil
}
