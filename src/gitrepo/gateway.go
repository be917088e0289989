package gitrepo

import (
	"context"
	"fmt"
	"strings"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

// Gateway performs the remote/branch/commit/push sequence for one
// repository. Every operation delegates to the git CLI via the Runner.
type Gateway struct {
	Runner shell.Runner
	Root   string // repository root; working directory for every command
	Remote string // remote name, usually "origin"
}

// NewGateway creates a Gateway for the repository at root.
func NewGateway(r shell.Runner, root string) *Gateway {
	return &Gateway{Runner: r, Root: root, Remote: "origin"}
}

func (g *Gateway) git(ctx context.Context, args ...string) (shell.Result, error) {
	return shell.RunChecked(ctx, g.Runner, shell.Cmd{
		Argv: append([]string{"git"}, args...),
		Dir:  g.Root,
	})
}

// EnsureRemote adds the remote if it is not configured. An existing remote
// is left untouched even when its URL differs — silently rewriting where
// the operator pushes is worse than a mismatch they can see.
func (g *Gateway) EnsureRemote(ctx context.Context, url string) (added bool, err error) {
	res, err := g.git(ctx, "remote")
	if err != nil {
		return false, fmt.Errorf("listing remotes: %w", err)
	}
	for _, name := range strings.Fields(res.Stdout) {
		if name == g.Remote {
			return false, nil
		}
	}
	if _, err := g.git(ctx, "remote", "add", g.Remote, url); err != nil {
		return false, fmt.Errorf("adding remote %s: %w", g.Remote, err)
	}
	return true, nil
}

// CurrentBranch returns the abbreviated name of HEAD.
func (g *Gateway) CurrentBranch(ctx context.Context) (string, error) {
	res, err := g.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("reading current branch: %w", err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// EnsureBranch switches to the named branch, creating or resetting the
// branch pointer at HEAD when necessary. checkout -B moves a ref, never
// history, so commits on other branches are untouched.
func (g *Gateway) EnsureBranch(ctx context.Context, name string) (switched bool, err error) {
	current, err := g.CurrentBranch(ctx)
	if err != nil {
		return false, err
	}
	if current == name {
		return false, nil
	}
	if _, err := g.git(ctx, "checkout", "-B", name); err != nil {
		return false, fmt.Errorf("switching to branch %s: %w", name, err)
	}
	return true, nil
}

// CommitAndPush stages everything, commits with the given message, and
// pushes HEAD with upstream tracking. A commit that fails because the tree
// is clean is tolerated — a rerun with no net change must not abort the
// publish — but any other commit failure (hook rejection, missing
// identity) is fatal. Push failures are always fatal: without the push the
// publish is incomplete.
func (g *Gateway) CommitAndPush(ctx context.Context, message string) (committed bool, err error) {
	if _, err := g.git(ctx, "add", "-A"); err != nil {
		return false, fmt.Errorf("staging changes: %w", err)
	}

	res, err := g.Runner.Run(ctx, shell.Cmd{
		Argv: []string{"git", "commit", "-m", message},
		Dir:  g.Root,
	})
	if err != nil {
		return false, fmt.Errorf("running git commit: %w", err)
	}
	switch {
	case res.ExitCode == 0:
		committed = true
	case nothingToCommit(res):
		committed = false
	default:
		return false, &shell.CommandError{
			Argv:     []string{"git", "commit", "-m", message},
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}

	if _, err := g.git(ctx, "push", "-u", g.Remote, "HEAD"); err != nil {
		return committed, fmt.Errorf("pushing to %s: %w", g.Remote, err)
	}
	return committed, nil
}

// RemoteURL returns the fetch URL of the configured remote, or "" when the
// remote does not exist.
func (g *Gateway) RemoteURL(ctx context.Context) string {
	res, err := g.Runner.Run(ctx, shell.Cmd{
		Argv: []string{"git", "remote", "get-url", g.Remote},
		Dir:  g.Root,
	})
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// nothingToCommit recognizes git's clean-tree commit refusal. Matching
// git's own phrasing is what distinguishes the benign outcome from a real
// commit failure.
func nothingToCommit(res shell.Result) bool {
	out := res.Stdout + res.Stderr
	return strings.Contains(out, "nothing to commit") ||
		strings.Contains(out, "nothing added to commit")
}
