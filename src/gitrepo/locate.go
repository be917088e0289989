// Package gitrepo wraps the git operations the publish pipeline needs:
// locating the repository root and the remote/branch/commit/push sequence.
// Mutating operations go through the git CLI so the operator's ambient
// credentials, hooks, and config apply exactly as they would by hand.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

// ErrNotARepository is returned when the start directory is not inside a
// git repository.
var ErrNotARepository = errors.New("not inside a git repository")

// maxWalkUp bounds the upward directory walk so a detached or looping
// filesystem can't stall root detection.
const maxWalkUp = 10

// Locate resolves the repository root from an arbitrary start directory.
// It trusts `git rev-parse --show-toplevel` when that succeeds, then falls
// back to walking upward looking for repository metadata. Supports running
// the publisher from any subdirectory of the project.
func Locate(ctx context.Context, r shell.Runner, start string) (string, error) {
	res, err := r.Run(ctx, shell.Cmd{
		Argv: []string{"git", "rev-parse", "--show-toplevel"},
		Dir:  start,
	})
	if err == nil && res.ExitCode == 0 {
		if top := strings.TrimSpace(res.Stdout); top != "" {
			return top, nil
		}
	}

	cur, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for i := 0; i < maxWalkUp; i++ {
		if _, err := git.PlainOpen(cur); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return "", fmt.Errorf("%w (start=%s)", ErrNotARepository, start)
}
