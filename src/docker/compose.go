package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

// composeFiles are the definition names docker compose recognizes, in its
// own lookup order.
var composeFiles = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// ComposeFile returns the compose definition present in dir, or "" when
// none exists.
func ComposeFile(dir string) string {
	for _, f := range composeFiles {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return f
		}
	}
	return ""
}

// ComposeDownIfPresent stops the local compose stack in dir, removing
// orphans. A missing compose definition is a no-op, not an error — most
// runs have no local stack to tear down. When a stack exists, failure is
// fatal: leftover containers can hold ports or volumes the build needs.
func (c *Client) ComposeDownIfPresent(ctx context.Context, dir string) (stopped bool, err error) {
	if ComposeFile(dir) == "" {
		return false, nil
	}
	_, err = shell.RunChecked(ctx, c.Runner, shell.Cmd{
		Argv: []string{"docker", "compose", "down", "--remove-orphans"},
		Dir:  dir,
	})
	if err != nil {
		return false, fmt.Errorf("stopping compose stack in %s: %w", dir, err)
	}
	return true, nil
}
