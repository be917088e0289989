// Package docker drives the container toolchain for the publish pipeline:
// registry login, image build, image push, and the optional compose
// teardown before a build.
package docker

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

// Client wraps docker CLI invocations.
type Client struct {
	Runner shell.Runner
}

// NewClient creates a Client using the given runner.
func NewClient(r shell.Runner) *Client {
	return &Client{Runner: r}
}

// ValidateReference checks that repo:tag forms a syntactically valid image
// reference and returns it. Build is never attempted against a reference
// the registry would reject.
func ValidateReference(repo, tag string) (string, error) {
	ref := fmt.Sprintf("%s:%s", repo, tag)
	if _, err := name.NewTag(ref); err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	return ref, nil
}

// Login authenticates to the registry. The token goes to the CLI's stdin
// via --password-stdin so it never appears in an argument vector or a
// process listing.
func (c *Client) Login(ctx context.Context, registry, username, token string) error {
	_, err := shell.RunChecked(ctx, c.Runner, shell.Cmd{
		Argv:  []string{"docker", "login", registry, "-u", username, "--password-stdin"},
		Stdin: token,
	})
	if err != nil {
		return fmt.Errorf("logging in to %s: %w", registry, err)
	}
	return nil
}

// Build builds the image from contextDir, tagged with ref. dockerfile may
// be empty to use the context's default.
func (c *Client) Build(ctx context.Context, ref, contextDir, dockerfile string) error {
	argv := []string{"docker", "build"}
	if dockerfile != "" {
		argv = append(argv, "-f", dockerfile)
	}
	argv = append(argv, "-t", ref, contextDir)

	if _, err := shell.RunChecked(ctx, c.Runner, shell.Cmd{Argv: argv}); err != nil {
		return fmt.Errorf("building %s: %w", ref, err)
	}
	return nil
}

// Push pushes the tagged reference.
func (c *Client) Push(ctx context.Context, ref string) error {
	if _, err := shell.RunChecked(ctx, c.Runner, shell.Cmd{Argv: []string{"docker", "push", ref}}); err != nil {
		return fmt.Errorf("pushing %s: %w", ref, err)
	}
	return nil
}

// BuildAndPush builds and then pushes ref. A build failure aborts before
// any push is attempted; transient registry failures surface to the
// operator rather than being retried, since a partial layer upload makes
// blind retry unsafe.
func (c *Client) BuildAndPush(ctx context.Context, ref, contextDir, dockerfile string) error {
	if err := c.Build(ctx, ref, contextDir, dockerfile); err != nil {
		return err
	}
	return c.Push(ctx, ref)
}
