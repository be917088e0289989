// Package gitver resolves version metadata from git tags. The publish
// pipeline uses it for the chart's appVersion default: when HEAD sits on a
// semver tag that version describes the application better than the
// timestamp image tag does.
package gitver

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

// Info holds resolved version metadata.
type Info struct {
	Version   string // "1.2.3", "1.2.3-rc.1", or "" when no semver tag exists
	SHA       string // short HEAD SHA
	Branch    string
	IsRelease bool // HEAD is exactly at the tag
}

// Detect reads version info from the repository at root. Absence of tags
// is not an error; Version is simply empty.
func Detect(ctx context.Context, r shell.Runner, root string) (*Info, error) {
	v := &Info{}

	sha, err := gitOut(ctx, r, root, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	v.SHA = sha

	if branch, err := gitOut(ctx, r, root, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		v.Branch = branch
	}

	tag, err := gitOut(ctx, r, root, "describe", "--tags", "--abbrev=0")
	if err != nil {
		return v, nil // no tags
	}

	parsed, perr := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if perr != nil {
		return v, nil // non-semver tag — nothing usable for appVersion
	}
	v.Version = parsed.String()

	if exact, err := gitOut(ctx, r, root, "describe", "--tags", "--exact-match"); err == nil && exact != "" {
		v.IsRelease = true
	}
	return v, nil
}

// AppVersion picks the appVersion for the chart manifest: the exact
// release version when HEAD is tagged, otherwise the image tag the run is
// publishing.
func (v *Info) AppVersion(imageTag string) string {
	if v != nil && v.IsRelease && v.Version != "" {
		return v.Version
	}
	return imageTag
}

func gitOut(ctx context.Context, r shell.Runner, dir string, args ...string) (string, error) {
	res, err := shell.RunChecked(ctx, r, shell.Cmd{
		Argv: append([]string{"git"}, args...),
		Dir:  dir,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
