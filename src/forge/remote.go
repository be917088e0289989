// Package forge parses git remote URLs into the owner/repo coordinates the
// publish pipeline derives its defaults from (image repository, static
// chart-repo URL).
package forge

import (
	"fmt"
	"regexp"
	"strings"
)

// Origin identifies where a repository is hosted.
type Origin struct {
	Host  string // e.g. "github.com"
	Owner string
	Repo  string
}

var (
	// git@host:owner/repo.git
	sshRe = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/(.+?)(?:\.git)?$`)
	// https://host/owner/repo(.git)
	httpRe = regexp.MustCompile(`^https?://([^/]+)/([^/]+)/(.+?)(?:\.git)?$`)
)

// ParseRemote extracts host, owner, and repo from an SSH or HTTP(S) git
// remote URL.
func ParseRemote(url string) (Origin, error) {
	url = strings.TrimSpace(url)
	for _, re := range []*regexp.Regexp{sshRe, httpRe} {
		if m := re.FindStringSubmatch(url); m != nil {
			return Origin{Host: m[1], Owner: m[2], Repo: m[3]}, nil
		}
	}
	return Origin{}, fmt.Errorf("cannot parse remote URL: %q", url)
}

// PagesURL returns the static-hosting base URL for the chart repository.
// Only GitHub Pages has a derivable convention; other hosts return ""
// and the operator supplies the URL explicitly.
func (o Origin) PagesURL() string {
	if o.Host == "github.com" {
		return fmt.Sprintf("https://%s.github.io/%s", o.Owner, o.Repo)
	}
	return ""
}

// ImageRepo returns the default image repository on the given registry.
func (o Origin) ImageRepo(registry string) string {
	return fmt.Sprintf("%s/%s/%s", registry, strings.ToLower(o.Owner), strings.ToLower(o.Repo))
}
