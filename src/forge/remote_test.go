package forge

import "testing"

func TestParseRemote(t *testing.T) {
	cases := []struct {
		url   string
		host  string
		owner string
		repo  string
	}{
		{"git@github.com:acme/widget.git", "github.com", "acme", "widget"},
		{"git@github.com:acme/widget", "github.com", "acme", "widget"},
		{"ssh://git@gitlab.prplanit.com:precisionplanit/chartferry.git", "gitlab.prplanit.com", "precisionplanit", "chartferry"},
		{"https://github.com/acme/widget.git", "github.com", "acme", "widget"},
		{"https://github.com/acme/widget", "github.com", "acme", "widget"},
		{"http://git.internal/devops/tools", "git.internal", "devops", "tools"},
	}

	for _, tc := range cases {
		o, err := ParseRemote(tc.url)
		if err != nil {
			t.Errorf("%s: %v", tc.url, err)
			continue
		}
		if o.Host != tc.host || o.Owner != tc.owner || o.Repo != tc.repo {
			t.Errorf("%s = %+v, want %s/%s/%s", tc.url, o, tc.host, tc.owner, tc.repo)
		}
	}
}

func TestParseRemoteRejectsGarbage(t *testing.T) {
	for _, url := range []string{"", "not a url", "ftp://host/x/y"} {
		if _, err := ParseRemote(url); err == nil {
			t.Errorf("%q: want error", url)
		}
	}
}

func TestPagesURL(t *testing.T) {
	gh := Origin{Host: "github.com", Owner: "acme", Repo: "widget"}
	if got := gh.PagesURL(); got != "https://acme.github.io/widget" {
		t.Errorf("pages url = %q", got)
	}

	gl := Origin{Host: "gitlab.prplanit.com", Owner: "a", Repo: "b"}
	if got := gl.PagesURL(); got != "" {
		t.Errorf("non-github pages url = %q, want empty", got)
	}
}

func TestImageRepo(t *testing.T) {
	o := Origin{Host: "github.com", Owner: "Acme", Repo: "Widget"}
	if got := o.ImageRepo("ghcr.io"); got != "ghcr.io/acme/widget" {
		t.Errorf("image repo = %q", got)
	}
}
