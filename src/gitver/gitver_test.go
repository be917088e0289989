package gitver

import (
	"context"
	"strings"
	"testing"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

type scriptRunner struct {
	responses map[string]shell.Result
}

func (s *scriptRunner) Run(_ context.Context, c shell.Cmd) (shell.Result, error) {
	key := strings.Join(c.Argv, " ")
	var best string
	found := false
	for prefix := range s.responses {
		if strings.HasPrefix(key, prefix) && len(prefix) >= len(best) {
			best, found = prefix, true
		}
	}
	if found {
		return s.responses[best], nil
	}
	return shell.Result{ExitCode: 1, Stderr: "fatal"}, nil
}

func TestDetectOnReleaseTag(t *testing.T) {
	r := &scriptRunner{responses: map[string]shell.Result{
		"git rev-parse --short=7 HEAD":      {Stdout: "abc1234\n"},
		"git rev-parse --abbrev-ref HEAD":   {Stdout: "main\n"},
		"git describe --tags --abbrev=0":    {Stdout: "v1.4.0\n"},
		"git describe --tags --exact-match": {Stdout: "v1.4.0\n"},
	}}

	v, err := Detect(context.Background(), r, "/repo")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if v.Version != "1.4.0" || !v.IsRelease || v.SHA != "abc1234" || v.Branch != "main" {
		t.Errorf("info = %+v", v)
	}
	if got := v.AppVersion("20240101-000000"); got != "1.4.0" {
		t.Errorf("app version = %q, want release version", got)
	}
}

func TestDetectWithoutTags(t *testing.T) {
	r := &scriptRunner{responses: map[string]shell.Result{
		"git rev-parse --short=7 HEAD":    {Stdout: "abc1234\n"},
		"git rev-parse --abbrev-ref HEAD": {Stdout: "main\n"},
	}}

	v, err := Detect(context.Background(), r, "/repo")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if v.Version != "" || v.IsRelease {
		t.Errorf("info = %+v, want empty version", v)
	}
	if got := v.AppVersion("20240101-000000"); got != "20240101-000000" {
		t.Errorf("app version = %q, want image tag fallback", got)
	}
}

func TestDetectNonSemverTag(t *testing.T) {
	r := &scriptRunner{responses: map[string]shell.Result{
		"git rev-parse --short=7 HEAD":   {Stdout: "abc1234\n"},
		"git describe --tags --abbrev=0": {Stdout: "nightly-build\n"},
	}}

	v, err := Detect(context.Background(), r, "/repo")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if v.Version != "" {
		t.Errorf("non-semver tag should not produce a version, got %q", v.Version)
	}
}

func TestAppVersionNilInfo(t *testing.T) {
	var v *Info
	if got := v.AppVersion("t"); got != "t" {
		t.Errorf("nil info app version = %q", got)
	}
}
