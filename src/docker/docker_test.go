package docker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

type recordRunner struct {
	calls []shell.Cmd
	fail  string // argv prefix that should exit non-zero
}

func (r *recordRunner) Run(_ context.Context, c shell.Cmd) (shell.Result, error) {
	r.calls = append(r.calls, c)
	if r.fail != "" && strings.HasPrefix(strings.Join(c.Argv, " "), r.fail) {
		return shell.Result{ExitCode: 1, Stderr: "boom"}, nil
	}
	return shell.Result{}, nil
}

func TestValidateReference(t *testing.T) {
	ok := []struct{ repo, tag string }{
		{"ghcr.io/acme/widget", "20240101-000000"},
		{"docker.io/library/alpine", "3.20"},
		{"registry.local:5000/team/app", "v1"},
	}
	for _, tc := range ok {
		ref, err := ValidateReference(tc.repo, tc.tag)
		if err != nil {
			t.Errorf("%s:%s: %v", tc.repo, tc.tag, err)
		}
		if ref != tc.repo+":"+tc.tag {
			t.Errorf("ref = %q", ref)
		}
	}

	bad := []struct{ repo, tag string }{
		{"ghcr.io/acme/widget", "has space"},
		{"ghcr.io/UPPER/Widget", "ok"},
		{"ghcr.io/acme/widget", ""},
	}
	for _, tc := range bad {
		if _, err := ValidateReference(tc.repo, tc.tag); err == nil {
			t.Errorf("%s:%s: want error", tc.repo, tc.tag)
		}
	}
}

func TestLoginPipesTokenToStdin(t *testing.T) {
	r := &recordRunner{}
	c := NewClient(r)

	if err := c.Login(context.Background(), "ghcr.io", "acme", "tok3n"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("calls = %d", len(r.calls))
	}
	call := r.calls[0]
	if call.Stdin != "tok3n" {
		t.Errorf("token not piped: %q", call.Stdin)
	}
	joined := strings.Join(call.Argv, " ")
	if strings.Contains(joined, "tok3n") {
		t.Errorf("token leaked into argv: %s", joined)
	}
	if !strings.Contains(joined, "--password-stdin") {
		t.Errorf("argv = %s", joined)
	}
}

func TestBuildAndPushOrdering(t *testing.T) {
	r := &recordRunner{}
	c := NewClient(r)

	err := c.BuildAndPush(context.Background(), "ghcr.io/acme/widget:t1", "/repo", "/repo/Dockerfile.local")
	if err != nil {
		t.Fatalf("build and push: %v", err)
	}
	if len(r.calls) != 2 {
		t.Fatalf("calls = %d, want build then push", len(r.calls))
	}
	build := strings.Join(r.calls[0].Argv, " ")
	if !strings.Contains(build, "docker build") || !strings.Contains(build, "-f /repo/Dockerfile.local") {
		t.Errorf("build argv = %s", build)
	}
	push := strings.Join(r.calls[1].Argv, " ")
	if push != "docker push ghcr.io/acme/widget:t1" {
		t.Errorf("push argv = %s", push)
	}
}

func TestBuildFailureAbortsBeforePush(t *testing.T) {
	r := &recordRunner{fail: "docker build"}
	c := NewClient(r)

	err := c.BuildAndPush(context.Background(), "ghcr.io/acme/widget:t1", "/repo", "")
	if err == nil {
		t.Fatal("want build failure")
	}
	for _, call := range r.calls {
		if call.Argv[1] == "push" {
			t.Fatal("push attempted after failed build")
		}
	}
}

func TestComposeDownSkipsWhenAbsent(t *testing.T) {
	r := &recordRunner{}
	c := NewClient(r)

	stopped, err := c.ComposeDownIfPresent(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("compose down: %v", err)
	}
	if stopped || len(r.calls) != 0 {
		t.Error("no compose file: must be a no-op")
	}
}

func TestComposeDownRunsWhenPresent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte("services: {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := &recordRunner{}
	c := NewClient(r)

	stopped, err := c.ComposeDownIfPresent(context.Background(), dir)
	if err != nil {
		t.Fatalf("compose down: %v", err)
	}
	if !stopped {
		t.Error("want stopped=true")
	}
	joined := strings.Join(r.calls[0].Argv, " ")
	if joined != "docker compose down --remove-orphans" {
		t.Errorf("argv = %s", joined)
	}
	if r.calls[0].Dir != dir {
		t.Errorf("dir = %s", r.calls[0].Dir)
	}
}
