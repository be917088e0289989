package helmrepo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

type recordRunner struct {
	calls []string
	fail  string
}

func (r *recordRunner) Run(_ context.Context, c shell.Cmd) (shell.Result, error) {
	joined := strings.Join(c.Argv, " ")
	r.calls = append(r.calls, joined)
	if r.fail != "" && strings.HasPrefix(joined, r.fail) {
		return shell.Result{ExitCode: 1, Stderr: "helm error"}, nil
	}
	return shell.Result{}, nil
}

func writeChart(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifest := "apiVersion: v2\nname: " + name + "\nversion: 0.1.0\n"
	if err := os.WriteFile(filepath.Join(dir, "Chart.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("tgz"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestPackageAndIndexSequence(t *testing.T) {
	chartDir := writeChart(t, "widget")
	outDir := filepath.Join(t.TempDir(), "docs")
	r := &recordRunner{}
	p := NewPackager(r)

	_, err := p.PackageAndIndex(context.Background(), chartDir, outDir, "https://acme.github.io/widget")
	if err != nil {
		t.Fatalf("package and index: %v", err)
	}

	want := []string{
		"helm lint " + chartDir,
		"helm package " + chartDir + " -d " + outDir,
		"helm repo index " + outDir + " --url https://acme.github.io/widget",
	}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v", r.calls)
	}
	for i, w := range want {
		if r.calls[i] != w {
			t.Errorf("call %d = %q, want %q", i, r.calls[i], w)
		}
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestPackageAndIndexLintFailureIsFatal(t *testing.T) {
	chartDir := writeChart(t, "widget")
	r := &recordRunner{fail: "helm lint"}
	p := NewPackager(r)

	_, err := p.PackageAndIndex(context.Background(), chartDir, t.TempDir(), "https://x")
	if err == nil {
		t.Fatal("lint failure must be fatal")
	}
	for _, c := range r.calls {
		if strings.HasPrefix(c, "helm package") {
			t.Error("package ran after failed lint")
		}
	}
}

func TestNewestArchivePicksLatestMatching(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "widget-20240101-000000.tgz"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "widget-20240102-000000.tgz"), now.Add(-1*time.Hour))
	touch(t, filepath.Join(dir, "other-9.9.9.tgz"), now)

	if got := NewestArchive(dir, "widget"); got != "widget-20240102-000000.tgz" {
		t.Errorf("newest = %q", got)
	}
}

func TestNewestArchiveNoMatchIsEmpty(t *testing.T) {
	if got := NewestArchive(t.TempDir(), "widget"); got != "" {
		t.Errorf("newest = %q, want empty", got)
	}
}
