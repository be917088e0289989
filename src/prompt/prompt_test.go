package prompt

import (
	"strings"
	"testing"
)

func TestStringAcceptsDefaultOnEnter(t *testing.T) {
	var out strings.Builder
	p := New(strings.NewReader("\n"), &out)

	got, err := p.String("Image tag", "20240101-000000")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if got != "20240101-000000" {
		t.Errorf("answer = %q, want default", got)
	}
	if !strings.Contains(out.String(), "[20240101-000000]") {
		t.Errorf("default not displayed: %q", out.String())
	}
}

func TestStringReturnsTypedValue(t *testing.T) {
	var out strings.Builder
	p := New(strings.NewReader("  custom-tag  \n"), &out)

	got, err := p.String("Image tag", "default")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if got != "custom-tag" {
		t.Errorf("answer = %q", got)
	}
}

func TestSecretFallbackReadsLine(t *testing.T) {
	var out strings.Builder
	p := New(strings.NewReader("tok3n\n"), &out)

	got, err := p.Secret("Registry token")
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	if got != "tok3n" {
		t.Errorf("secret = %q", got)
	}
}
