// Package prompt reads interactive run inputs: plain values with a
// displayed default the operator accepts by pressing enter, and secrets
// read without echo.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from one input stream.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter over the given streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// String asks for a value, showing the default. Empty input returns the
// default.
func (p *Prompter) String(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}
	return def, nil
}

// Secret asks for a value without echoing it. When stdin is not a
// terminal (tests, pipes) it falls back to a plain line read.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s (will not echo): ", label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
