package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter asks for missing input on stderr. Terminal input hides secrets;
// piped input is read line by line.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
}

func (p *prompter) line(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)

	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	text, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(text, "\r\n"), nil
}

func (p *prompter) secret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}

	_, _ = fmt.Fprint(p.out, label)
	raw, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func (p *prompter) confirm(label string) (bool, error) {
	answer, err := p.line(label + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// fill prompts for value only when the flag left it empty.
func (p *prompter) fill(value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}

	var err error
	if secret {
		*value, err = p.secret(label)
	} else {
		*value, err = p.line(label)
	}
	return err
}

// askLocationPermission stands in for the device permission dialog. Without
// a terminal there is nobody to ask, which counts as a denial.
func askLocationPermission(ctx context.Context, in io.Reader, out io.Writer) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !isTerminal(in) {
		return false, nil
	}

	p := &prompter{in: in, out: out}
	return p.confirm("Allow Park Yoga to use your location?")
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
