package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/listings/types"
	"github.com/mattn/go-isatty"
)

// errNoTerminal is returned when a confirmation is needed but nobody can answer it.
var errNoTerminal = errors.New("stdin is not a terminal")

// promptConfirmer asks y/N questions on out and reads answers from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// Confirm implements types.Confirmer. Anything but y or yes declines,
// and so does end of input.
func (c *promptConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(c.out)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// newConfirmer picks how confirmations are answered. --yes approves
// everything; a redirected stdin fails every prompt with errNoTerminal;
// any other reader gets an interactive prompt.
func newConfirmer(yes bool, in io.Reader, out io.Writer) types.Confirmer {
	if yes {
		return types.AlwaysConfirm
	}
	if f, ok := in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return types.ConfirmFunc(func(prompt string) (bool, error) {
			return false, fmt.Errorf("%w: cannot ask %q", errNoTerminal, prompt)
		})
	}
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}
