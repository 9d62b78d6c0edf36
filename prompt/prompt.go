// Package prompt implements drivetree.Prompter on a line-oriented terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Jumpaku/go-drivetree"
	"github.com/dustin/go-humanize"
)

// Terminal asks questions on out and reads one answer per line from in.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var _ drivetree.Prompter = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ChooseNode lists the candidates and reads an id. A number is taken as a 1-based index into the list.
func (t *Terminal) ChooseNode(ctx context.Context, path drivetree.Path, candidates []drivetree.Node, rejected string) (string, error) {
	if rejected != "" {
		fmt.Fprintf(t.out, "%q does not name a candidate.\n", rejected)
	}
	fmt.Fprintf(t.out, "Multiple objects match '%s':\n", path)
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	for i, c := range candidates {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", i+1, c.ID, c.Name, describe(c), c.ModifiedTime.Format(time.DateTime))
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	answer, err := t.ask(ctx, "Choose an id: ")
	if err != nil {
		return "", err
	}
	if i, err := strconv.Atoi(answer); err == nil && i >= 1 && i <= len(candidates) {
		return string(candidates[i-1].ID), nil
	}
	return answer, nil
}

func (t *Terminal) ChooseExport(ctx context.Context, node drivetree.Node, extensions []string, rejected string) (string, error) {
	if rejected != "" {
		fmt.Fprintf(t.out, "%q is not an offered format.\n", rejected)
	}
	fmt.Fprintf(t.out, "'%s' must be converted to be downloaded:\n", node.Name)
	for i, ext := range extensions {
		fmt.Fprintf(t.out, "  %d  %s\n", i+1, ext)
	}
	return t.ask(ctx, "Choose a format: ")
}

// Confirm accepts y, yes, n and no in any case. An empty answer declines.
func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	for {
		answer, err := t.ask(ctx, message+" [y/N]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
	}
}

// ReadLine prints prompt and reads one line without its line terminator.
// It returns io.EOF when the input is closed before anything is read.
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) ask(ctx context.Context, prompt string) (string, error) {
	line, err := t.ReadLine(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func describe(n drivetree.Node) string {
	if n.IsFolder() {
		return "folder"
	}
	if n.IsAppFile() {
		return strings.TrimPrefix(n.MimeType, "application/vnd.google-apps.")
	}
	return humanize.Bytes(uint64(n.Size))
}

// AssumeYes wraps p so that every confirmation is accepted without asking.
func AssumeYes(p drivetree.Prompter) drivetree.Prompter {
	return assumeYes{Prompter: p}
}

type assumeYes struct {
	drivetree.Prompter
}

func (assumeYes) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
