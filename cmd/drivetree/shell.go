package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Jumpaku/go-drivetree/errors"
	"github.com/urfave/cli/v3"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// runShell reads commands line by line until the input ends or "exit" is entered.
// A failing command is reported and the shell goes on.
func runShell(ctx context.Context, cmd *cli.Command, app *application) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("unknown command '%s'", cmd.Args().First())
	}
	if app.inShell {
		return fmt.Errorf("already in a shell")
	}
	app.inShell = true
	defer func() { app.inShell = false }()

	if err := app.tree.Refresh(ctx); err != nil {
		return err
	}
	for {
		prompt := ""
		if app.tty {
			prompt = fmt.Sprintf("drivetree:%s$ ", app.sess.Cwd())
		}
		line, err := app.term.ReadLine(ctx, prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(app.out, "error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := newCommand(app).Run(ctx, append([]string{"drivetree"}, args...)); err != nil {
			fmt.Fprintln(app.out, "error:", err)
		}
	}
}

// splitArgs splits a command line into words. Single quotes keep everything literally, double quotes
// keep everything but backslash escapes, and a backslash outside quotes escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				word.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inWord {
		args = append(args, word.String())
	}
	return args, nil
}
