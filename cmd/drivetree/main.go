package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Jumpaku/go-drivetree"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApplication(os.Stdin, os.Stdout)
	defer app.close(context.Background())

	if err := newCommand(app).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "drivetree:", err)
		os.Exit(1)
	}
}

// newCommand builds the command tree operating on app. The shell builds a fresh tree for every line.
func newCommand(app *application) *cli.Command {
	return &cli.Command{
		Name:      "drivetree",
		Usage:     "Address Google Drive with paths and sync folders with the local filesystem",
		Writer:    app.out,
		ErrWriter: app.out,
		Action:    app.action(runShell),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "drivetree.yaml",
				Value:       "drivetree.yaml",
				Sources:     cli.EnvVars("DRIVETREE_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Accept every confirmation",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "Run commands interactively in one session",
				Action: app.action(runShell),
			},
			{
				Name:      "ls",
				Usage:     "List a folder",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include trashed objects"},
					&cli.BoolFlag{Name: "starred", Aliases: []string{"s"}, Usage: "Only starred objects"},
					&cli.BoolFlag{Name: "long", Aliases: []string{"l"}, Usage: "Show kind, size and modification time"},
				},
				Action: app.action(runList),
			},
			{
				Name:      "cd",
				Usage:     "Change the working folder",
				ArgsUsage: "[path]",
				Action:    app.action(runCd),
			},
			{
				Name:   "pwd",
				Usage:  "Print the working folder",
				Action: app.action(runPwd),
			},
			{
				Name:      "mkdir",
				Usage:     "Create a folder and its missing ancestors",
				ArgsUsage: "<path>",
				Action:    app.action(runMkdir),
			},
			{
				Name:      "push",
				Usage:     "Upload a local file or directory",
				ArgsUsage: "<local> [remote]",
				Flags:     transferFlags(),
				Action:    app.action(runPush),
			},
			{
				Name:      "pull",
				Usage:     "Download a remote file or folder",
				ArgsUsage: "<remote> [local]",
				Flags: append(transferFlags(),
					&cli.StringFlag{Name: "format", Usage: "Extension to export proprietary documents to, such as pdf"},
				),
				Action: app.action(runPull),
			},
			{
				Name:      "mv",
				Usage:     "Move or rename",
				ArgsUsage: "<src> <dst>",
				Action:    app.action(runMove),
			},
			{
				Name:      "rm",
				Usage:     "Move to the trash",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "delete", Aliases: []string{"d"}, Usage: "Delete permanently"},
				},
				Action: app.action(runRemove),
			},
			{
				Name:      "restore",
				Usage:     "Restore from the trash",
				ArgsUsage: "<path>",
				Action:    app.action(runRestore),
			},
			{
				Name:      "info",
				Usage:     "Show an object with its paths and permissions",
				ArgsUsage: "<path>",
				Action:    app.action(runInfo),
			},
			{
				Name:      "share",
				Usage:     "Grant or revoke access",
				ArgsUsage: "<path> [address...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "revoke", Aliases: []string{"d"}, Usage: "Revoke instead of grant"},
					&cli.BoolFlag{Name: "link", Usage: "Target anyone holding the link"},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "reader, writer or owner", Value: string(drivetree.RoleReader)},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Ignore missing targets"},
				},
				Action: app.action(runShare),
			},
			{
				Name:      "search",
				Usage:     "Find objects by name",
				ArgsUsage: "<term>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "fuzzy", Aliases: []string{"f"}, Usage: "Match similar names"},
					&cli.BoolFlag{Name: "glob", Aliases: []string{"g"}, Usage: "Match a glob pattern"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include trashed objects"},
				},
				Action: app.action(runSearch),
			},
			{
				Name:   "refresh",
				Usage:  "Reload the object registry",
				Action: app.action(runRefresh),
			},
			{
				Name:      "loglevel",
				Usage:     "Change the log level",
				ArgsUsage: "<debug|info|warn|error>",
				Action:    app.action(runLogLevel),
			},
		},
	}
}

func transferFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Allow transferring a folder"},
		&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "Descend into subfolders"},
	}
}

type commandFunc func(ctx context.Context, cmd *cli.Command, app *application) error

// action connects app before running f.
func (a *application) action(f commandFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		root := cmd.Root()
		if err := a.init(ctx, root.String("config"), root.Bool("yes")); err != nil {
			return err
		}
		return f(ctx, cmd, a)
	}
}
