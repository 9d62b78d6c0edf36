package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/logging"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func requireArgs(cmd *cli.Command, min int) error {
	if cmd.Args().Len() < min {
		return fmt.Errorf("usage: %s %s", cmd.Name, cmd.ArgsUsage)
	}
	return nil
}

func runList(ctx context.Context, cmd *cli.Command, app *application) error {
	nodes, err := app.tree.List(ctx, app.sess, cmd.Args().First(), drivetree.ListOptions{
		All:     cmd.Bool("all"),
		Starred: cmd.Bool("starred"),
	})
	if err != nil {
		return err
	}
	if !cmd.Bool("long") {
		for _, n := range nodes {
			fmt.Fprintln(app.out, displayName(n))
		}
		return nil
	}
	w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, describeKind(n), describeSize(n), app.formatTime(n.ModifiedTime), displayName(n))
	}
	return w.Flush()
}

func runCd(ctx context.Context, cmd *cli.Command, app *application) error {
	p := cmd.Args().First()
	if p == "" {
		p = "/"
	}
	return app.tree.Cd(ctx, app.sess, p)
}

func runPwd(ctx context.Context, cmd *cli.Command, app *application) error {
	fmt.Fprintln(app.out, app.sess.Cwd())
	return nil
}

func runMkdir(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	n, err := app.tree.Mkdir(ctx, app.sess, cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "%s\n", n.ID)
	return nil
}

func transferOptions(cmd *cli.Command) drivetree.TransferOptions {
	return drivetree.TransferOptions{
		Folder:    cmd.Bool("folder"),
		Recursive: cmd.Bool("recursive"),
		Format:    cmd.String("format"),
	}
}

func runPush(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return app.tree.Push(ctx, app.sess, cmd.Args().Get(0), cmd.Args().Get(1), transferOptions(cmd))
}

func runPull(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	dst := cmd.Args().Get(1)
	if dst == "" {
		dst = "."
	}
	return app.tree.Pull(ctx, app.sess, cmd.Args().Get(0), dst, transferOptions(cmd))
}

func runMove(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	return app.tree.Move(ctx, app.sess, cmd.Args().Get(0), cmd.Args().Get(1))
}

func runRemove(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return app.tree.Remove(ctx, app.sess, cmd.Args().First(), cmd.Bool("delete"))
}

func runRestore(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return app.tree.Restore(ctx, app.sess, cmd.Args().First())
}

func runInfo(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	d, err := app.tree.Info(ctx, app.sess, cmd.Args().First())
	if err != nil {
		return err
	}
	n := d.Node
	w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id:\t%s\n", n.ID)
	fmt.Fprintf(w, "name:\t%s\n", n.Name)
	fmt.Fprintf(w, "type:\t%s\n", n.MimeType)
	if !n.IsFolder() && !n.IsAppFile() {
		fmt.Fprintf(w, "size:\t%s\n", humanize.Bytes(uint64(n.Size)))
	}
	fmt.Fprintf(w, "created:\t%s\n", app.formatTime(n.CreatedTime))
	fmt.Fprintf(w, "modified:\t%s\n", app.formatTime(n.ModifiedTime))
	fmt.Fprintf(w, "trashed:\t%t\n", n.Trashed)
	fmt.Fprintf(w, "starred:\t%t\n", n.Starred)
	fmt.Fprintf(w, "shared:\t%t\n", n.Shared)
	if len(n.Owners) > 0 {
		fmt.Fprintf(w, "owners:\t%s\n", strings.Join(n.Owners, ", "))
	}
	if n.WebViewLink != "" {
		fmt.Fprintf(w, "link:\t%s\n", n.WebViewLink)
	}
	for _, p := range d.Paths {
		fmt.Fprintf(w, "path:\t%s\n", p)
	}
	for _, g := range d.Grants {
		fmt.Fprintf(w, "permission:\t%s\t%s\n", g.Role, g.Grantee.Identifier())
	}
	return w.Flush()
}

func runShare(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	args := cmd.Args().Slice()
	res, err := app.tree.Share(ctx, app.sess, drivetree.ShareRequest{
		Path:       args[0],
		Revoke:     cmd.Bool("revoke"),
		Link:       cmd.Bool("link"),
		Role:       cmd.String("role"),
		Addressees: args[1:],
		Quiet:      cmd.Bool("quiet"),
	})
	if err != nil {
		return err
	}
	for _, g := range res.Granted {
		fmt.Fprintf(app.out, "granted %s to %s\n", g.Role, g.Grantee.Identifier())
	}
	for _, g := range res.Revoked {
		fmt.Fprintf(app.out, "revoked %s from %s\n", g.Role, g.Grantee.Identifier())
	}
	if res.Link != "" {
		fmt.Fprintln(app.out, res.Link)
	}
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	mode := drivetree.SearchSubstring
	switch {
	case cmd.Bool("fuzzy"):
		mode = drivetree.SearchFuzzy
	case cmd.Bool("glob"):
		mode = drivetree.SearchGlob
	}
	hits, err := app.tree.Search(ctx, strings.Join(cmd.Args().Slice(), " "), drivetree.SearchOptions{
		Mode:           mode,
		IncludeTrashed: cmd.Bool("all"),
	})
	if err != nil {
		return err
	}
	for _, h := range hits {
		if len(h.Paths) == 0 {
			fmt.Fprintf(app.out, "%s\t(unreachable %s)\n", h.Node.ID, h.Node.Name)
			continue
		}
		for _, p := range h.Paths {
			fmt.Fprintf(app.out, "%s\t%s\n", h.Node.ID, p)
		}
	}
	return nil
}

func runRefresh(ctx context.Context, cmd *cli.Command, app *application) error {
	return app.tree.Refresh(ctx)
}

func runLogLevel(ctx context.Context, cmd *cli.Command, app *application) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	logging.SetLevel(app.level, cmd.Args().First())
	fmt.Fprintln(app.out, app.level.Level())
	return nil
}

func displayName(n drivetree.Node) string {
	name := n.Name
	if n.IsFolder() {
		name += "/"
	}
	if n.Trashed {
		name += " (trashed)"
	}
	return name
}

func describeKind(n drivetree.Node) string {
	if n.IsAppFile() {
		return strings.TrimPrefix(n.MimeType, "application/vnd.google-apps.")
	}
	return n.Kind().String()
}

func describeSize(n drivetree.Node) string {
	if n.IsFolder() || n.IsAppFile() {
		return "-"
	}
	return humanize.Bytes(uint64(n.Size))
}

// formatTime shows relative times to people and absolute times to scripts.
func (a *application) formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if a.tty {
		return humanize.Time(t)
	}
	return t.UTC().Format(time.RFC3339)
}
