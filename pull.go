package drivetree

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jumpaku/go-drivetree/errors"
	"github.com/Jumpaku/go-drivetree/metrics"
	"go.uber.org/zap"
)

// Pull copies a remote file or folder to the local path dst.
//
// A file pulled onto an existing local directory is written as dst/<name>; otherwise it is written to dst.
// A folder is mirrored into dst/<name>. Proprietary documents are exported according to opts.Format, the
// extension of the local destination, or the prompter's choice, in this order.
// If the local destination's directory does not exist, the prompter is asked for confirmation first.
func (t *DriveTree) Pull(ctx context.Context, sess *Session, src, dst string, opts TransferOptions) error {
	source, err := t.Resolve(ctx, sess, src, ScopeLive)
	if err != nil {
		return err
	}
	localPath, err := sess.LocalPath(dst)
	if err != nil {
		return err
	}
	if opts.Format != "" {
		if _, ok := LookupExportFormat(opts.Format); !ok {
			return fmt.Errorf("unknown export format '%s': %w", opts.Format, ErrUnsupportedConversion)
		}
	}

	op := &pullOp{t: t, opts: opts}
	if source.IsFolder() {
		if !opts.Folder {
			return fmt.Errorf("'%s' is a folder: %w", sess.Abs(src), ErrPathIsFolder)
		}
		err = op.pullTopDir(ctx, source, localPath)
	} else {
		err = op.pullTopFile(ctx, source, localPath)
	}
	if err != nil {
		return err
	}
	t.logger.Info("pulled", logPath(sess.Abs(src)), zap.String("local", localPath), zap.Int("files", op.files))
	return nil
}

type pullOp struct {
	t     *DriveTree
	opts  TransferOptions
	files int
}

func (op *pullOp) pullTopDir(ctx context.Context, folder Node, localPath string) error {
	isDir, exists, err := op.statLocal(localPath)
	if err != nil {
		return err
	}
	if exists && !isDir {
		return fmt.Errorf("'%s' is a file: %w", localPath, ErrPathIsFile)
	}
	if !exists {
		if err := op.t.confirm(ctx, "Local path does not exist. Create anyway?"); err != nil {
			return err
		}
	}
	if op.t.cache.snapshot().isRoot(folder.ID) {
		return op.pullDir(ctx, folder, localPath)
	}
	return op.pullDir(ctx, folder, op.t.local.Join(localPath, localName(folder.Name)))
}

func (op *pullOp) pullTopFile(ctx context.Context, n Node, localPath string) error {
	isDir, exists, err := op.statLocal(localPath)
	if err != nil {
		return err
	}
	if exists && isDir {
		return op.pullFile(ctx, n, op.t.local.Join(localPath, localName(n.Name)))
	}
	if !exists {
		parent := filepath.Dir(localPath)
		parentIsDir, parentExists, err := op.statLocal(parent)
		if err != nil {
			return err
		}
		if parentExists && !parentIsDir {
			return fmt.Errorf("'%s' is a file: %w", parent, ErrPathIsFile)
		}
		if !parentExists {
			if err := op.t.confirm(ctx, "Local path does not exist. Create anyway?"); err != nil {
				return err
			}
		}
	}
	return op.pullFile(ctx, n, localPath)
}

func (op *pullOp) statLocal(localPath string) (isDir bool, exists bool, err error) {
	info, err := op.t.local.Stat(localPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, false, nil
		}
		return false, false, errors.NewIOError(fmt.Sprintf("failed to stat '%s'", localPath), err)
	}
	return info.IsDir(), true, nil
}

func (op *pullOp) pullDir(ctx context.Context, folder Node, localDir string) error {
	if err := op.t.local.MkdirAll(localDir, 0o755); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create directory '%s'", localDir), err)
	}
	used := map[string]bool{}
	for _, c := range op.t.cache.snapshot().children(folder.ID, ScopeLive) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.IsFolder() {
			name := localName(c.Name)
			if used[name] {
				name = disambiguatedName(name, c.ID)
			}
			used[name] = true
			if !op.opts.Recursive {
				op.t.logger.Debug("skipping folder", zap.String("node_id", string(c.ID)), zap.String("name", c.Name))
				continue
			}
			if err := op.pullDir(ctx, c, op.t.local.Join(localDir, name)); err != nil {
				return err
			}
			continue
		}

		target, exportMimeType, err := op.localTarget(ctx, c, op.t.local.Join(localDir, localName(c.Name)))
		if err != nil {
			return err
		}
		name := filepath.Base(target)
		if used[name] {
			name = disambiguatedName(name, c.ID)
			target = op.t.local.Join(localDir, name)
		}
		used[name] = true
		if err := op.download(ctx, c, target, exportMimeType); err != nil {
			return err
		}
	}
	return nil
}

func (op *pullOp) pullFile(ctx context.Context, n Node, target string) error {
	target, exportMimeType, err := op.localTarget(ctx, n, target)
	if err != nil {
		return err
	}
	return op.download(ctx, n, target, exportMimeType)
}

// localTarget returns where n is written and the export type it is downloaded as. Proprietary documents get
// the extension of their export format appended unless target already carries it.
func (op *pullOp) localTarget(ctx context.Context, n Node, target string) (string, string, error) {
	if !n.IsAppFile() {
		return target, "", nil
	}
	format, err := op.exportFormat(ctx, n, target)
	if err != nil {
		return "", "", err
	}
	if !strings.EqualFold(filepath.Ext(target), format.Extension) {
		target += format.Extension
	}
	return target, format.MimeType, nil
}

func (op *pullOp) download(ctx context.Context, n Node, target, exportMimeType string) (err error) {
	var size int64
	defer func() { op.t.metrics.RecordTransfer(metrics.DirectionPull, size, err) }()

	rc, err := op.t.remote.DownloadContent(ctx, n.ID, exportMimeType)
	if err != nil {
		return fmt.Errorf("failed to download '%s': %w", n.Name, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			err = errors.Join(err, errors.NewTransportError(fmt.Sprintf("failed to close content of '%s'", n.Name), closeErr))
		}
	}()

	if err := op.t.local.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create directory '%s'", filepath.Dir(target)), err)
	}
	f, err := op.t.local.Create(target)
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create '%s'", target), err)
	}
	size, err = io.Copy(f, rc)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := op.t.local.Remove(target); removeErr != nil {
			op.t.logger.Warn("failed to remove partial download", zap.String("local", target), zap.Error(removeErr))
		}
		return errors.NewIOError(fmt.Sprintf("failed to write '%s'", target), err)
	}
	op.files++
	op.t.logger.Debug("downloaded", zap.String("node_id", string(n.ID)), zap.String("local", target), zap.Int64("bytes", size))
	return nil
}

func (op *pullOp) exportFormat(ctx context.Context, n Node, target string) (ExportFormat, error) {
	if op.opts.Format != "" {
		f, _ := LookupExportFormat(op.opts.Format)
		if !n.OffersExport(f.MimeType) {
			return ExportFormat{}, fmt.Errorf("'%s' cannot be exported to %s: %w", n.Name, f.Extension, ErrUnsupportedConversion)
		}
		return f, nil
	}
	if f, ok := exportFormatFor(n, target); ok {
		return f, nil
	}
	offered := offeredExportFormats(n)
	if len(offered) == 0 {
		return ExportFormat{}, fmt.Errorf("'%s' of type %s cannot be exported: %w", n.Name, n.MimeType, ErrUnsupportedConversion)
	}
	extensions := make([]string, len(offered))
	for i, f := range offered {
		extensions[i] = f.Extension
	}
	ext, err := op.t.chooseExport(ctx, n, extensions)
	if err != nil {
		return ExportFormat{}, err
	}
	f, _ := LookupExportFormat(ext)
	return f, nil
}

// localName makes a remote name usable as a single local path element.
func localName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" || name == "." || name == ".." {
		return "_" + name
	}
	return name
}

// disambiguatedName inserts the node id before the extension: "report (1a2b).txt".
func disambiguatedName(name string, id NodeID) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s (%s)%s", strings.TrimSuffix(name, ext), id, ext)
}
