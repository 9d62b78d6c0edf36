package drivetree

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Jumpaku/go-drivetree/errors"
	"github.com/Jumpaku/go-drivetree/metrics"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// TransferOptions controls Push and Pull.
type TransferOptions struct {
	// Folder allows transferring a folder. Without it, a folder source fails with ErrPathIsFolder.
	Folder bool
	// Recursive descends into subfolders of a folder source. Without it, only the files directly inside
	// the folder are transferred.
	Recursive bool
	// Format is the extension that proprietary documents are exported to on Pull, such as ".pdf".
	// If empty, the extension of the local destination is used, or the prompter chooses.
	Format string
}

// Push copies a local file or directory to the remote path dst.
//
// A file pushed onto an existing remote file replaces its content, pushed onto an existing folder it is
// uploaded into the folder, and otherwise it is created under the name of the last component of dst.
// A directory is mirrored into dst/<base name of src>. Missing remote folders are created when first needed.
// If dst does not exist, the prompter is asked for confirmation before anything is created.
func (t *DriveTree) Push(ctx context.Context, sess *Session, src, dst string, opts TransferOptions) error {
	localPath, err := sess.LocalPath(src)
	if err != nil {
		return err
	}
	remotePath := sess.Abs(dst)

	info, err := t.local.Stat(localPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("'%s' does not exist: %w", localPath, ErrLocalPathNotFound)
		}
		return errors.NewIOError(fmt.Sprintf("failed to stat '%s'", localPath), err)
	}
	if info.IsDir() && !opts.Folder {
		return fmt.Errorf("'%s' is a directory: %w", localPath, ErrPathIsFolder)
	}

	dest, exists, err := t.lookupPath(ctx, remotePath, ScopeLive)
	if err != nil {
		return err
	}
	if !exists {
		if err := t.confirm(ctx, "Remote path does not exist. Create anyway?"); err != nil {
			return err
		}
	}

	op := &pushOp{folderMaker: newFolderMaker(t), opts: opts}
	if exists && dest.IsFolder() {
		op.folders[remotePath] = dest.ID
	}
	err = op.pushTop(ctx, localPath, info, remotePath, dest, exists)
	if op.mutated || op.created > 0 {
		if refreshErr := t.cache.Refresh(ctx); refreshErr != nil {
			err = errors.Join(err, refreshErr)
		}
	}
	if err != nil {
		return err
	}
	t.logger.Info("pushed", zap.String("local", localPath), logPath(remotePath),
		zap.Int("files", op.files), zap.Int("folders_created", op.created))
	return nil
}

type pushOp struct {
	*folderMaker
	opts TransferOptions

	mutated bool
	files   int
}

func (op *pushOp) pushTop(ctx context.Context, localPath string, info os.FileInfo, remotePath Path, dest Node, exists bool) error {
	name := filepath.Base(localPath)
	if info.IsDir() {
		if exists && !dest.IsFolder() {
			return fmt.Errorf("'%s' is a file: %w", remotePath, ErrPathIsFile)
		}
		return op.pushDir(ctx, localPath, remotePath.Join(name))
	}
	switch {
	case exists && dest.IsFolder():
		return op.pushFile(ctx, localPath, dest.ID, remotePath.Join(name))
	case exists:
		return op.upload(ctx, localPath, dest.ID, remotePath)
	default:
		parentID, err := op.ensureFolder(ctx, remotePath.Parent())
		if err != nil {
			return err
		}
		return op.createFile(ctx, localPath, parentID, remotePath)
	}
}

func (op *pushOp) pushDir(ctx context.Context, localDir string, remoteDir Path) error {
	folderID, err := op.ensureFolder(ctx, remoteDir)
	if err != nil {
		return err
	}
	entries, err := op.t.local.ReadDir(localDir)
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to read directory '%s'", localDir), err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		child := op.t.local.Join(localDir, e.Name())
		if e.IsDir() {
			if !op.opts.Recursive {
				op.t.logger.Debug("skipping directory", zap.String("local", child))
				continue
			}
			if err := op.pushDir(ctx, child, remoteDir.Join(e.Name())); err != nil {
				return err
			}
			continue
		}
		if err := op.pushFile(ctx, child, folderID, remoteDir.Join(e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// pushFile uploads localPath into the folder parentID under the last component of remotePath,
// replacing the content of an existing file with that name.
func (op *pushOp) pushFile(ctx context.Context, localPath string, parentID NodeID, remotePath Path) error {
	existing, found, err := op.childNamed(ctx, parentID, remotePath, false)
	if err != nil {
		return err
	}
	if found {
		return op.upload(ctx, localPath, existing.ID, remotePath)
	}
	return op.createFile(ctx, localPath, parentID, remotePath)
}

func (op *pushOp) createFile(ctx context.Context, localPath string, parentID NodeID, remotePath Path) error {
	mimeType, err := op.detectMimeType(localPath)
	if err != nil {
		return err
	}
	created, err := op.t.remote.Create(ctx, parentID, remotePath.Base(), mimeType)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", remotePath, err)
	}
	op.mutated = true
	return op.upload(ctx, localPath, created.ID, remotePath)
}

func (op *pushOp) upload(ctx context.Context, localPath string, id NodeID, remotePath Path) (err error) {
	var size int64
	defer func() { op.t.metrics.RecordTransfer(metrics.DirectionPush, size, err) }()

	f, err := op.t.local.Open(localPath)
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to open '%s'", localPath), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, errors.NewIOError(fmt.Sprintf("failed to close '%s'", localPath), closeErr))
		}
	}()

	counter := &countingReader{r: f}
	if err := op.t.remote.UploadContent(ctx, id, counter); err != nil {
		return fmt.Errorf("failed to upload '%s' to '%s': %w", localPath, remotePath, err)
	}
	size = counter.n
	op.mutated = true
	op.files++
	op.t.logger.Debug("uploaded", zap.String("local", localPath), logPath(remotePath), zap.Int64("bytes", size))
	return nil
}

func (op *pushOp) detectMimeType(localPath string) (string, error) {
	f, err := op.t.local.Open(localPath)
	if err != nil {
		return "", errors.NewIOError(fmt.Sprintf("failed to open '%s'", localPath), err)
	}
	defer f.Close()
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", errors.NewIOError(fmt.Sprintf("failed to detect content type of '%s'", localPath), err)
	}
	return mtype.String(), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// folderMaker finds and creates remote folders by path within one operation.
type folderMaker struct {
	t *DriveTree
	// folders memoizes remote folders resolved or created during the operation.
	folders map[Path]NodeID
	created int
}

func newFolderMaker(t *DriveTree) *folderMaker {
	return &folderMaker{t: t, folders: map[Path]NodeID{}}
}

// ensureFolder returns the folder at dir, creating it and its missing ancestors.
func (m *folderMaker) ensureFolder(ctx context.Context, dir Path) (NodeID, error) {
	if id, ok := m.folders[dir]; ok {
		return id, nil
	}
	if dir.IsRoot() {
		return m.t.cache.snapshot().rootID, nil
	}

	var candidates []Node
	if parentID, ok := m.folders[dir.Parent()]; ok {
		for _, c := range m.t.cache.snapshot().children(parentID, ScopeLive) {
			if c.Name == dir.Base() {
				candidates = append(candidates, c)
			}
		}
	} else {
		snap, err := m.t.cache.ensure(ctx)
		if err != nil {
			return "", err
		}
		candidates = newResolver(snap, ScopeLive, dir).candidates(ScopeLive)
	}
	var folders []Node
	for _, c := range candidates {
		if c.IsFolder() {
			folders = append(folders, c)
		}
	}
	switch {
	case len(folders) == 1:
		m.folders[dir] = folders[0].ID
		return folders[0].ID, nil
	case len(folders) > 1:
		sortCandidates(folders)
		n, err := m.t.chooseNode(ctx, dir, folders)
		if err != nil {
			return "", err
		}
		m.folders[dir] = n.ID
		return n.ID, nil
	case len(candidates) > 0:
		return "", fmt.Errorf("'%s' is a file: %w", dir, ErrPathIsFile)
	}

	parentID, err := m.ensureFolder(ctx, dir.Parent())
	if err != nil {
		return "", err
	}
	created, err := m.t.remote.Create(ctx, parentID, dir.Base(), MimeTypeFolder)
	if err != nil {
		return "", fmt.Errorf("failed to create folder '%s': %w", dir, err)
	}
	m.created++
	m.folders[dir] = created.ID
	m.t.logger.Debug("created folder", logPath(dir), zap.String("node_id", string(created.ID)))
	return created.ID, nil
}

// childNamed finds the child of parentID named by the last component of p, among folders if folder is
// true and among files otherwise. Folders created during this operation have no cached children.
func (m *folderMaker) childNamed(ctx context.Context, parentID NodeID, p Path, folder bool) (Node, bool, error) {
	var matches []Node
	for _, c := range m.t.cache.snapshot().children(parentID, ScopeLive) {
		if c.Name == p.Base() && c.IsFolder() == folder {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return Node{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		sortCandidates(matches)
		n, err := m.t.chooseNode(ctx, p, matches)
		return n, err == nil, err
	}
}
