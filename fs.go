package drivetree

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/Jumpaku/go-drivetree/errors"
)

// FS returns a read-only io/fs view of the live tree. Names are paths from the root without a leading
// slash, "." naming the root itself. An ambiguous name is resolved with the prompter.
// Opening a file downloads its whole content. Proprietary documents cannot be opened.
func (t *DriveTree) FS(ctx context.Context) fs.FS {
	return &treeFS{t: t, ctx: ctx}
}

type treeFS struct {
	t   *DriveTree
	ctx context.Context
}

var _ fs.FS = (*treeFS)(nil)

func (f *treeFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	p := RootPath
	if name != "." {
		p = Path("/" + name)
	}
	n, err := f.t.resolvePath(f.ctx, p, ScopeLive)
	if err != nil {
		if isNotFound(err) {
			err = fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if p.IsRoot() {
		n.Name = "."
	}

	if n.IsFolder() {
		children := f.t.cache.snapshot().children(n.ID, ScopeLive)
		entries := make([]fs.DirEntry, len(children))
		for i, c := range children {
			entries[i] = c.Info()
		}
		return &nodeDir{info: n.Info(), entries: entries}, nil
	}

	if n.IsAppFile() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fmt.Errorf("%s must be exported: %w", n.MimeType, ErrUnsupportedConversion)}
	}
	content, err := f.download(n)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &nodeFile{info: n.Info(), content: bytes.NewReader(content)}, nil
}

func (f *treeFS) download(n Node) (data []byte, err error) {
	rc, err := f.t.remote.DownloadContent(f.ctx, n.ID, "")
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			err = errors.Join(err, errors.NewTransportError("failed to close content", closeErr))
		}
	}()
	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, errors.NewTransportError("failed to read content", err)
	}
	return data, nil
}

// nodeFile implements fs.File for a downloaded file.
type nodeFile struct {
	info    NodeInfo
	content *bytes.Reader
}

var _ fs.File = (*nodeFile)(nil)

func (f *nodeFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

func (f *nodeFile) Read(b []byte) (int, error) {
	return f.content.Read(b)
}

func (f *nodeFile) Close() error {
	return nil
}

// nodeDir implements fs.ReadDirFile for a folder.
// ReadDir is protected by a mutex for concurrent use.
type nodeDir struct {
	info    NodeInfo
	entries []fs.DirEntry
	offset  int
	mu      sync.Mutex
}

var _ fs.ReadDirFile = (*nodeDir)(nil)

func (d *nodeDir) Stat() (fs.FileInfo, error) {
	return d.info, nil
}

// Read returns an error because folders cannot be read.
func (d *nodeDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.Name(), Err: fs.ErrInvalid}
}

func (d *nodeDir) Close() error {
	return nil
}

func (d *nodeDir) ReadDir(n int) ([]fs.DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n <= 0 {
		entries := d.entries[d.offset:]
		d.offset = len(d.entries)
		return entries, nil
	}

	if d.offset >= len(d.entries) {
		return nil, io.EOF
	}

	end := min(d.offset+n, len(d.entries))
	entries := d.entries[d.offset:end]
	d.offset = end

	if d.offset >= len(d.entries) {
		return entries, io.EOF
	}
	return entries, nil
}
