package drivetree

import (
	"io/fs"
	"time"
)

// NodeInfo implements fs.FileInfo and fs.DirEntry for a Node.
type NodeInfo struct {
	node Node
}

// Verify interface implementations at compile time.
var (
	_ fs.FileInfo = NodeInfo{}
	_ fs.DirEntry = NodeInfo{}
)

// Info wraps the node so it can be listed alongside local entries.
func (n Node) Info() NodeInfo {
	return NodeInfo{node: n}
}

// Name returns the display name of the node.
func (i NodeInfo) Name() string {
	return i.node.Name
}

// Size returns the size of the content in bytes. Folders and proprietary documents report zero.
func (i NodeInfo) Size() int64 {
	return i.node.Size
}

// Mode returns the file mode bits.
func (i NodeInfo) Mode() fs.FileMode {
	if i.IsDir() {
		return fs.ModeDir | 0555
	}
	return 0444
}

// ModTime returns the modification time.
func (i NodeInfo) ModTime() time.Time {
	return i.node.ModifiedTime
}

// IsDir reports whether the node is a folder.
func (i NodeInfo) IsDir() bool {
	return i.node.IsFolder()
}

// Sys returns the underlying Node.
func (i NodeInfo) Sys() any {
	return i.node
}

// Type returns the type bits of the mode.
func (i NodeInfo) Type() fs.FileMode {
	return i.Mode().Type()
}

// Info returns itself.
func (i NodeInfo) Info() (fs.FileInfo, error) {
	return i, nil
}
