package drivetree

import (
	"strings"
	"time"
)

const (
	MimeTypeFolder        = "application/vnd.google-apps.folder"
	mimeTypePrefixAppFile = "application/vnd.google-apps."
)

// NodeID identifies a remote object. It is stable for the lifetime of the object.
type NodeID string

// Kind distinguishes folders from files.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is a remote object as observed by the last cache refresh.
// Names are not unique among siblings and a node may have several parents.
type Node struct {
	ID       NodeID
	Name     string
	MimeType string
	Parents  []NodeID
	Trashed  bool
	Size     int64

	CreatedTime  time.Time
	ModifiedTime time.Time

	// ExportFormats lists the mime types a proprietary file can be exported to.
	ExportFormats []string

	Starred     bool
	Shared      bool
	Owners      []string
	WebViewLink string
}

// Kind returns KindFolder for folders and KindFile otherwise.
func (n Node) Kind() Kind {
	if n.IsFolder() {
		return KindFolder
	}
	return KindFile
}

func (n Node) IsFolder() bool {
	return n.MimeType == MimeTypeFolder
}

// IsAppFile reports whether the node is a proprietary document that must be exported to be downloaded.
func (n Node) IsAppFile() bool {
	return strings.HasPrefix(n.MimeType, mimeTypePrefixAppFile) && !n.IsFolder()
}

// HasParent reports whether id is one of the node's parents.
func (n Node) HasParent(id NodeID) bool {
	for _, p := range n.Parents {
		if p == id {
			return true
		}
	}
	return false
}

// OffersExport reports whether the node can be exported to mimeType.
func (n Node) OffersExport(mimeType string) bool {
	for _, f := range n.ExportFormats {
		if f == mimeType {
			return true
		}
	}
	return false
}
