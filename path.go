package drivetree

import (
	"path"
	"strings"
)

// Path represents an absolute slash-separated path in the remote store (e.g., "/folder/subfolder/file").
// The root is "/". A Path says nothing about whether the node it names exists or is unique.
type Path string

// RootPath is the path of the root folder.
const RootPath Path = "/"

// CleanPath makes p absolute and lexically normalized: empty segments collapse and ".." removes the
// preceding component, stopping at the root.
func CleanPath(p string) Path {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return Path(path.Clean(p))
}

func (p Path) String() string {
	return string(p)
}

// IsRoot reports whether p denotes the root folder.
func (p Path) IsRoot() bool {
	return CleanPath(string(p)) == RootPath
}

// Base returns the last component, or "" for the root.
func (p Path) Base() string {
	c := CleanPath(string(p))
	if c == RootPath {
		return ""
	}
	return path.Base(string(c))
}

// Parent returns p without its last component. The parent of the root is the root.
func (p Path) Parent() Path {
	return Path(path.Dir(string(CleanPath(string(p)))))
}

// Join appends a single name to p.
func (p Path) Join(name string) Path {
	c := CleanPath(string(p))
	if c == RootPath {
		return Path("/" + name)
	}
	return Path(string(c) + "/" + name)
}

// Components returns the names along p from the root, excluding the root itself.
func (p Path) Components() []string {
	c := CleanPath(string(p))
	if c == RootPath {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(c), "/"), "/")
}
