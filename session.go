package drivetree

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Session carries the state of one interactive user: the remote working directory and the local
// directory that relative local paths are resolved against.
// A Session is not safe for concurrent use.
type Session struct {
	cwd      Path
	localDir string
}

// NewSession returns a session positioned at the remote root.
// If localDir is empty, relative local paths are resolved against the user's home directory.
func NewSession(localDir string) *Session {
	return &Session{cwd: RootPath, localDir: localDir}
}

// NewSessionAt returns a session whose working directory is cwd. The directory is not checked to exist.
func NewSessionAt(cwd string, localDir string) *Session {
	return &Session{cwd: CleanPath(cwd), localDir: localDir}
}

// Cwd returns the remote working directory.
func (s *Session) Cwd() Path {
	return s.cwd
}

func (s *Session) setCwd(p Path) {
	s.cwd = CleanPath(string(p))
}

// Abs resolves p against the working directory. A leading "/" starts from the root and ".." moves up
// one component lexically. An empty p denotes the working directory.
func (s *Session) Abs(p string) Path {
	if p == "" {
		return s.cwd
	}
	if p[0] == '/' {
		return CleanPath(p)
	}
	return CleanPath(string(s.cwd) + "/" + p)
}

// LocalPath expands a leading "~" and resolves relative paths against the session's local directory.
func (s *Session) LocalPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand local path '%s': %w", p, err)
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	base := s.localDir
	if base == "" {
		base, err = homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("failed to find home directory: %w", err)
		}
	}
	return filepath.Join(base, expanded), nil
}
