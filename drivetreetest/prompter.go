package drivetreetest

import (
	"context"
	"io"
	"sync"

	"github.com/Jumpaku/go-drivetree"
)

// Script is a drivetree.Prompter replaying prepared answers in order.
// When the answers of a kind run out, it fails with io.EOF like a closed terminal.
type Script struct {
	mu sync.Mutex

	Choices  []string
	Exports  []string
	Confirms []bool

	// Asked records the paths, node names and messages prompted for, in order.
	Asked []string
	// Rejected records the answers that were refused.
	Rejected []string
	// Offered records the candidates of each ChooseNode call.
	Offered [][]drivetree.Node
}

var _ drivetree.Prompter = (*Script)(nil)

func (s *Script) ChooseNode(ctx context.Context, path drivetree.Path, candidates []drivetree.Node, rejected string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(path.String(), rejected)
	s.Offered = append(s.Offered, append([]drivetree.Node{}, candidates...))
	if len(s.Choices) == 0 {
		return "", io.EOF
	}
	answer := s.Choices[0]
	s.Choices = s.Choices[1:]
	return answer, nil
}

func (s *Script) ChooseExport(ctx context.Context, node drivetree.Node, extensions []string, rejected string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(node.Name, rejected)
	if len(s.Exports) == 0 {
		return "", io.EOF
	}
	answer := s.Exports[0]
	s.Exports = s.Exports[1:]
	return answer, nil
}

func (s *Script) Confirm(ctx context.Context, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(message, "")
	if len(s.Confirms) == 0 {
		return false, io.EOF
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}

func (s *Script) record(asked, rejected string) {
	s.Asked = append(s.Asked, asked)
	if rejected != "" {
		s.Rejected = append(s.Rejected, rejected)
	}
}
