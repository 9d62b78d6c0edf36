package drivetree

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Prompter supplies the decisions that DriveTree cannot make on its own.
//
// The rejected argument is the previous answer when it was not acceptable, or "" on the first attempt.
// DriveTree asks again until it gets an acceptable answer; returning an error aborts the operation.
type Prompter interface {
	// ChooseNode picks one node, by id, among candidates that all match path.
	ChooseNode(ctx context.Context, path Path, candidates []Node, rejected string) (string, error)
	// ChooseExport picks the format a proprietary node is exported to, by extension or by 1-based index
	// into extensions.
	ChooseExport(ctx context.Context, node Node, extensions []string, rejected string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string) (bool, error)
}

func abortedError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAborted, what, err)
}

// sortCandidates orders candidates by name, then modified time, then id.
func sortCandidates(candidates []Node) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if !a.ModifiedTime.Equal(b.ModifiedTime) {
			return a.ModifiedTime.Before(b.ModifiedTime)
		}
		return a.ID < b.ID
	})
}

func (t *DriveTree) chooseNode(ctx context.Context, p Path, candidates []Node) (Node, error) {
	rejected := ""
	for {
		if err := ctx.Err(); err != nil {
			return Node{}, err
		}
		answer, err := t.prompter.ChooseNode(ctx, p, candidates, rejected)
		if err != nil {
			return Node{}, abortedError(fmt.Sprintf("no node chosen for '%s'", p), err)
		}
		answer = strings.TrimSpace(answer)
		for _, c := range candidates {
			if string(c.ID) == answer {
				return c, nil
			}
		}
		t.logger.Debug("rejected node choice", logPath(p), logAnswer(answer))
		rejected = answer
	}
}

func (t *DriveTree) chooseExport(ctx context.Context, n Node, extensions []string) (string, error) {
	rejected := ""
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := t.prompter.ChooseExport(ctx, n, extensions, rejected)
		if err != nil {
			return "", abortedError(fmt.Sprintf("no export format chosen for '%s'", n.Name), err)
		}
		if ext, ok := matchExtension(strings.TrimSpace(answer), extensions); ok {
			return ext, nil
		}
		rejected = answer
	}
}

func matchExtension(answer string, extensions []string) (string, bool) {
	if i, err := strconv.Atoi(answer); err == nil {
		if i >= 1 && i <= len(extensions) {
			return extensions[i-1], true
		}
		return "", false
	}
	if answer != "" && !strings.HasPrefix(answer, ".") {
		answer = "." + answer
	}
	for _, ext := range extensions {
		if strings.EqualFold(ext, answer) {
			return ext, true
		}
	}
	return "", false
}

func (t *DriveTree) confirm(ctx context.Context, message string) error {
	ok, err := t.prompter.Confirm(ctx, message)
	if err != nil {
		return abortedError(message, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAborted, message)
	}
	return nil
}
