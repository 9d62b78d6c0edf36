package drivetree

import (
	"context"
	"fmt"
	"sort"
)

type validateKey struct {
	id    NodeID
	depth int
}

// resolver validates nodes against the components of one path within one snapshot.
type resolver struct {
	snap *snapshot
	// parentScope is where parents are looked up.
	parentScope Scope
	components  []string
	memo        map[validateKey]bool
}

func newResolver(snap *snapshot, scope Scope, p Path) *resolver {
	parentScope := ScopeLive
	if scope.includesTrashed() {
		parentScope = ScopeAll
	}
	return &resolver{
		snap:        snap,
		parentScope: parentScope,
		components:  p.Components(),
		memo:        map[validateKey]bool{},
	}
}

// validate reports whether n is reachable from the root along the first depth components.
func (r *resolver) validate(n Node, depth int) bool {
	key := validateKey{id: n.ID, depth: depth}
	if ok, found := r.memo[key]; found {
		return ok
	}
	ok := r.validateParents(n, depth)
	r.memo[key] = ok
	return ok
}

func (r *resolver) validateParents(n Node, depth int) bool {
	if depth == 0 || n.Name != r.components[depth-1] {
		return false
	}
	for _, parentID := range n.Parents {
		if r.snap.isRoot(parentID) {
			if depth == 1 {
				return true
			}
			continue
		}
		if depth == 1 {
			continue
		}
		parent, ok := r.snap.lookup(parentID, r.parentScope)
		if !ok {
			continue
		}
		if r.validate(parent, depth-1) {
			return true
		}
	}
	return false
}

func (r *resolver) candidates(scope Scope) []Node {
	depth := len(r.components)
	var out []Node
	for _, n := range r.snap.named(r.components[depth-1], scope) {
		if r.validate(n, depth) {
			out = append(out, n)
		}
	}
	sortCandidates(out)
	return out
}

// Candidates returns every node in scope that the path p denotes, ordered by name, modified time and id.
// For the root path it returns the root node alone.
func (t *DriveTree) Candidates(ctx context.Context, sess *Session, p string, scope Scope) ([]Node, error) {
	snap, err := t.cache.ensure(ctx)
	if err != nil {
		return nil, err
	}
	abs := sess.Abs(p)
	if abs.IsRoot() {
		return []Node{snap.root()}, nil
	}
	return newResolver(snap, scope, abs).candidates(scope), nil
}

// Resolve returns the unique node in scope that the path p denotes. p is interpreted relative to the
// working directory of sess. If no node matches, the error matches ErrPathNotFound. If several nodes match,
// the prompter chooses among them.
func (t *DriveTree) Resolve(ctx context.Context, sess *Session, p string, scope Scope) (Node, error) {
	return t.resolvePath(ctx, sess.Abs(p), scope)
}

func (t *DriveTree) resolvePath(ctx context.Context, p Path, scope Scope) (Node, error) {
	snap, err := t.cache.ensure(ctx)
	if err != nil {
		return Node{}, err
	}
	if p.IsRoot() {
		return snap.root(), nil
	}
	candidates := newResolver(snap, scope, p).candidates(scope)
	switch len(candidates) {
	case 0:
		return Node{}, fmt.Errorf("'%s' does not exist in %s nodes: %w", p, scope, ErrPathNotFound)
	case 1:
		return candidates[0], nil
	default:
		t.logger.Debug("ambiguous path", logPath(p))
		return t.chooseNode(ctx, p, candidates)
	}
}

// lookupPath is resolvePath reporting absence as ok=false instead of an error.
func (t *DriveTree) lookupPath(ctx context.Context, p Path, scope Scope) (Node, bool, error) {
	n, err := t.resolvePath(ctx, p, scope)
	if err != nil {
		if isNotFound(err) {
			return Node{}, false, nil
		}
		return Node{}, false, err
	}
	return n, true, nil
}

// PathsOf returns every path leading to the node with id, one per chain of parents ending at the root.
// Parents missing from the cache end a chain without producing a path. Distinct chains through
// same-named folders yield equal paths.
func (t *DriveTree) PathsOf(ctx context.Context, id NodeID) ([]Path, error) {
	snap, err := t.cache.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return snap.pathsOf(id), nil
}

func (s *snapshot) pathsOf(id NodeID) []Path {
	if s.isRoot(id) {
		return []Path{RootPath}
	}
	var out []Path
	var walk func(id NodeID, suffix []string, onChain map[NodeID]bool)
	walk = func(id NodeID, suffix []string, onChain map[NodeID]bool) {
		n, ok := s.lookup(id, ScopeAll)
		if !ok || onChain[id] {
			return
		}
		onChain[id] = true
		defer delete(onChain, id)
		suffix = append([]string{n.Name}, suffix...)
		for _, parentID := range n.Parents {
			if s.isRoot(parentID) {
				p := RootPath
				for _, name := range suffix {
					p = p.Join(name)
				}
				out = append(out, p)
				continue
			}
			walk(parentID, suffix, onChain)
		}
	}
	walk(id, nil, map[NodeID]bool{})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
