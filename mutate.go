package drivetree

import (
	"context"
	"fmt"

	"github.com/Jumpaku/go-drivetree/errors"
	"go.uber.org/zap"
)

// Cd changes the working directory of sess to the folder at p.
func (t *DriveTree) Cd(ctx context.Context, sess *Session, p string) error {
	abs := sess.Abs(p)
	n, err := t.resolvePath(ctx, abs, ScopeLive)
	if err != nil {
		return err
	}
	if !n.IsFolder() {
		return fmt.Errorf("'%s' is a file: %w", abs, ErrPathIsFile)
	}
	sess.setCwd(abs)
	return nil
}

// Mkdir creates the folder at p together with its missing ancestors. An existing folder is returned as is.
func (t *DriveTree) Mkdir(ctx context.Context, sess *Session, p string) (Node, error) {
	abs := sess.Abs(p)
	m := newFolderMaker(t)
	id, err := m.ensureFolder(ctx, abs)
	if m.created > 0 {
		if refreshErr := t.cache.Refresh(ctx); refreshErr != nil {
			err = errors.Join(err, refreshErr)
		}
	}
	if err != nil {
		return Node{}, err
	}
	n, ok := t.cache.snapshot().lookup(id, ScopeLive)
	if !ok {
		return Node{}, fmt.Errorf("created folder '%s' is not listed: %w", abs, ErrPathNotFound)
	}
	if m.created > 0 {
		t.logger.Info("created folder", logPath(abs), zap.Int("folders_created", m.created))
	}
	return n, nil
}

// Move reparents and renames the node at src so that it is addressed by dst.
//
// The node moves into the parent folder of dst, which is created after confirmation if missing, and takes
// the last component of dst as its name. Only the parent that src was addressed through is replaced; other
// parents are retained.
func (t *DriveTree) Move(ctx context.Context, sess *Session, src, dst string) error {
	srcPath, dstPath := sess.Abs(src), sess.Abs(dst)
	if srcPath.IsRoot() {
		return fmt.Errorf("cannot move the root folder: %w", ErrInvalidPath)
	}
	n, err := t.resolvePath(ctx, srcPath, ScopeLive)
	if err != nil {
		return err
	}
	oldParent, err := t.resolveParentOf(ctx, n, srcPath)
	if err != nil {
		return err
	}

	m := newFolderMaker(t)
	err = t.move(ctx, m, n, oldParent, srcPath, dstPath)
	if err == nil || m.created > 0 {
		if refreshErr := t.cache.Refresh(ctx); refreshErr != nil {
			err = errors.Join(err, refreshErr)
		}
	}
	return err
}

func (t *DriveTree) move(ctx context.Context, m *folderMaker, n Node, oldParent NodeID, srcPath, dstPath Path) error {
	if dstPath.IsRoot() {
		return fmt.Errorf("cannot move '%s' onto the root folder: %w", srcPath, ErrInvalidPath)
	}
	newName := dstPath.Base()
	parentPath := dstPath.Parent()
	parent, parentExists, err := t.lookupPath(ctx, parentPath, ScopeLive)
	if err != nil {
		return err
	}
	if parentExists && !parent.IsFolder() {
		return fmt.Errorf("'%s' is a file: %w", parentPath, ErrPathIsFile)
	}
	var newParent NodeID
	if parentExists {
		newParent = parent.ID
	} else {
		if err := t.confirm(ctx, "Destination folder does not exist. Create anyway?"); err != nil {
			return err
		}
		if newParent, err = m.ensureFolder(ctx, parentPath); err != nil {
			return err
		}
	}

	if n.IsFolder() && t.cache.snapshot().isAncestorOrSelf(n.ID, newParent) {
		return fmt.Errorf("cannot move '%s' into itself: %w", srcPath, ErrInvalidPath)
	}

	parents := []NodeID{}
	for _, p := range n.Parents {
		if p != oldParent && p != newParent {
			parents = append(parents, p)
		}
	}
	parents = append(parents, newParent)

	if err := t.remote.SetParentsAndName(ctx, n.ID, parents, newName); err != nil {
		return fmt.Errorf("failed to move '%s' to '%s': %w", srcPath, dstPath, err)
	}
	t.logger.Info("moved", logPath(srcPath), zap.String("destination", dstPath.String()), zap.String("node_id", string(n.ID)))
	return nil
}

// resolveParentOf finds which parent of n the path p goes through, resolving the full parent path.
func (t *DriveTree) resolveParentOf(ctx context.Context, n Node, p Path) (NodeID, error) {
	snap, err := t.cache.ensure(ctx)
	if err != nil {
		return "", err
	}
	parentPath := p.Parent()
	if parentPath.IsRoot() {
		return snap.rootID, nil
	}
	var parents []Node
	for _, c := range newResolver(snap, ScopeLive, parentPath).candidates(ScopeLive) {
		if n.HasParent(c.ID) {
			parents = append(parents, c)
		}
	}
	switch len(parents) {
	case 0:
		return "", fmt.Errorf("parent '%s' of '%s' does not exist: %w", parentPath, p, ErrPathNotFound)
	case 1:
		return parents[0].ID, nil
	default:
		chosen, err := t.chooseNode(ctx, parentPath, parents)
		if err != nil {
			return "", err
		}
		return chosen.ID, nil
	}
}

// isAncestorOrSelf reports whether ancestor is id itself or reachable from id through parents.
func (s *snapshot) isAncestorOrSelf(ancestor, id NodeID) bool {
	visited := map[NodeID]bool{}
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == ancestor {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if n, ok := s.lookup(cur, ScopeAll); ok {
			queue = append(queue, n.Parents...)
		}
	}
	return false
}

// Remove moves the node at p to the trash, or deletes it irrecoverably if permanent is true.
func (t *DriveTree) Remove(ctx context.Context, sess *Session, p string, permanent bool) error {
	abs := sess.Abs(p)
	if abs.IsRoot() {
		return fmt.Errorf("cannot remove the root folder: %w", ErrInvalidPath)
	}
	n, err := t.resolvePath(ctx, abs, ScopeLive)
	if err != nil {
		return err
	}
	if permanent {
		err = t.remote.DeletePermanently(ctx, n.ID)
	} else {
		err = t.remote.Trash(ctx, n.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to remove '%s': %w", abs, err)
	}
	if err := t.cache.Refresh(ctx); err != nil {
		return err
	}
	t.logger.Info("removed", logPath(abs), zap.String("node_id", string(n.ID)), zap.Bool("permanent", permanent))
	return nil
}

// Restore takes the trashed node at p out of the trash.
func (t *DriveTree) Restore(ctx context.Context, sess *Session, p string) error {
	abs := sess.Abs(p)
	if abs.IsRoot() {
		return fmt.Errorf("cannot restore the root folder: %w", ErrInvalidPath)
	}
	n, err := t.resolvePath(ctx, abs, ScopeTrashed)
	if err != nil {
		return err
	}
	if err := t.remote.Untrash(ctx, n.ID); err != nil {
		return fmt.Errorf("failed to restore '%s': %w", abs, err)
	}
	if err := t.cache.Refresh(ctx); err != nil {
		return err
	}
	t.logger.Info("restored", logPath(abs), zap.String("node_id", string(n.ID)))
	return nil
}
