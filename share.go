package drivetree

import (
	"context"
	"fmt"

	"github.com/Jumpaku/go-drivetree/errors"
	"go.uber.org/zap"
)

// ShareRequest describes a change to the grants of one node.
type ShareRequest struct {
	Path string
	// Revoke removes grants instead of adding them.
	Revoke bool
	// Link targets the grant to anyone holding the link.
	Link bool
	// Role is required when granting: reader, writer or owner.
	Role string
	// Addressees are the email addresses of the users to grant to or revoke from.
	Addressees []string
	// Quiet turns a grant without targets and revocations of missing grants into no-ops.
	Quiet bool
}

// ShareResult reports what Share changed.
type ShareResult struct {
	// Link is the web link of the node when a link grant was added.
	Link    string
	Granted []Grant
	Revoked []Grant
}

// Share grants or revokes access to the node at req.Path.
func (t *DriveTree) Share(ctx context.Context, sess *Session, req ShareRequest) (ShareResult, error) {
	abs := sess.Abs(req.Path)
	if abs.IsRoot() {
		return ShareResult{}, fmt.Errorf("cannot share the root folder: %w", ErrInvalidPath)
	}
	var role Role
	if !req.Revoke {
		var err error
		if role, err = ParseRole(req.Role); err != nil {
			return ShareResult{}, err
		}
		if !req.Link && len(req.Addressees) == 0 {
			if req.Quiet {
				return ShareResult{}, nil
			}
			return ShareResult{}, fmt.Errorf("neither a link nor an addressee is given: %w", ErrNoTargetHost)
		}
	}

	n, err := t.resolvePath(ctx, abs, ScopeLive)
	if err != nil {
		return ShareResult{}, err
	}

	var result ShareResult
	if req.Revoke {
		result, err = t.revoke(ctx, n, abs, req)
	} else {
		result, err = t.grant(ctx, n, abs, role, req)
	}
	if len(result.Granted) > 0 || len(result.Revoked) > 0 {
		if refreshErr := t.cache.Refresh(ctx); refreshErr != nil {
			err = errors.Join(err, refreshErr)
		}
	}
	return result, err
}

func (t *DriveTree) grant(ctx context.Context, n Node, p Path, role Role, req ShareRequest) (ShareResult, error) {
	var grantees []Grantee
	if req.Link {
		grantees = append(grantees, Anyone())
	}
	for _, a := range req.Addressees {
		grantees = append(grantees, User(a))
	}

	var result ShareResult
	for _, g := range grantees {
		created, err := t.remote.InsertPermission(ctx, n.ID, g, role)
		if err != nil {
			return result, fmt.Errorf("failed to grant %s on '%s' to %s: %w", role, p, g.Identifier(), err)
		}
		result.Granted = append(result.Granted, created)
		t.logger.Info("granted", logPath(p), zap.String("grantee", g.Identifier()), zap.String("role", string(role)))
	}
	if req.Link {
		result.Link = n.WebViewLink
	}
	return result, nil
}

func (t *DriveTree) revoke(ctx context.Context, n Node, p Path, req ShareRequest) (ShareResult, error) {
	grants, err := t.remote.ListPermissions(ctx, n.ID)
	if err != nil {
		return ShareResult{}, fmt.Errorf("failed to list permissions of '%s': %w", p, err)
	}

	var targets []Grant
	var missing []string
	if req.Link {
		found := false
		for _, g := range grants {
			if g.IsLink() {
				targets = append(targets, g)
				found = true
			}
		}
		if !found {
			missing = append(missing, "link")
		}
	}
	for _, a := range req.Addressees {
		found := false
		for _, g := range grants {
			if g.MatchesIdentifier(a) {
				targets = append(targets, g)
				found = true
			}
		}
		if !found {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 && !req.Quiet {
		return ShareResult{}, fmt.Errorf("'%s' has no permission for %v: %w", p, missing, ErrPermissionNotFound)
	}

	var result ShareResult
	for _, g := range targets {
		if err := t.remote.DeletePermission(ctx, n.ID, g.ID); err != nil {
			return result, fmt.Errorf("failed to revoke permission of %s on '%s': %w", g.Grantee.Identifier(), p, err)
		}
		result.Revoked = append(result.Revoked, g)
		t.logger.Info("revoked", logPath(p), zap.String("grantee", g.Grantee.Identifier()))
	}
	return result, nil
}
