package drivetree

import (
	"context"
	"io"
)

// Remote is the graph-structured store that DriveTree addresses by path.
// Every method may fail with an error matching ErrTransport.
type Remote interface {
	// RootID returns the id of the root folder.
	RootID(ctx context.Context) (NodeID, error)
	// ListLive returns every object that is not trashed.
	ListLive(ctx context.Context) ([]Node, error)
	// ListTrashed returns every trashed object.
	ListTrashed(ctx context.Context) ([]Node, error)

	// Create creates an empty object named name under parent.
	Create(ctx context.Context, parent NodeID, name string, mimeType string) (Node, error)
	// UploadContent replaces the content of a file.
	UploadContent(ctx context.Context, id NodeID, content io.Reader) error
	// DownloadContent opens the content of a file. If exportMimeType is not empty, the file is exported to it.
	DownloadContent(ctx context.Context, id NodeID, exportMimeType string) (io.ReadCloser, error)

	// SetParentsAndName replaces the parents and the name of an object.
	SetParentsAndName(ctx context.Context, id NodeID, parents []NodeID, name string) error
	Trash(ctx context.Context, id NodeID) error
	Untrash(ctx context.Context, id NodeID) error
	DeletePermanently(ctx context.Context, id NodeID) error

	ListPermissions(ctx context.Context, id NodeID) ([]Grant, error)
	// InsertPermission grants role to grantee and returns the created grant.
	InsertPermission(ctx context.Context, id NodeID, grantee Grantee, role Role) (Grant, error)
	DeletePermission(ctx context.Context, id NodeID, permissionID PermissionID) error
}
