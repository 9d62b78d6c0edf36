package drivetree

import (
	"context"
	"io"
	"time"

	"github.com/Jumpaku/go-drivetree/logging"
	"github.com/Jumpaku/go-drivetree/metrics"
	"go.uber.org/zap"
)

// Instrument decorates remote so that every call is counted in m and logged at debug level.
// Either m or logger may be nil.
func Instrument(remote Remote, m *metrics.Metrics, logger *zap.Logger) Remote {
	if logger == nil {
		logger = logging.Nop()
	}
	return &instrumentedRemote{remote: remote, metrics: m, logger: logger}
}

type instrumentedRemote struct {
	remote  Remote
	metrics *metrics.Metrics
	logger  *zap.Logger
}

var _ Remote = (*instrumentedRemote)(nil)

func (r *instrumentedRemote) observe(op string, start time.Time, err error, fields ...zap.Field) {
	d := time.Since(start)
	r.metrics.RecordRemoteCall(op, d, err)
	fields = append(fields, logging.Op(op), zap.Duration("duration", d))
	if err != nil {
		r.logger.Debug("remote call failed", append(fields, zap.Error(err))...)
		return
	}
	r.logger.Debug("remote call", fields...)
}

func (r *instrumentedRemote) RootID(ctx context.Context) (id NodeID, err error) {
	defer func(start time.Time) { r.observe("root_id", start, err) }(time.Now())
	return r.remote.RootID(ctx)
}

func (r *instrumentedRemote) ListLive(ctx context.Context) (nodes []Node, err error) {
	defer func(start time.Time) { r.observe("list_live", start, err, zap.Int("count", len(nodes))) }(time.Now())
	return r.remote.ListLive(ctx)
}

func (r *instrumentedRemote) ListTrashed(ctx context.Context) (nodes []Node, err error) {
	defer func(start time.Time) { r.observe("list_trashed", start, err, zap.Int("count", len(nodes))) }(time.Now())
	return r.remote.ListTrashed(ctx)
}

func (r *instrumentedRemote) Create(ctx context.Context, parent NodeID, name string, mimeType string) (node Node, err error) {
	defer func(start time.Time) {
		r.observe("create", start, err, logging.NodeID(string(parent)), zap.String("name", name), zap.String("mime_type", mimeType))
	}(time.Now())
	return r.remote.Create(ctx, parent, name, mimeType)
}

func (r *instrumentedRemote) UploadContent(ctx context.Context, id NodeID, content io.Reader) (err error) {
	defer func(start time.Time) { r.observe("upload", start, err, logging.NodeID(string(id))) }(time.Now())
	return r.remote.UploadContent(ctx, id, content)
}

func (r *instrumentedRemote) DownloadContent(ctx context.Context, id NodeID, exportMimeType string) (rc io.ReadCloser, err error) {
	defer func(start time.Time) {
		r.observe("download", start, err, logging.NodeID(string(id)), zap.String("export_mime_type", exportMimeType))
	}(time.Now())
	return r.remote.DownloadContent(ctx, id, exportMimeType)
}

func (r *instrumentedRemote) SetParentsAndName(ctx context.Context, id NodeID, parents []NodeID, name string) (err error) {
	defer func(start time.Time) {
		r.observe("set_parents_and_name", start, err, logging.NodeID(string(id)), zap.Int("parents", len(parents)), zap.String("name", name))
	}(time.Now())
	return r.remote.SetParentsAndName(ctx, id, parents, name)
}

func (r *instrumentedRemote) Trash(ctx context.Context, id NodeID) (err error) {
	defer func(start time.Time) { r.observe("trash", start, err, logging.NodeID(string(id))) }(time.Now())
	return r.remote.Trash(ctx, id)
}

func (r *instrumentedRemote) Untrash(ctx context.Context, id NodeID) (err error) {
	defer func(start time.Time) { r.observe("untrash", start, err, logging.NodeID(string(id))) }(time.Now())
	return r.remote.Untrash(ctx, id)
}

func (r *instrumentedRemote) DeletePermanently(ctx context.Context, id NodeID) (err error) {
	defer func(start time.Time) { r.observe("delete", start, err, logging.NodeID(string(id))) }(time.Now())
	return r.remote.DeletePermanently(ctx, id)
}

func (r *instrumentedRemote) ListPermissions(ctx context.Context, id NodeID) (grants []Grant, err error) {
	defer func(start time.Time) { r.observe("list_permissions", start, err, logging.NodeID(string(id))) }(time.Now())
	return r.remote.ListPermissions(ctx, id)
}

func (r *instrumentedRemote) InsertPermission(ctx context.Context, id NodeID, grantee Grantee, role Role) (grant Grant, err error) {
	defer func(start time.Time) {
		r.observe("insert_permission", start, err, logging.NodeID(string(id)), zap.String("grantee", grantee.Identifier()), zap.String("role", string(role)))
	}(time.Now())
	return r.remote.InsertPermission(ctx, id, grantee, role)
}

func (r *instrumentedRemote) DeletePermission(ctx context.Context, id NodeID, permissionID PermissionID) (err error) {
	defer func(start time.Time) {
		r.observe("delete_permission", start, err, logging.NodeID(string(id)), zap.String("permission_id", string(permissionID)))
	}(time.Now())
	return r.remote.DeletePermission(ctx, id, permissionID)
}
