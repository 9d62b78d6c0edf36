// Package drivetreetest provides in-memory doubles of the drivetree collaborators for tests.
package drivetreetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing/iotest"
	"time"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/errors"
)

// RootID is the id of the root folder of a Remote.
const RootID drivetree.NodeID = "root"

// Remote is an in-memory drivetree.Remote.
// Failures can be injected per operation and every call is recorded.
type Remote struct {
	mu       sync.Mutex
	nodes    map[drivetree.NodeID]*object
	nextID   int
	clock    time.Time
	failures map[string]error
	calls    []string
}

type object struct {
	node    drivetree.Node
	content []byte
	exports map[string][]byte
	grants  []drivetree.Grant
	// readErr ends every download of the content after its last byte.
	readErr error
}

var _ drivetree.Remote = (*Remote)(nil)

// NewRemote returns an empty store.
func NewRemote() *Remote {
	return &Remote{
		nodes:    map[drivetree.NodeID]*object{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failures: map[string]error{},
	}
}

func (r *Remote) newID() drivetree.NodeID {
	r.nextID++
	return drivetree.NodeID(fmt.Sprintf("id%03d", r.nextID))
}

func (r *Remote) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *Remote) add(name, mimeType string, parents []drivetree.NodeID) *object {
	now := r.tick()
	id := r.newID()
	o := &object{node: drivetree.Node{
		ID:           id,
		Name:         name,
		MimeType:     mimeType,
		Parents:      append([]drivetree.NodeID{}, parents...),
		CreatedTime:  now,
		ModifiedTime: now,
		Owners:       []string{"owner@example.com"},
		WebViewLink:  "https://drive.example.com/" + string(id),
	}}
	r.nodes[id] = o
	return o
}

// AddFolder adds a folder and returns its id.
func (r *Remote) AddFolder(name string, parents ...drivetree.NodeID) drivetree.NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(name, drivetree.MimeTypeFolder, parents).node.ID
}

// AddFile adds a plain text file and returns its id.
func (r *Remote) AddFile(name, content string, parents ...drivetree.NodeID) drivetree.NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.add(name, "text/plain", parents)
	o.content = []byte(content)
	o.node.Size = int64(len(content))
	return o.node.ID
}

// AddAppFile adds a proprietary document that can only be exported, to the mime types in exports.
func (r *Remote) AddAppFile(name, mimeType string, exports map[string]string, parents ...drivetree.NodeID) drivetree.NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.add(name, mimeType, parents)
	o.exports = map[string][]byte{}
	for m, c := range exports {
		o.exports[m] = []byte(c)
		o.node.ExportFormats = append(o.node.ExportFormats, m)
	}
	sort.Strings(o.node.ExportFormats)
	return o.node.ID
}

// SetStarred marks a node as starred.
func (r *Remote) SetStarred(id drivetree.NodeID, starred bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.nodes[id]; ok {
		o.node.Starred = starred
	}
}

// AddGrant attaches a grant to a node without recording a call.
func (r *Remote) AddGrant(id drivetree.NodeID, grantee drivetree.Grantee, role drivetree.Role) drivetree.PermissionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addGrant(r.nodes[id], grantee, role).ID
}

func (r *Remote) addGrant(o *object, grantee drivetree.Grantee, role drivetree.Role) drivetree.Grant {
	g := drivetree.Grant{ID: drivetree.PermissionID(r.newID()), Grantee: grantee, Role: role}
	o.grants = append(o.grants, g)
	o.node.Shared = true
	return g
}

// Node returns the current state of a node.
func (r *Remote) Node(id drivetree.NodeID) (drivetree.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.nodes[id]
	if !ok {
		return drivetree.Node{}, false
	}
	return cloneNode(o.node), true
}

// Content returns the content of a file.
func (r *Remote) Content(id drivetree.NodeID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.nodes[id]
	if !ok {
		return "", false
	}
	return string(o.content), true
}

// Grants returns the grants attached to a node.
func (r *Remote) Grants(id drivetree.NodeID) []drivetree.Grant {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.nodes[id]
	if !ok {
		return nil
	}
	return append([]drivetree.Grant{}, o.grants...)
}

// FindByName returns the ids of all nodes named name, in creation order.
func (r *Remote) FindByName(name string) []drivetree.NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []drivetree.NodeID
	for id, o := range r.nodes {
		if o.node.Name == name {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FailOn makes every later call of operation fail with a transport error caused by err.
// Operations are named after the methods, such as "Create" or "ListLive".
func (r *Remote) FailOn(operation string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[operation] = err
}

// BreakContent makes downloads of id deliver the whole content and then fail with a transport error
// caused by err, as a connection dropped mid-transfer does.
func (r *Remote) BreakContent(id drivetree.NodeID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.nodes[id]; ok {
		o.readErr = errors.NewTransportError("connection reset", err)
	}
}

// Calls returns the names of the operations called so far.
func (r *Remote) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

// CallCount returns how many times operation was called.
func (r *Remote) CallCount(operation string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == operation {
			n++
		}
	}
	return n
}

func (r *Remote) call(operation string) error {
	r.calls = append(r.calls, operation)
	if err, ok := r.failures[operation]; ok {
		return errors.NewTransportError(operation+" failed", err)
	}
	return nil
}

func (r *Remote) object(id drivetree.NodeID) (*object, error) {
	o, ok := r.nodes[id]
	if !ok {
		return nil, errors.NewTransportError(fmt.Sprintf("file %s not found", id), nil)
	}
	return o, nil
}

func (r *Remote) RootID(ctx context.Context) (drivetree.NodeID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("RootID"); err != nil {
		return "", err
	}
	return RootID, nil
}

func (r *Remote) ListLive(ctx context.Context) ([]drivetree.Node, error) {
	return r.list("ListLive", false)
}

func (r *Remote) ListTrashed(ctx context.Context) ([]drivetree.Node, error) {
	return r.list("ListTrashed", true)
}

func (r *Remote) list(operation string, trashed bool) ([]drivetree.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call(operation); err != nil {
		return nil, err
	}
	var out []drivetree.Node
	for _, o := range r.nodes {
		if o.node.Trashed == trashed {
			out = append(out, cloneNode(o.node))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Remote) Create(ctx context.Context, parent drivetree.NodeID, name string, mimeType string) (drivetree.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Create"); err != nil {
		return drivetree.Node{}, err
	}
	if parent != RootID {
		if _, err := r.object(parent); err != nil {
			return drivetree.Node{}, err
		}
	}
	return cloneNode(r.add(name, mimeType, []drivetree.NodeID{parent}).node), nil
}

func (r *Remote) UploadContent(ctx context.Context, id drivetree.NodeID, content io.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("UploadContent"); err != nil {
		return err
	}
	o, err := r.object(id)
	if err != nil {
		return err
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return errors.NewTransportError("failed to read content", err)
	}
	o.content = b
	o.node.Size = int64(len(b))
	o.node.ModifiedTime = r.tick()
	return nil
}

func (r *Remote) DownloadContent(ctx context.Context, id drivetree.NodeID, exportMimeType string) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("DownloadContent"); err != nil {
		return nil, err
	}
	o, err := r.object(id)
	if err != nil {
		return nil, err
	}
	b := o.content
	if exportMimeType != "" {
		var ok bool
		if b, ok = o.exports[exportMimeType]; !ok {
			return nil, errors.NewTransportError(fmt.Sprintf("file %s cannot be exported to %s", id, exportMimeType), nil)
		}
	}
	if o.readErr != nil {
		return io.NopCloser(io.MultiReader(bytes.NewReader(b), iotest.ErrReader(o.readErr))), nil
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (r *Remote) SetParentsAndName(ctx context.Context, id drivetree.NodeID, parents []drivetree.NodeID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("SetParentsAndName"); err != nil {
		return err
	}
	o, err := r.object(id)
	if err != nil {
		return err
	}
	o.node.Parents = append([]drivetree.NodeID{}, parents...)
	o.node.Name = name
	o.node.ModifiedTime = r.tick()
	return nil
}

func (r *Remote) Trash(ctx context.Context, id drivetree.NodeID) error {
	return r.setTrashed("Trash", id, true)
}

func (r *Remote) Untrash(ctx context.Context, id drivetree.NodeID) error {
	return r.setTrashed("Untrash", id, false)
}

func (r *Remote) setTrashed(operation string, id drivetree.NodeID, trashed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call(operation); err != nil {
		return err
	}
	o, err := r.object(id)
	if err != nil {
		return err
	}
	o.node.Trashed = trashed
	return nil
}

func (r *Remote) DeletePermanently(ctx context.Context, id drivetree.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("DeletePermanently"); err != nil {
		return err
	}
	if _, err := r.object(id); err != nil {
		return err
	}
	delete(r.nodes, id)
	return nil
}

func (r *Remote) ListPermissions(ctx context.Context, id drivetree.NodeID) ([]drivetree.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("ListPermissions"); err != nil {
		return nil, err
	}
	o, err := r.object(id)
	if err != nil {
		return nil, err
	}
	return append([]drivetree.Grant{}, o.grants...), nil
}

func (r *Remote) InsertPermission(ctx context.Context, id drivetree.NodeID, grantee drivetree.Grantee, role drivetree.Role) (drivetree.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("InsertPermission"); err != nil {
		return drivetree.Grant{}, err
	}
	o, err := r.object(id)
	if err != nil {
		return drivetree.Grant{}, err
	}
	return r.addGrant(o, grantee, role), nil
}

func (r *Remote) DeletePermission(ctx context.Context, id drivetree.NodeID, permissionID drivetree.PermissionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("DeletePermission"); err != nil {
		return err
	}
	o, err := r.object(id)
	if err != nil {
		return err
	}
	for i, g := range o.grants {
		if g.ID == permissionID {
			o.grants = append(o.grants[:i], o.grants[i+1:]...)
			o.node.Shared = len(o.grants) > 0
			return nil
		}
	}
	return errors.NewTransportError(fmt.Sprintf("permission %s not found", permissionID), nil)
}

func cloneNode(n drivetree.Node) drivetree.Node {
	n.Parents = append([]drivetree.NodeID{}, n.Parents...)
	n.ExportFormats = append([]string{}, n.ExportFormats...)
	n.Owners = append([]string{}, n.Owners...)
	return n
}
