// Package gdrive implements drivetree.Remote over the Google Drive v3 API.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/errors"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	queryLive    = "trashed = false"
	queryTrashed = "trashed = true"
)

const (
	driveFileFields        = "id,name,mimeType,parents,trashed,size,createdTime,modifiedTime,exportLinks,starred,shared,owners(emailAddress),webViewLink"
	driveFilesFields       = "nextPageToken,files(" + driveFileFields + ")"
	drivePermissionFields  = "id,type,emailAddress,domain,role,allowFileDiscovery,displayName"
	drivePermissionsFields = "nextPageToken,permissions(" + drivePermissionFields + ")"
)

const (
	granteeTypeUser   = "user"
	granteeTypeGroup  = "group"
	granteeTypeDomain = "domain"
	granteeTypeAnyone = "anyone"
)

const pageSize = 1000

// Remote is a drivetree.Remote backed by a Drive service.
type Remote struct {
	service *drive.Service
}

var _ drivetree.Remote = (*Remote)(nil)

// New creates a Remote using the given drive.Service.
func New(service *drive.Service) *Remote {
	return &Remote{service: service}
}

// NewWithOptions creates the drive.Service from client options and wraps it in a Remote.
func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*Remote, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewTransportError("failed to create drive service", err)
	}
	return New(service), nil
}

func (r *Remote) RootID(ctx context.Context) (drivetree.NodeID, error) {
	f, err := r.service.Files.Get("root").
		Context(ctx).
		Fields("id").
		Do()
	if err != nil {
		return "", newDriveError("failed to get root folder", err)
	}
	return drivetree.NodeID(f.Id), nil
}

func (r *Remote) ListLive(ctx context.Context) ([]drivetree.Node, error) {
	return queryNodes(ctx, r.service, queryLive)
}

func (r *Remote) ListTrashed(ctx context.Context) ([]drivetree.Node, error) {
	return queryNodes(ctx, r.service, queryTrashed)
}

func (r *Remote) Create(ctx context.Context, parent drivetree.NodeID, name string, mimeType string) (drivetree.Node, error) {
	f, err := r.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{string(parent)},
	}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(driveFileFields).
		Do()
	if err != nil {
		return drivetree.Node{}, newDriveError(fmt.Sprintf("failed to create '%s'", name), err)
	}
	return newNode(f), nil
}

func (r *Remote) UploadContent(ctx context.Context, id drivetree.NodeID, content io.Reader) error {
	_, err := r.service.Files.Update(string(id), &drive.File{}).
		Context(ctx).
		SupportsAllDrives(true).
		Media(content).
		Fields("id").
		Do()
	if err != nil {
		return newDriveError("failed to upload content", err)
	}
	return nil
}

func (r *Remote) DownloadContent(ctx context.Context, id drivetree.NodeID, exportMimeType string) (io.ReadCloser, error) {
	if exportMimeType != "" {
		resp, err := r.service.Files.Export(string(id), exportMimeType).
			Context(ctx).
			Download()
		if err != nil {
			return nil, newDriveError(fmt.Sprintf("failed to export as '%s'", exportMimeType), err)
		}
		return resp.Body, nil
	}
	resp, err := r.service.Files.Get(string(id)).
		Context(ctx).
		SupportsAllDrives(true).
		Download()
	if err != nil {
		return nil, newDriveError("failed to download content", err)
	}
	return resp.Body, nil
}

func (r *Remote) SetParentsAndName(ctx context.Context, id drivetree.NodeID, parents []drivetree.NodeID, name string) error {
	f, err := r.service.Files.Get(string(id)).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("parents").
		Do()
	if err != nil {
		return newDriveError("failed to get parents", err)
	}
	add, remove := parentsDiff(f.Parents, parents)
	call := r.service.Files.Update(string(id), &drive.File{Name: name}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id")
	if add != "" {
		call = call.AddParents(add)
	}
	if remove != "" {
		call = call.RemoveParents(remove)
	}
	if _, err := call.Do(); err != nil {
		return newDriveError("failed to move file", err)
	}
	return nil
}

func (r *Remote) Trash(ctx context.Context, id drivetree.NodeID) error {
	return r.setTrashed(ctx, id, true)
}

func (r *Remote) Untrash(ctx context.Context, id drivetree.NodeID) error {
	return r.setTrashed(ctx, id, false)
}

func (r *Remote) setTrashed(ctx context.Context, id drivetree.NodeID, trashed bool) error {
	_, err := r.service.Files.Update(string(id), &drive.File{
		Trashed:         trashed,
		ForceSendFields: []string{"Trashed"},
	}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id").
		Do()
	if err != nil {
		if trashed {
			return newDriveError("failed to move file to trash", err)
		}
		return newDriveError("failed to restore file from trash", err)
	}
	return nil
}

func (r *Remote) DeletePermanently(ctx context.Context, id drivetree.NodeID) error {
	err := r.service.Files.Delete(string(id)).
		Context(ctx).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return newDriveError("failed to delete file", err)
	}
	return nil
}

func (r *Remote) ListPermissions(ctx context.Context, id drivetree.NodeID) ([]drivetree.Grant, error) {
	var grants []drivetree.Grant
	err := r.service.Permissions.List(string(id)).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(drivePermissionsFields).
		Pages(ctx, func(list *drive.PermissionList) error {
			for _, p := range list.Permissions {
				grants = append(grants, newGrant(p))
			}
			return nil
		})
	if err != nil {
		return nil, newDriveError("failed to list permissions", err)
	}
	return grants, nil
}

func (r *Remote) InsertPermission(ctx context.Context, id drivetree.NodeID, grantee drivetree.Grantee, role drivetree.Role) (drivetree.Grant, error) {
	call := r.service.Permissions.Create(string(id), newPermission(grantee, role)).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(drivePermissionFields)
	if role == drivetree.RoleOwner {
		call = call.TransferOwnership(true)
	}
	p, err := call.Do()
	if err != nil {
		return drivetree.Grant{}, newDriveError(fmt.Sprintf("failed to grant %s to '%s'", role, grantee.Identifier()), err)
	}
	return newGrant(p), nil
}

func (r *Remote) DeletePermission(ctx context.Context, id drivetree.NodeID, permissionID drivetree.PermissionID) error {
	err := r.service.Permissions.Delete(string(id), string(permissionID)).
		Context(ctx).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return newDriveError("failed to delete permission", err)
	}
	return nil
}

func queryNodes(ctx context.Context, s *drive.Service, query string) (nodes []drivetree.Node, err error) {
	err = s.Files.List().
		Context(ctx).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Q(query).
		PageSize(pageSize).
		Fields(driveFilesFields).
		Pages(ctx, func(list *drive.FileList) error {
			for _, f := range list.Files {
				nodes = append(nodes, newNode(f))
			}
			return nil
		})
	if err != nil {
		return nil, newDriveError("failed to query files", err)
	}
	return nodes, nil
}

func newDriveError(msg string, cause error) error {
	var gErr *googleapi.Error
	if errors.As(cause, &gErr) {
		msg = fmt.Sprintf("%s (status %d)", msg, gErr.Code)
	}
	return errors.NewTransportError(msg, cause)
}

func newNode(f *drive.File) drivetree.Node {
	createdTime, _ := time.Parse(time.RFC3339, f.CreatedTime)
	modifiedTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	n := drivetree.Node{
		ID:           drivetree.NodeID(f.Id),
		Name:         f.Name,
		MimeType:     f.MimeType,
		Trashed:      f.Trashed,
		Size:         f.Size,
		CreatedTime:  createdTime,
		ModifiedTime: modifiedTime,
		Starred:      f.Starred,
		Shared:       f.Shared,
		WebViewLink:  f.WebViewLink,
	}
	for _, p := range f.Parents {
		n.Parents = append(n.Parents, drivetree.NodeID(p))
	}
	for mimeType := range f.ExportLinks {
		n.ExportFormats = append(n.ExportFormats, mimeType)
	}
	sort.Strings(n.ExportFormats)
	for _, o := range f.Owners {
		n.Owners = append(n.Owners, o.EmailAddress)
	}
	return n
}

func newGrant(p *drive.Permission) drivetree.Grant {
	var grantee drivetree.Grantee
	switch p.Type {
	case granteeTypeUser:
		grantee = drivetree.User(p.EmailAddress)
	case granteeTypeGroup:
		grantee = drivetree.Group(p.EmailAddress)
	case granteeTypeDomain:
		grantee = drivetree.Domain(p.Domain)
	default:
		grantee = drivetree.Anyone()
	}
	return drivetree.Grant{
		ID:                 drivetree.PermissionID(p.Id),
		Grantee:            grantee,
		Role:               drivetree.Role(p.Role),
		AllowFileDiscovery: p.AllowFileDiscovery,
		DisplayName:        p.DisplayName,
	}
}

func newPermission(grantee drivetree.Grantee, role drivetree.Role) *drive.Permission {
	p := &drive.Permission{Role: string(role)}
	switch g := grantee.(type) {
	case drivetree.GranteeUser:
		p.Type, p.EmailAddress = granteeTypeUser, g.Email
	case drivetree.GranteeGroup:
		p.Type, p.EmailAddress = granteeTypeGroup, g.Email
	case drivetree.GranteeDomain:
		p.Type, p.Domain = granteeTypeDomain, g.Domain
	case drivetree.GranteeAnyone:
		p.Type = granteeTypeAnyone
	}
	return p
}

// parentsDiff returns the comma separated parent ids to add and to remove to turn current into want.
func parentsDiff(current []string, want []drivetree.NodeID) (add string, remove string) {
	keep := map[string]bool{}
	for _, id := range want {
		keep[string(id)] = true
	}
	had := map[string]bool{}
	var removed []string
	for _, id := range current {
		had[id] = true
		if !keep[id] {
			removed = append(removed, id)
		}
	}
	var added []string
	for _, id := range want {
		if !had[string(id)] {
			added = append(added, string(id))
			had[string(id)] = true
		}
	}
	return strings.Join(added, ","), strings.Join(removed, ",")
}
