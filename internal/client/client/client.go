package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
)

// Credentials are the session cookies by name.
type Credentials map[string]string

// Scope selects which file endpoints a call addresses.
type Scope int

const (
	ScopeOwner Scope = iota
	ScopeAdmin
)

func (s Scope) String() string {
	if s == ScopeAdmin {
		return "admin"
	}
	return "owner"
}

// filesRoot returns the collection path of the scope.
func (s Scope) filesRoot() string {
	if s == ScopeAdmin {
		return "/storage/files/admin/"
	}
	return "/storage/files/"
}

type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Principal, error)
	Register(ctx context.Context, profile models.Profile) error
	// Logout notifies the server using the given credentials rather than the
	// client's current ones, which may already have been cleared.
	Logout(ctx context.Context, creds Credentials) error

	ListFiles(ctx context.Context, scope Scope, filter models.ListFilter) ([]models.FileRecord, error)
	UploadFile(ctx context.Context, name string, body io.Reader, comment string) (*models.FileRecord, error)
	DownloadFile(ctx context.Context, scope Scope, id int64) (*models.Payload, error)
	PreviewFile(ctx context.Context, scope Scope, id int64) (*models.Payload, error)
	UpdateFile(ctx context.Context, scope Scope, id int64, update models.FileUpdate) (*models.FileRecord, error)
	DeleteFile(ctx context.Context, scope Scope, id int64) error
	CreateShare(ctx context.Context, scope Scope, id int64) (models.ShareLink, error)
	DeleteShare(ctx context.Context, scope Scope, id int64) error

	PublicInfo(ctx context.Context, uid string) (*models.PublicFile, error)
	PublicDownload(ctx context.Context, uid string) (*models.Payload, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	SetAdminStatus(ctx context.Context, id int64, isAdmin bool) error
	GetStats(ctx context.Context) (*models.Stats, error)

	Credentials() Credentials
	SetCredentials(creds Credentials)
	// ClearCredentials drops the session cookies and returns what was held.
	ClearCredentials() Credentials
	Close() error
}
