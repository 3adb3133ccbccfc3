package services

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mycloud/internal/client/client"
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/repositories/state"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client and records the calls it receives.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	LoginRet *models.Principal
	LoginErr error
	// LoginHook, when set, replaces LoginRet/LoginErr.
	LoginHook  func(ctx context.Context) (*models.Principal, error)
	LastLogin  models.Credentials
	LoginCreds client.Credentials

	RegisterErr  error
	LastRegister models.Profile

	LogoutErr   error
	LastLogout  client.Credentials
	LogoutCalls chan client.Credentials

	ListRet    []models.FileRecord
	ListErr    error
	LastScope  client.Scope
	LastFilter models.ListFilter

	UploadRet     *models.FileRecord
	UploadErr     error
	LastUpload    string
	LastUploadCmt string

	PayloadRet *models.Payload
	PayloadErr error
	LastFileID int64

	UpdateRet  *models.FileRecord
	UpdateErr  error
	LastUpdate models.FileUpdate

	DeleteErr error

	ShareRet models.ShareLink
	ShareErr error

	UnshareErr error

	PublicRet *models.PublicFile
	PublicErr error
	LastUID   string

	UsersRet    []models.User
	UsersErr    error
	DelUserErr  error
	LastUserID  int64
	AdminErr    error
	LastIsAdmin bool

	StatsRet *models.Stats
	StatsErr error

	creds  client.Credentials
	closed bool
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.Principal, error) {
	f.record("Login")
	f.mu.Lock()
	f.LastLogin = creds
	hook := f.LoginHook
	f.mu.Unlock()

	p, err := f.LoginRet, f.LoginErr
	if hook != nil {
		p, err = hook(ctx)
	}
	if err == nil {
		f.mu.Lock()
		f.creds = f.LoginCreds
		f.mu.Unlock()
	}
	return p, err
}

func (f *fakeClient) Register(ctx context.Context, p models.Profile) error {
	f.record("Register")
	f.LastRegister = p
	return f.RegisterErr
}

func (f *fakeClient) Logout(ctx context.Context, creds client.Credentials) error {
	f.record("Logout")
	f.mu.Lock()
	f.LastLogout = creds
	f.mu.Unlock()
	if f.LogoutCalls != nil {
		f.LogoutCalls <- creds
	}
	return f.LogoutErr
}

func (f *fakeClient) ListFiles(ctx context.Context, scope client.Scope, filter models.ListFilter) ([]models.FileRecord, error) {
	f.record("ListFiles")
	f.LastScope, f.LastFilter = scope, filter
	return f.ListRet, f.ListErr
}

func (f *fakeClient) UploadFile(ctx context.Context, name string, body io.Reader, comment string) (*models.FileRecord, error) {
	f.record("UploadFile")
	f.LastUpload, f.LastUploadCmt = name, comment
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) DownloadFile(ctx context.Context, scope client.Scope, id int64) (*models.Payload, error) {
	f.record("DownloadFile")
	f.LastScope, f.LastFileID = scope, id
	return f.PayloadRet, f.PayloadErr
}

func (f *fakeClient) PreviewFile(ctx context.Context, scope client.Scope, id int64) (*models.Payload, error) {
	f.record("PreviewFile")
	f.LastScope, f.LastFileID = scope, id
	return f.PayloadRet, f.PayloadErr
}

func (f *fakeClient) UpdateFile(ctx context.Context, scope client.Scope, id int64, u models.FileUpdate) (*models.FileRecord, error) {
	f.record("UpdateFile")
	f.LastScope, f.LastFileID, f.LastUpdate = scope, id, u
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeClient) DeleteFile(ctx context.Context, scope client.Scope, id int64) error {
	f.record("DeleteFile")
	f.LastScope, f.LastFileID = scope, id
	return f.DeleteErr
}

func (f *fakeClient) CreateShare(ctx context.Context, scope client.Scope, id int64) (models.ShareLink, error) {
	f.record("CreateShare")
	f.LastScope, f.LastFileID = scope, id
	return f.ShareRet, f.ShareErr
}

func (f *fakeClient) DeleteShare(ctx context.Context, scope client.Scope, id int64) error {
	f.record("DeleteShare")
	f.LastScope, f.LastFileID = scope, id
	return f.UnshareErr
}

func (f *fakeClient) PublicInfo(ctx context.Context, uid string) (*models.PublicFile, error) {
	f.record("PublicInfo")
	f.LastUID = uid
	return f.PublicRet, f.PublicErr
}

func (f *fakeClient) PublicDownload(ctx context.Context, uid string) (*models.Payload, error) {
	f.record("PublicDownload")
	f.LastUID = uid
	return f.PayloadRet, f.PayloadErr
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.User, error) {
	f.record("ListUsers")
	return f.UsersRet, f.UsersErr
}

func (f *fakeClient) DeleteUser(ctx context.Context, id int64) error {
	f.record("DeleteUser")
	f.LastUserID = id
	return f.DelUserErr
}

func (f *fakeClient) SetAdminStatus(ctx context.Context, id int64, isAdmin bool) error {
	f.record("SetAdminStatus")
	f.LastUserID, f.LastIsAdmin = id, isAdmin
	return f.AdminErr
}

func (f *fakeClient) GetStats(ctx context.Context) (*models.Stats, error) {
	f.record("GetStats")
	return f.StatsRet, f.StatsErr
}

func (f *fakeClient) Credentials() client.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds
}

func (f *fakeClient) SetCredentials(c client.Credentials) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = c
}

func (f *fakeClient) ClearCredentials() client.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.creds
	f.creds = nil
	return c
}

func (f *fakeClient) Close() error {
	f.record("Close")
	f.closed = true
	return nil
}

func newRepo(t *testing.T) state.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, state.RunMigrations(context.Background(), db))
	return state.NewSQLiteRepository(db)
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(newRepo(t), logging.Discard())
}

// authenticate drives store into the authenticated state for p.
func authenticate(t *testing.T, store *session.Store, p *models.Principal) {
	t.Helper()
	ctx := context.Background()
	tk := session.NewTicket()
	require.NoError(t, store.Dispatch(ctx, session.LoginRequestedEvent(tk)))
	require.NoError(t, store.Dispatch(ctx, session.LoginSucceededEvent(tk, p, nil)))
}
