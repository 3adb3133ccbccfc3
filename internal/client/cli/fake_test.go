package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/services"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/client/transfer"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

type fakeView struct {
	p    *models.Principal
	subs []func(session.State)
}

func (v *fakeView) Snapshot() session.State {
	if v.p == nil {
		return session.Anonymous()
	}
	return session.State{Principal: v.p, Status: session.StatusAuthenticated}
}
func (v *fakeView) Principal() *models.Principal { return v.p }
func (v *fakeView) IsAuthenticated() bool        { return v.p != nil }
func (v *fakeView) IsAdmin() bool                { return v.p != nil && v.p.IsAdmin }
func (v *fakeView) Subscribe(fn func(session.State)) func() {
	v.subs = append(v.subs, fn)
	return func() { v.subs = nil }
}

// set changes the principal and notifies subscribers like the store does.
func (v *fakeView) set(p *models.Principal) {
	v.p = p
	for _, fn := range v.subs {
		fn(v.Snapshot())
	}
}

type fakeAuth struct {
	view *fakeView

	restoreState session.State
	restored     bool

	loginUser   string
	loginPass   string
	loginRes    services.Result
	loginErr    error
	loginHook   func(ctx context.Context)
	cancelCalls atomic.Int32

	regProfile models.Profile
	regErr     error

	logoutCalls int
	logoutErr   error

	last   string
	closed bool

	// lastErr is reported by State as a failed session until ClearError.
	lastErr    *errx.Error
	clearCalls int
}

func (f *fakeAuth) Restore(context.Context) session.State {
	f.restored = true
	return f.restoreState
}
func (f *fakeAuth) Login(ctx context.Context, u string, pw []byte) (services.Result, error) {
	f.loginUser, f.loginPass = u, string(pw)
	if f.loginHook != nil {
		f.loginHook(ctx)
	}
	if f.loginRes.Outcome == services.OutcomeFulfilled && f.view != nil {
		f.view.set(f.loginRes.Principal)
	}
	return f.loginRes, f.loginErr
}
func (f *fakeAuth) Register(_ context.Context, p models.Profile) error {
	f.regProfile = p
	return f.regErr
}
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	if f.logoutErr == nil && f.view != nil {
		f.view.set(nil)
	}
	return f.logoutErr
}
func (f *fakeAuth) Cancel(context.Context) error { f.cancelCalls.Add(1); return nil }
func (f *fakeAuth) ClearError(context.Context) error {
	f.clearCalls++
	f.lastErr = nil
	return nil
}
func (f *fakeAuth) State() session.State {
	if f.lastErr != nil {
		return session.State{Status: session.StatusError, LastError: f.lastErr}
	}
	return f.view.Snapshot()
}
func (f *fakeAuth) LastUsername(context.Context) string { return f.last }
func (f *fakeAuth) Close(context.Context) error         { f.closed = true; return nil }

type fakeFiles struct {
	calls []string

	listRet    []models.FileRecord
	listFilter models.ListFilter
	listErr    error

	uploadName    string
	uploadBody    string
	uploadComment string
	uploadRet     *models.FileRecord
	uploadErr     error

	payloadBody string
	payloadErr  error

	lastID     int64
	lastUpdate models.FileUpdate
	updateErr  error
	deleteErr  error
	shareRet   models.ShareLink

	publicRet *models.PublicFile
	publicErr error
	lastRef   string
}

func (f *fakeFiles) rec(c string) { f.calls = append(f.calls, c) }

func (f *fakeFiles) payload(name string) *models.Payload {
	return &models.Payload{Name: name, ContentType: "text/plain", Size: int64(len(f.payloadBody)),
		Body: io.NopCloser(strings.NewReader(f.payloadBody))}
}

func (f *fakeFiles) List(_ context.Context, filter models.ListFilter) ([]models.FileRecord, error) {
	f.rec("List")
	f.listFilter = filter
	return f.listRet, f.listErr
}
func (f *fakeFiles) Upload(_ context.Context, name string, body io.Reader, comment string) (*models.FileRecord, error) {
	f.rec("Upload")
	b, _ := io.ReadAll(body)
	f.uploadName, f.uploadBody, f.uploadComment = name, string(b), comment
	return f.uploadRet, f.uploadErr
}
func (f *fakeFiles) Download(_ context.Context, id int64) (*models.Payload, error) {
	f.rec("Download")
	f.lastID = id
	if f.payloadErr != nil {
		return nil, f.payloadErr
	}
	return f.payload("own.txt"), nil
}
func (f *fakeFiles) Preview(_ context.Context, id int64) (*models.Payload, error) {
	f.rec("Preview")
	f.lastID = id
	if f.payloadErr != nil {
		return nil, f.payloadErr
	}
	return f.payload("own.txt"), nil
}
func (f *fakeFiles) UpdateMetadata(_ context.Context, id int64, u models.FileUpdate) (*models.FileRecord, error) {
	f.rec("UpdateMetadata")
	f.lastID, f.lastUpdate = id, u
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	name := "unchanged"
	if u.OriginalName != nil {
		name = *u.OriginalName
	}
	return &models.FileRecord{ID: id, OriginalName: name}, nil
}
func (f *fakeFiles) Delete(_ context.Context, id int64) error {
	f.rec("Delete")
	f.lastID = id
	return f.deleteErr
}
func (f *fakeFiles) CreateShareLink(_ context.Context, id int64) (models.ShareLink, error) {
	f.rec("CreateShareLink")
	f.lastID = id
	return f.shareRet, nil
}
func (f *fakeFiles) RevokeShareLink(_ context.Context, id int64) error {
	f.rec("RevokeShareLink")
	f.lastID = id
	return nil
}
func (f *fakeFiles) GetByUniqueIdentifier(_ context.Context, ref string) (*models.PublicFile, error) {
	f.rec("GetByUniqueIdentifier")
	f.lastRef = ref
	return f.publicRet, f.publicErr
}
func (f *fakeFiles) DownloadPublic(_ context.Context, ref string) (*models.Payload, error) {
	f.rec("DownloadPublic")
	f.lastRef = ref
	return f.payload("public.txt"), nil
}

type fakeAdmin struct {
	calls []string
	self  int64

	users      []models.User
	stats      *models.Stats
	userFiles  []models.FileRecord
	lastUserID int64
	lastFileID int64
	toggleErr  error
	deleteErr  error
}

func (f *fakeAdmin) rec(c string) { f.calls = append(f.calls, c) }

func (f *fakeAdmin) ListUsers(context.Context) ([]models.User, error) {
	f.rec("ListUsers")
	return f.users, nil
}
func (f *fakeAdmin) DeleteUser(_ context.Context, id int64) error {
	f.rec("DeleteUser")
	f.lastUserID = id
	return f.deleteErr
}
func (f *fakeAdmin) SetAdminStatus(_ context.Context, id int64, _ bool) error {
	f.rec("SetAdminStatus")
	f.lastUserID = id
	return nil
}
func (f *fakeAdmin) ToggleAdmin(_ context.Context, u models.User) (bool, error) {
	f.rec("ToggleAdmin")
	f.lastUserID = u.ID
	if f.toggleErr != nil {
		return u.IsAdmin, f.toggleErr
	}
	return !u.IsAdmin, nil
}
func (f *fakeAdmin) GetStats(context.Context) (*models.Stats, error) {
	f.rec("GetStats")
	return f.stats, nil
}
func (f *fakeAdmin) CanManage(id int64) bool { return id != f.self }
func (f *fakeAdmin) ListUserFiles(_ context.Context, id int64) ([]models.FileRecord, models.FileSummary, error) {
	f.rec("ListUserFiles")
	f.lastUserID = id
	return f.userFiles, models.Summarize(f.userFiles), nil
}
func (f *fakeAdmin) DownloadUserFile(_ context.Context, id int64) (*models.Payload, error) {
	f.rec("DownloadUserFile")
	f.lastFileID = id
	return &models.Payload{Name: "theirs.txt", Size: -1, Body: io.NopCloser(strings.NewReader("theirs"))}, nil
}
func (f *fakeAdmin) PreviewUserFile(_ context.Context, id int64) (*models.Payload, error) {
	f.rec("PreviewUserFile")
	f.lastFileID = id
	return &models.Payload{Name: "theirs.txt", Size: -1, Body: io.NopCloser(strings.NewReader("theirs"))}, nil
}
func (f *fakeAdmin) UpdateUserFile(_ context.Context, id int64, _ models.FileUpdate) (*models.FileRecord, error) {
	f.rec("UpdateUserFile")
	f.lastFileID = id
	return &models.FileRecord{ID: id, OriginalName: "theirs.txt"}, nil
}
func (f *fakeAdmin) DeleteUserFile(_ context.Context, id int64) error {
	f.rec("DeleteUserFile")
	f.lastFileID = id
	return nil
}
func (f *fakeAdmin) CreateUserShareLink(_ context.Context, id int64) (models.ShareLink, error) {
	f.rec("CreateUserShareLink")
	f.lastFileID = id
	return models.ShareLink{PublicURL: "http://h/public/x"}, nil
}
func (f *fakeAdmin) RevokeUserShareLink(_ context.Context, id int64) error {
	f.rec("RevokeUserShareLink")
	f.lastFileID = id
	return nil
}

var (
	alice = &models.Principal{ID: 1, Username: "alice", Email: "alice@example.com"}
	root  = &models.Principal{ID: 10, Username: "root", IsAdmin: true}
)

type harness struct {
	app   *App
	out   *bytes.Buffer
	view  *fakeView
	auth  *fakeAuth
	files *fakeFiles
	admin *fakeAdmin
	dir   string
}

func newHarness(t *testing.T, p *models.Principal) *harness {
	t.Helper()
	view := &fakeView{p: p}
	h := &harness{
		out:   &bytes.Buffer{},
		view:  view,
		auth:  &fakeAuth{view: view},
		files: &fakeFiles{},
		admin: &fakeAdmin{self: root.ID},
		dir:   t.TempDir(),
	}
	h.app = NewApp(Deps{
		Auth:        h.auth,
		Files:       h.files,
		Admin:       h.admin,
		View:        view,
		Viewer:      transfer.NewViewer(t.TempDir(), logging.Discard()),
		DownloadDir: h.dir,
		Logger:      logging.Discard(),
	})
	h.app.out = h.out
	h.app.reader = bufio.NewReader(strings.NewReader(""))
	view.Subscribe(h.app.onSession)
	return h
}

// input feeds lines to the prompts of the next commands.
func (h *harness) input(lines ...string) {
	h.app.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}
