package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/services"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/client/transfer"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

// Deps are the collaborators App drives.
type Deps struct {
	Auth        services.AuthService
	Files       services.FileService
	Admin       services.AdminService
	View        session.View
	Viewer      *transfer.Viewer
	DownloadDir string
	Logger      logging.Logger
}

type App struct {
	auth        services.AuthService
	files       services.FileService
	admin       services.AdminService
	view        session.View
	viewer      *transfer.Viewer
	downloadDir string
	logger      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu sync.Mutex
	// target is the user whose files the admin is browsing, nil for the
	// principal's own files.
	target *models.User
	// lastFiles and lastUsers hold the latest listings so prompts can name
	// what an id refers to.
	lastFiles map[int64]models.FileRecord
	lastUsers map[int64]models.User
}

// NewApp wires an App reading commands from stdin and writing to stdout.
func NewApp(d Deps) *App {
	return &App{
		auth:        d.Auth,
		files:       d.Files,
		admin:       d.Admin,
		view:        d.View,
		viewer:      d.Viewer,
		downloadDir: d.DownloadDir,
		logger:      d.Logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		lastFiles:   map[int64]models.FileRecord{},
		lastUsers:   map[int64]models.User{},
	}
}

// Run restores the saved session and runs the REPL until the user exits.
// On return the preview is released and pending logout notifications are
// given a chance to finish.
func (a *App) Run(ctx context.Context) {
	unsubscribe := a.view.Subscribe(a.onSession)
	defer unsubscribe()
	defer a.viewer.Close(ctx)
	defer func() {
		if err := a.auth.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn(ctx, "close", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Welcome to My Cloud CLI (type 'help' for commands)")
	if st := a.auth.Restore(ctx); st.IsAuthenticated() {
		fmt.Fprintf(a.out, "Logged in as %s\n", st.Principal.DisplayName())
	}

	runREPL(ctx, a, a.status, a.reader)
}

// onSession drops admin navigation once the principal loses admin rights
// or logs out.
func (a *App) onSession(st session.State) {
	a.logger.Debug(context.Background(), "session changed", "status", st.Status.String())
	if st.IsAdmin() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.target = nil
	a.lastUsers = map[int64]models.User{}
	if !st.IsAuthenticated() {
		a.lastFiles = map[int64]models.FileRecord{}
	}
}

func (a *App) isLoggedIn() bool {
	return a.view.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	return a.view.IsAdmin()
}

// status renders the prompt: username, "*" for administrators and the
// browsed user, if any.
func (a *App) status() string {
	p := a.view.Principal()
	if p == nil {
		return "(guest) "
	}
	s := p.Username
	if p.IsAdmin {
		s += "*"
	}
	if t := a.browsing(); t != nil {
		s += " @" + t.Username
	}
	return "(" + s + ") "
}

func (a *App) browsing() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

func (a *App) setTarget(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.target = u
	a.lastFiles = map[int64]models.FileRecord{}
}

func (a *App) rememberFiles(files []models.FileRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastFiles = make(map[int64]models.FileRecord, len(files))
	for _, f := range files {
		a.lastFiles[f.ID] = f
	}
}

func (a *App) knownFile(id int64) (models.FileRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.lastFiles[id]
	return f, ok
}

func (a *App) forgetFile(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.lastFiles, id)
}

func (a *App) rememberUsers(users []models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastUsers = make(map[int64]models.User, len(users))
	for _, u := range users {
		a.lastUsers[u.ID] = u
	}
}

func (a *App) knownUser(id int64) (models.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.lastUsers[id]
	return u, ok
}
