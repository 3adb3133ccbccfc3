// Package services holds the application services of the My Cloud client:
// authentication, the caller's own files and the administrative variants.
// Services talk to the server through client.Client and read or drive the
// session through the session package.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/client/client"
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

// Outcome tags the result of a login.
type Outcome int

const (
	// OutcomeFulfilled means the session is now authenticated.
	OutcomeFulfilled Outcome = iota + 1
	// OutcomeRejected means the login failed; Result.Err says why.
	OutcomeRejected
	// OutcomeIgnored means the response arrived after the attempt had been
	// cancelled or superseded and was dropped.
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFulfilled:
		return "fulfilled"
	case OutcomeRejected:
		return "rejected"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome   Outcome
	Principal *models.Principal
	Err       *errx.Error
}

// AuthService drives login, registration and logout.
//
// Contract:
//   - Restore: load the persisted session at startup.
//   - Login: authenticate; the session goes pending, then authenticated or error.
//   - Register: create an account; does not log in.
//   - Logout: clear the session locally at once, then notify the server in
//     the background.
//   - Cancel: abandon the in-flight login.
//   - ClearError: drop the last auth error.
//   - Close: wait for background notifications and release the transport.
type AuthService interface {
	Restore(ctx context.Context) session.State
	Login(ctx context.Context, username string, password []byte) (Result, error)
	Register(ctx context.Context, profile models.Profile) error
	Logout(ctx context.Context) error
	Cancel(ctx context.Context) error
	ClearError(ctx context.Context) error
	State() session.State
	LastUsername(ctx context.Context) string
	Close(ctx context.Context) error
}

type authService struct {
	client        client.Client
	store         *session.Store
	logger        logging.Logger
	logoutTimeout time.Duration

	mu       sync.Mutex
	inflight map[session.Ticket]context.CancelFunc

	notifications sync.WaitGroup
}

// NewAuthService constructs an AuthService. logoutTimeout bounds the
// background logout notification.
func NewAuthService(c client.Client, store *session.Store, logger logging.Logger, logoutTimeout time.Duration) AuthService {
	return &authService{
		client:        c,
		store:         store,
		logger:        logger.With("service", "auth"),
		logoutTimeout: logoutTimeout,
		inflight:      make(map[session.Ticket]context.CancelFunc),
	}
}

// Restore loads the persisted session and hands its credentials back to the
// transport.
func (a *authService) Restore(ctx context.Context) session.State {
	st := a.store.Load(ctx)
	if st.IsAuthenticated() {
		a.client.SetCredentials(a.store.Credentials())
	}
	return st
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (Result, error) {
	defer common.WipeByteArray(password)

	fields := map[string][]string{}
	if strings.TrimSpace(username) == "" {
		fields["username"] = []string{"Username is required"}
	}
	if len(password) == 0 {
		fields["password"] = []string{"Password is required"}
	}
	if len(fields) > 0 {
		e := errx.Validation(fields)
		return Result{Outcome: OutcomeRejected, Err: e}, e
	}

	ticket := session.NewTicket()
	if err := a.store.Dispatch(ctx, session.LoginRequestedEvent(ticket)); err != nil {
		return Result{}, fmt.Errorf("login: %w", err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	a.track(ticket, cancel)
	defer a.untrack(ticket)

	p, err := a.client.Login(reqCtx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		e := errx.Normalize(err)
		if derr := a.store.Dispatch(ctx, session.LoginFailedEvent(ticket, e)); derr != nil {
			a.logger.Debug(ctx, "login failure dropped", "username", username, "error", derr)
			return Result{Outcome: OutcomeIgnored}, nil
		}
		a.client.ClearCredentials()
		a.logger.Info(ctx, "login rejected", "username", username, "kind", string(e.Kind))
		return Result{Outcome: OutcomeRejected, Err: e}, e
	}

	ev := session.LoginSucceededEvent(ticket, p, a.client.Credentials())
	if derr := a.store.Dispatch(ctx, ev); derr != nil {
		a.logger.Debug(ctx, "login response dropped", "username", username, "error", derr)
		return Result{Outcome: OutcomeIgnored}, nil
	}

	a.logger.Info(ctx, "login succeeded", "username", p.Username, "admin", p.IsAdmin)
	return Result{Outcome: OutcomeFulfilled, Principal: p}, nil
}

func (a *authService) track(t session.Ticket, cancel context.CancelFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight[t] = cancel
}

func (a *authService) untrack(t session.Ticket) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cancel, ok := a.inflight[t]; ok {
		cancel()
		delete(a.inflight, t)
	}
}

// Register validates the profile locally and creates the account. Local
// validation failures never reach the server; server rejections are returned
// with their field messages and recorded on the session.
func (a *authService) Register(ctx context.Context, profile models.Profile) error {
	if fields := profile.Validate(); fields != nil {
		return errx.Validation(fields)
	}

	if err := a.client.Register(ctx, profile); err != nil {
		e := errx.Normalize(err)
		if derr := a.store.Dispatch(ctx, session.RegisterFailedEvent(e)); derr != nil {
			a.logger.Debug(ctx, "register failure not recorded", "error", derr)
		}
		return e
	}

	a.logger.Info(ctx, "account registered", "username", profile.Username)
	return nil
}

// Logout clears the session locally and then notifies the server in the
// background with the credentials captured before clearing. A failed
// notification is logged and does not restore the session.
func (a *authService) Logout(ctx context.Context) error {
	if !a.store.IsAuthenticated() {
		return errx.New(errx.KindAuthentication, "not logged in")
	}

	creds := a.client.ClearCredentials()
	if len(creds) == 0 {
		creds = a.store.Credentials()
	}
	if err := a.store.Dispatch(ctx, session.LogoutRequestedEvent()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	a.notifications.Add(1)
	go func() {
		defer a.notifications.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.logoutTimeout)
		defer cancel()

		if err := a.client.Logout(nctx, client.Credentials(creds)); err != nil {
			a.logger.Warn(nctx, "server logout failed", "error", err)
		}
	}()
	return nil
}

// Cancel abandons the in-flight login. A late response is ignored.
func (a *authService) Cancel(ctx context.Context) error {
	ticket := a.store.Ticket()
	if ticket == "" {
		return nil
	}
	if err := a.store.Dispatch(ctx, session.LoginCancelledEvent(ticket)); err != nil {
		return fmt.Errorf("cancel login: %w", err)
	}
	a.untrack(ticket)
	return nil
}

func (a *authService) ClearError(ctx context.Context) error {
	return a.store.Dispatch(ctx, session.ErrorClearedEvent())
}

func (a *authService) State() session.State {
	return a.store.Snapshot()
}

func (a *authService) LastUsername(ctx context.Context) string {
	return a.store.LastUsername(ctx)
}

// Close waits for pending logout notifications, up to ctx, and closes the
// transport.
func (a *authService) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.notifications.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn(ctx, "gave up waiting for logout notification", "error", ctx.Err())
	}
	return a.client.Close()
}
