package session

import (
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/google/uuid"
)

type EventType int

const (
	LoginRequested EventType = iota + 1
	LoginSucceeded
	LoginFailed
	LoginCancelled
	ErrorCleared
	RegisterFailed
	LogoutRequested
	SessionRestored
)

func (e EventType) String() string {
	switch e {
	case LoginRequested:
		return "loginRequested"
	case LoginSucceeded:
		return "loginSucceeded"
	case LoginFailed:
		return "loginFailed"
	case LoginCancelled:
		return "loginCancelled"
	case ErrorCleared:
		return "errorCleared"
	case RegisterFailed:
		return "registerFailed"
	case LogoutRequested:
		return "logoutRequested"
	case SessionRestored:
		return "sessionRestored"
	default:
		return "unknown"
	}
}

// Ticket identifies one in-flight login. Only the completion event carrying
// the current ticket is applied.
type Ticket string

func NewTicket() Ticket {
	return Ticket(uuid.NewString())
}

type Event struct {
	Type      EventType
	Ticket    Ticket
	Principal *models.Principal
	Err       *errx.Error
	// Credentials are the transport cookies to persist with the session.
	Credentials map[string]string
	// Authenticated is the persisted flag accompanying SessionRestored.
	Authenticated bool
}

func LoginRequestedEvent(t Ticket) Event {
	return Event{Type: LoginRequested, Ticket: t}
}

func LoginSucceededEvent(t Ticket, p *models.Principal, creds map[string]string) Event {
	return Event{Type: LoginSucceeded, Ticket: t, Principal: p, Credentials: creds}
}

func LoginFailedEvent(t Ticket, err *errx.Error) Event {
	return Event{Type: LoginFailed, Ticket: t, Err: err}
}

func LoginCancelledEvent(t Ticket) Event {
	return Event{Type: LoginCancelled, Ticket: t}
}

func ErrorClearedEvent() Event {
	return Event{Type: ErrorCleared}
}

func RegisterFailedEvent(err *errx.Error) Event {
	return Event{Type: RegisterFailed, Err: err}
}

func LogoutRequestedEvent() Event {
	return Event{Type: LogoutRequested}
}

func SessionRestoredEvent(p *models.Principal, authenticated bool, creds map[string]string) Event {
	return Event{Type: SessionRestored, Principal: p, Authenticated: authenticated, Credentials: creds}
}
