// Package session holds the client's authentication state: who is logged in,
// whether a login is in flight, and the last auth error. The Store is the
// single writer of that state; everything else reads it through View.
package session

import (
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/errx"
)

type Status int

const (
	StatusAnonymous Status = iota
	StatusPending
	StatusAuthenticated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusPending:
		return "pending"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the session. Principal is non-nil
// exactly when Status is StatusAuthenticated.
type State struct {
	Principal *models.Principal
	Status    Status
	LastError *errx.Error
}

// Anonymous is the default state.
func Anonymous() State {
	return State{Status: StatusAnonymous}
}

func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Principal != nil
}

func (s State) IsAdmin() bool {
	return s.IsAuthenticated() && s.Principal.IsAdmin
}

// clone copies the principal so callers cannot mutate the store's copy.
func (s State) clone() State {
	if s.Principal != nil {
		p := *s.Principal
		s.Principal = &p
	}
	return s
}
