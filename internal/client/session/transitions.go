package session

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mycloud/internal/errx"
)

var (
	ErrIllegalTransition = errors.New("illegal session transition")
	ErrStaleTicket       = errors.New("stale login ticket")
)

// effect is the persistence side effect of a transition.
type effect int

const (
	effectNone effect = iota
	effectPersist
	effectPurge
)

// validTransitions lists, per event, the states it may be applied in.
// SessionRestored is legal from every state and is checked separately.
var validTransitions = map[EventType]map[Status]bool{
	LoginRequested:  {StatusAnonymous: true, StatusError: true, StatusPending: true},
	LoginSucceeded:  {StatusPending: true},
	LoginFailed:     {StatusPending: true},
	LoginCancelled:  {StatusPending: true},
	ErrorCleared:    {StatusError: true, StatusAnonymous: true, StatusAuthenticated: true},
	RegisterFailed:  {StatusAnonymous: true, StatusError: true},
	LogoutRequested: {StatusAuthenticated: true},
}

// transition computes the next state and ticket. It never mutates its
// arguments.
func transition(cur State, ticket Ticket, ev Event) (State, Ticket, effect, error) {
	if ev.Type == SessionRestored {
		if ev.Principal == nil || ev.Principal.ID == 0 || !ev.Authenticated {
			return cur, ticket, effectNone, fmt.Errorf("%w: %s without an authenticated principal", ErrIllegalTransition, ev.Type)
		}
		return State{Principal: ev.Principal, Status: StatusAuthenticated}, "", effectPersist, nil
	}

	switch ev.Type {
	case LoginSucceeded, LoginFailed, LoginCancelled:
		if ev.Ticket != ticket {
			return cur, ticket, effectNone, ErrStaleTicket
		}
	}

	if !validTransitions[ev.Type][cur.Status] {
		return cur, ticket, effectNone, fmt.Errorf("%w: %s in %s", ErrIllegalTransition, ev.Type, cur.Status)
	}

	switch ev.Type {
	case LoginRequested:
		if ev.Ticket == "" {
			return cur, ticket, effectNone, fmt.Errorf("%w: %s without a ticket", ErrIllegalTransition, ev.Type)
		}
		return State{Status: StatusPending}, ev.Ticket, effectNone, nil

	case LoginSucceeded, LoginFailed, LoginCancelled:
		switch ev.Type {
		case LoginSucceeded:
			if ev.Principal == nil || ev.Principal.ID == 0 {
				return cur, ticket, effectNone, fmt.Errorf("%w: %s without a principal", ErrIllegalTransition, ev.Type)
			}
			return State{Principal: ev.Principal, Status: StatusAuthenticated}, "", effectPersist, nil
		case LoginFailed:
			err := ev.Err
			if err == nil {
				err = errx.New(errx.KindAuthentication, "login failed")
			}
			return State{Status: StatusError, LastError: err}, "", effectPurge, nil
		default:
			return Anonymous(), "", effectNone, nil
		}

	case ErrorCleared:
		if cur.Status == StatusError {
			return Anonymous(), ticket, effectNone, nil
		}
		next := cur
		next.LastError = nil
		return next, ticket, effectNone, nil

	case RegisterFailed:
		next := cur
		next.LastError = ev.Err
		return next, ticket, effectNone, nil

	case LogoutRequested:
		return Anonymous(), "", effectPurge, nil
	}

	return cur, ticket, effectNone, fmt.Errorf("%w: unknown event %d", ErrIllegalTransition, ev.Type)
}
