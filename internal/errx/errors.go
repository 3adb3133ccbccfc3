// Package errx defines the single tagged error value returned by the client
// layers. Every failure that crosses the transport or service boundary is
// normalized into *Error, so callers switch on Kind instead of guessing
// between strings, maps and status codes.
package errx

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	// KindValidation is a client-side, field-scoped failure detected before
	// any network call.
	KindValidation Kind = "validation"
	// KindAuthentication means the session is missing, invalid or expired (401).
	KindAuthentication Kind = "authentication"
	// KindAuthorization means the principal lacks privilege (403, or the
	// local admin gate).
	KindAuthorization Kind = "authorization"
	// KindNotFound means the file, user or identifier does not exist (404).
	KindNotFound Kind = "not_found"
	// KindRejected covers the remaining 4xx answers, e.g. a duplicate
	// username on registration. The server payload is kept verbatim.
	KindRejected Kind = "rejected"
	// KindTransport means no response was received.
	KindTransport Kind = "transport"
	// KindServer covers 5xx answers and undecodable payloads.
	KindServer Kind = "server"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrUnauthorized   = &Error{Kind: KindAuthentication}
	ErrForbidden      = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrRejected       = &Error{Kind: KindRejected}
	ErrUnavailable    = &Error{Kind: KindTransport}
	ErrInternalServer = &Error{Kind: KindServer}
)

// Error is the normalized failure value.
type Error struct {
	Kind    Kind                `json:"kind"`
	Status  int                 `json:"status,omitempty"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	// Payload is the raw server body, when one was received.
	Payload json.RawMessage `json:"payload,omitempty"`
	Err     error           `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		b.WriteString(": ")
		b.WriteString(e.FieldSummary())
	}
	if e.Err != nil && e.Message == "" && len(e.Fields) == 0 {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound)
// works regardless of message or status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// FieldSummary renders the field map as "field: msg; field: msg" in a stable
// order.
func (e *Error) FieldSummary() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// Field returns the first message recorded for name, or "".
func (e *Error) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation builds a KindValidation error from a field map.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// Transport wraps a failure that produced no response.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or "" when err is nil or not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Normalize converts any error into an *Error. Values that already are
// *Error are returned unchanged; others become KindTransport.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return Transport(err)
}
