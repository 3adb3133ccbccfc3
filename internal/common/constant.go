// Package common contains constants and small helpers shared by the client
// packages.
package common

const (
	// SessionStateKey names the durable record holding the serialized
	// session state.
	SessionStateKey = "authState"
	// LastUsernameKey remembers the last user who logged in, so prompts can
	// offer it as a default after logout.
	LastUsernameKey = "lastUsername"

	// CSRFCookieName is the cookie the server sets for CSRF protection; its
	// value is echoed back in CSRFHeaderName on unsafe methods.
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"

	// RequestIDHeaderName carries a per-request identifier for log correlation.
	RequestIDHeaderName = "X-Request-ID"
)
