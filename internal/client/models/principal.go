// Package models defines the client-side data models of the My Cloud API.
package models

import "time"

// Principal is the authenticated identity returned by the server. The client
// holds it as an immutable snapshot once logged in.
type Principal struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Email      string    `json:"email"`
	IsAdmin    bool      `json:"is_admin"`
	DateJoined time.Time `json:"date_joined"`
}

// DisplayName returns "First Last" when both are set, otherwise the username.
func (p Principal) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Username
	}
}

// User is an entry of the admin user listing.
type User struct {
	Principal
	FileCount int64  `json:"file_count,omitempty"`
	TotalSize uint64 `json:"total_size,omitempty"`
}
