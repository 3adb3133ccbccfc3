package models

import (
	"io"
	"strings"
	"time"
)

// FileRecord is the server-held metadata of one stored file.
type FileRecord struct {
	ID           int64      `json:"id"`
	OwnerID      int64      `json:"owner_id"`
	OriginalName string     `json:"original_name"`
	Size         uint64     `json:"size"`
	UploadDate   time.Time  `json:"upload_date"`
	LastDownload *time.Time `json:"last_download"`
	Comment      *string    `json:"comment"`
	// UniqueIdentifier is set only once a public link has been created.
	UniqueIdentifier *string `json:"unique_identifier"`
}

// IsShared reports whether the file has a public link.
func (f FileRecord) IsShared() bool {
	return f.UniqueIdentifier != nil && *f.UniqueIdentifier != ""
}

// CommentText returns the comment or "".
func (f FileRecord) CommentText() string {
	if f.Comment == nil {
		return ""
	}
	return *f.Comment
}

// ShareLink derives the public link from the unique identifier. ok is false
// when the file is not shared.
func (f FileRecord) ShareLink(origin string) (link ShareLink, ok bool) {
	if !f.IsShared() {
		return ShareLink{}, false
	}
	return ShareLink{PublicURL: strings.TrimRight(origin, "/") + PublicPath(*f.UniqueIdentifier)}, true
}

// PublicPath is the path of the public page for a share identifier.
func PublicPath(uid string) string {
	return "/public/" + uid
}

// PublicFile is the anonymous view of a shared file. It never carries the
// owner's identity.
type PublicFile struct {
	OriginalName string     `json:"original_name"`
	Size         uint64     `json:"size"`
	UploadDate   time.Time  `json:"upload_date"`
	LastDownload *time.Time `json:"last_download"`
	Comment      *string    `json:"comment"`
}

// ShareLink is a public URL granting anonymous access to one file.
type ShareLink struct {
	PublicURL string `json:"public_url"`
}

// FileUpdate is a partial metadata update. Nil fields are not sent.
type FileUpdate struct {
	OriginalName *string `json:"original_name,omitempty"`
	Comment      *string `json:"comment,omitempty"`
}

// IsEmpty reports whether the update carries no field.
func (u FileUpdate) IsEmpty() bool {
	return u.OriginalName == nil && u.Comment == nil
}

// ListFilter narrows a file listing. UserID is honoured by the admin scope
// only.
type ListFilter struct {
	Search string
	UserID int64
}

// Payload is a binary body received from the server. The caller owns Body
// and must close it.
type Payload struct {
	Name        string
	ContentType string
	// Size is -1 when the server did not announce a length.
	Size int64
	Body io.ReadCloser
}

// Close releases the body.
func (p *Payload) Close() error {
	if p == nil || p.Body == nil {
		return nil
	}
	return p.Body.Close()
}
