package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/errx"
)

// loginResponse accepts both {"user": {...}} and a bare principal.
type loginResponse struct {
	User *models.Principal `json:"user"`
	models.Principal
}

func (r loginResponse) principal() *models.Principal {
	if r.User != nil && r.User.ID != 0 {
		return r.User
	}
	if r.Principal.ID != 0 {
		p := r.Principal
		return &p
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.Principal, error) {
	var out loginResponse
	r := request{method: http.MethodPost, path: "/users/login/"}
	if err := c.doJSON(ctx, r, creds, &out); err != nil {
		return nil, err
	}
	p := out.principal()
	if p == nil {
		return nil, errx.New(errx.KindServer, "login response carries no user")
	}
	return p, nil
}

func (c *HTTPClient) Register(ctx context.Context, profile models.Profile) error {
	r := request{method: http.MethodPost, path: "/users/register/"}
	return c.doJSON(ctx, r, profile, nil)
}

func (c *HTTPClient) Logout(ctx context.Context, creds Credentials) error {
	if creds == nil {
		creds = Credentials{}
	}
	r := request{method: http.MethodPost, path: "/users/logout/", cookies: creds}
	return c.doJSON(ctx, r, nil, nil)
}

func filePath(scope Scope, id int64, suffix string) string {
	return scope.filesRoot() + strconv.FormatInt(id, 10) + "/" + suffix
}

func publicPath(uid, suffix string) string {
	return "/storage/files/public/" + url.PathEscape(uid) + "/" + suffix
}

func (c *HTTPClient) ListFiles(ctx context.Context, scope Scope, filter models.ListFilter) ([]models.FileRecord, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if scope == ScopeAdmin && filter.UserID != 0 {
		q.Set("user_id", strconv.FormatInt(filter.UserID, 10))
	}

	var out []models.FileRecord
	r := request{method: http.MethodGet, path: scope.filesRoot(), query: q}
	if err := c.doJSON(ctx, r, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UploadFile(ctx context.Context, name string, body io.Reader, comment string) (*models.FileRecord, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, name, body, comment))
	}()

	r := request{
		method:      http.MethodPost,
		path:        ScopeOwner.filesRoot(),
		body:        pr,
		contentType: mw.FormDataContentType(),
		accept:      "application/json",
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}

	var out models.FileRecord
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// writeUpload streams the multipart form. The comment part is omitted when
// empty.
func writeUpload(mw *multipart.Writer, name string, body io.Reader, comment string) error {
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	if comment != "" {
		if err := mw.WriteField("comment", comment); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (c *HTTPClient) DownloadFile(ctx context.Context, scope Scope, id int64) (*models.Payload, error) {
	return c.getPayload(ctx, filePath(scope, id, "download/"), false)
}

func (c *HTTPClient) PreviewFile(ctx context.Context, scope Scope, id int64) (*models.Payload, error) {
	return c.getPayload(ctx, filePath(scope, id, "preview/"), false)
}

func (c *HTTPClient) UpdateFile(ctx context.Context, scope Scope, id int64, update models.FileUpdate) (*models.FileRecord, error) {
	var out models.FileRecord
	r := request{method: http.MethodPatch, path: filePath(scope, id, "")}
	if err := c.doJSON(ctx, r, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, scope Scope, id int64) error {
	r := request{method: http.MethodDelete, path: filePath(scope, id, "")}
	return c.doJSON(ctx, r, nil, nil)
}

func (c *HTTPClient) CreateShare(ctx context.Context, scope Scope, id int64) (models.ShareLink, error) {
	var out models.ShareLink
	r := request{method: http.MethodPost, path: filePath(scope, id, "share/")}
	if err := c.doJSON(ctx, r, nil, &out); err != nil {
		return models.ShareLink{}, err
	}
	if out.PublicURL == "" {
		return models.ShareLink{}, errx.New(errx.KindServer, "share response carries no public_url")
	}
	return out, nil
}

func (c *HTTPClient) DeleteShare(ctx context.Context, scope Scope, id int64) error {
	r := request{method: http.MethodDelete, path: filePath(scope, id, "share/")}
	return c.doJSON(ctx, r, nil, nil)
}

func (c *HTTPClient) PublicInfo(ctx context.Context, uid string) (*models.PublicFile, error) {
	var out models.PublicFile
	r := request{method: http.MethodGet, path: publicPath(uid, "info/"), anonymous: true}
	if err := c.doJSON(ctx, r, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PublicDownload(ctx context.Context, uid string) (*models.Payload, error) {
	return c.getPayload(ctx, publicPath(uid, "download/"), true)
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/users/"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func userPath(id int64, suffix string) string {
	return "/users/" + strconv.FormatInt(id, 10) + "/" + suffix
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, request{method: http.MethodDelete, path: userPath(id, "")}, nil, nil)
}

func (c *HTTPClient) SetAdminStatus(ctx context.Context, id int64, isAdmin bool) error {
	r := request{method: http.MethodPatch, path: userPath(id, "admin-status/")}
	return c.doJSON(ctx, r, map[string]bool{"is_admin": isAdmin}, nil)
}

func (c *HTTPClient) GetStats(ctx context.Context) (*models.Stats, error) {
	var out models.Stats
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/users/stats/"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
