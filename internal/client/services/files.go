package services

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/mycloud/internal/client/client"
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/netx"
)

// FileService operates on the current principal's files. Listings are never
// cached: every List goes to the server. Failures never touch the session.
type FileService interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.FileRecord, error)
	Upload(ctx context.Context, name string, body io.Reader, comment string) (*models.FileRecord, error)
	Download(ctx context.Context, id int64) (*models.Payload, error)
	Preview(ctx context.Context, id int64) (*models.Payload, error)
	UpdateMetadata(ctx context.Context, id int64, update models.FileUpdate) (*models.FileRecord, error)
	// Delete is idempotent: a file that is already gone counts as deleted.
	Delete(ctx context.Context, id int64) error
	// CreateShareLink returns the server's public URL made absolute against
	// the public origin.
	CreateShareLink(ctx context.Context, id int64) (models.ShareLink, error)
	RevokeShareLink(ctx context.Context, id int64) error

	// GetByUniqueIdentifier and DownloadPublic work without a session. uid
	// may also be a full share link.
	GetByUniqueIdentifier(ctx context.Context, uid string) (*models.PublicFile, error)
	DownloadPublic(ctx context.Context, uid string) (*models.Payload, error)
}

// scopedFiles implements the file verbs shared by the owner and admin scopes.
type scopedFiles struct {
	client       client.Client
	scope        client.Scope
	publicOrigin string
	logger       logging.Logger
}

func (f scopedFiles) download(ctx context.Context, id int64) (*models.Payload, error) {
	if err := validID("file_id", id); err != nil {
		return nil, err
	}
	return f.client.DownloadFile(ctx, f.scope, id)
}

func (f scopedFiles) preview(ctx context.Context, id int64) (*models.Payload, error) {
	if err := validID("file_id", id); err != nil {
		return nil, err
	}
	return f.client.PreviewFile(ctx, f.scope, id)
}

func (f scopedFiles) update(ctx context.Context, id int64, update models.FileUpdate) (*models.FileRecord, error) {
	if err := validID("file_id", id); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, errx.Validation(map[string][]string{"update": {"Nothing to update"}})
	}
	if update.OriginalName != nil {
		name := strings.TrimSpace(*update.OriginalName)
		if name == "" {
			return nil, errx.Validation(map[string][]string{"original_name": {"File name cannot be empty"}})
		}
		update.OriginalName = &name
	}
	return f.client.UpdateFile(ctx, f.scope, id, update)
}

func (f scopedFiles) delete(ctx context.Context, id int64) error {
	if err := validID("file_id", id); err != nil {
		return err
	}
	err := f.client.DeleteFile(ctx, f.scope, id)
	if errx.IsKind(err, errx.KindNotFound) {
		f.logger.Debug(ctx, "file already deleted", "file_id", id, "scope", f.scope.String())
		return nil
	}
	return err
}

func (f scopedFiles) share(ctx context.Context, id int64) (models.ShareLink, error) {
	if err := validID("file_id", id); err != nil {
		return models.ShareLink{}, err
	}
	link, err := f.client.CreateShare(ctx, f.scope, id)
	if err != nil {
		return models.ShareLink{}, err
	}
	abs, err := netx.ResolveReference(f.publicOrigin, link.PublicURL)
	if err != nil {
		return models.ShareLink{}, &errx.Error{Kind: errx.KindServer, Message: "unusable public url", Err: err}
	}
	return models.ShareLink{PublicURL: abs}, nil
}

func (f scopedFiles) unshare(ctx context.Context, id int64) error {
	if err := validID("file_id", id); err != nil {
		return err
	}
	return f.client.DeleteShare(ctx, f.scope, id)
}

func validID(field string, id int64) error {
	if id <= 0 {
		return errx.Validation(map[string][]string{field: {"Must be a positive number"}})
	}
	return nil
}

type fileService struct {
	files scopedFiles
	view  session.View
}

// NewFileService constructs a FileService. publicOrigin is the origin share
// links are resolved against.
func NewFileService(c client.Client, view session.View, publicOrigin string, logger logging.Logger) FileService {
	return &fileService{
		files: scopedFiles{
			client:       c,
			scope:        client.ScopeOwner,
			publicOrigin: publicOrigin,
			logger:       logger.With("service", "files"),
		},
		view: view,
	}
}

// authenticated refuses owner operations without a session.
func (s *fileService) authenticated() error {
	if !s.view.IsAuthenticated() {
		return errx.New(errx.KindAuthentication, "login required")
	}
	return nil
}

func (s *fileService) List(ctx context.Context, filter models.ListFilter) ([]models.FileRecord, error) {
	if err := s.authenticated(); err != nil {
		return nil, err
	}
	filter.UserID = 0
	return s.files.client.ListFiles(ctx, client.ScopeOwner, filter)
}

func (s *fileService) Upload(ctx context.Context, name string, body io.Reader, comment string) (*models.FileRecord, error) {
	if err := s.authenticated(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || body == nil {
		return nil, errx.Validation(map[string][]string{"file": {"Choose a file to upload"}})
	}
	rec, err := s.files.client.UploadFile(ctx, name, body, strings.TrimSpace(comment))
	if err != nil {
		return nil, err
	}
	s.files.logger.Info(ctx, "file uploaded", "file_id", rec.ID, "size", rec.Size)
	return rec, nil
}

func (s *fileService) Download(ctx context.Context, id int64) (*models.Payload, error) {
	if err := s.authenticated(); err != nil {
		return nil, err
	}
	return s.files.download(ctx, id)
}

func (s *fileService) Preview(ctx context.Context, id int64) (*models.Payload, error) {
	if err := s.authenticated(); err != nil {
		return nil, err
	}
	return s.files.preview(ctx, id)
}

func (s *fileService) UpdateMetadata(ctx context.Context, id int64, update models.FileUpdate) (*models.FileRecord, error) {
	if err := s.authenticated(); err != nil {
		return nil, err
	}
	return s.files.update(ctx, id, update)
}

func (s *fileService) Delete(ctx context.Context, id int64) error {
	if err := s.authenticated(); err != nil {
		return err
	}
	return s.files.delete(ctx, id)
}

func (s *fileService) CreateShareLink(ctx context.Context, id int64) (models.ShareLink, error) {
	if err := s.authenticated(); err != nil {
		return models.ShareLink{}, err
	}
	return s.files.share(ctx, id)
}

func (s *fileService) RevokeShareLink(ctx context.Context, id int64) error {
	if err := s.authenticated(); err != nil {
		return err
	}
	return s.files.unshare(ctx, id)
}

func (s *fileService) GetByUniqueIdentifier(ctx context.Context, uid string) (*models.PublicFile, error) {
	uid, err := ParseIdentifier(uid)
	if err != nil {
		return nil, err
	}
	return s.files.client.PublicInfo(ctx, uid)
}

func (s *fileService) DownloadPublic(ctx context.Context, uid string) (*models.Payload, error) {
	uid, err := ParseIdentifier(uid)
	if err != nil {
		return nil, err
	}
	return s.files.client.PublicDownload(ctx, uid)
}

// ParseIdentifier accepts a bare share identifier or a share link and
// returns the identifier.
func ParseIdentifier(s string) (string, error) {
	s = strings.TrimSpace(s)
	if u, err := url.Parse(s); err == nil && (u.IsAbs() || strings.HasPrefix(s, "/")) {
		s = identifierFromPath(u.Path)
	}
	if s == "" || s == "." || s == "/" || strings.ContainsAny(s, "/?#") {
		return "", errx.Validation(map[string][]string{"unique_identifier": {"Enter a share link or identifier"}})
	}
	return s, nil
}

// identifierFromPath takes the segment after "public", which covers both the
// page link and the API info/download links. Without one it falls back to
// the last segment.
func identifierFromPath(p string) string {
	segs := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	for i := len(segs) - 2; i >= 0; i-- {
		if segs[i] == "public" {
			return segs[i+1]
		}
	}
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
