package services

import (
	"context"

	"github.com/dmitrijs2005/mycloud/internal/client/client"
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

// AdminService manages users and addresses any user's files. Every call is
// refused locally, with errx.KindAuthorization and no request, unless the
// current principal is an administrator. The server re-checks regardless.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	SetAdminStatus(ctx context.Context, id int64, isAdmin bool) error
	// ToggleAdmin flips user's admin flag and returns the new value.
	ToggleAdmin(ctx context.Context, user models.User) (bool, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	// CanManage reports whether the principal may delete or demote id.
	CanManage(id int64) bool

	ListUserFiles(ctx context.Context, userID int64) ([]models.FileRecord, models.FileSummary, error)
	DownloadUserFile(ctx context.Context, fileID int64) (*models.Payload, error)
	PreviewUserFile(ctx context.Context, fileID int64) (*models.Payload, error)
	UpdateUserFile(ctx context.Context, fileID int64, update models.FileUpdate) (*models.FileRecord, error)
	DeleteUserFile(ctx context.Context, fileID int64) error
	CreateUserShareLink(ctx context.Context, fileID int64) (models.ShareLink, error)
	RevokeUserShareLink(ctx context.Context, fileID int64) error
}

func errAdminRequired() *errx.Error {
	return &errx.Error{Kind: errx.KindAuthorization, Message: "administrator privileges required"}
}

type adminService struct {
	client client.Client
	view   session.View
	files  scopedFiles
	logger logging.Logger
}

func NewAdminService(c client.Client, view session.View, publicOrigin string, logger logging.Logger) AdminService {
	logger = logger.With("service", "admin")
	return &adminService{
		client: c,
		view:   view,
		files: scopedFiles{
			client:       c,
			scope:        client.ScopeAdmin,
			publicOrigin: publicOrigin,
			logger:       logger,
		},
		logger: logger,
	}
}

func (s *adminService) gate() error {
	if !s.view.IsAdmin() {
		return errAdminRequired()
	}
	return nil
}

func (s *adminService) isSelf(id int64) bool {
	p := s.view.Principal()
	return p != nil && p.ID == id
}

func (s *adminService) CanManage(id int64) bool {
	return s.view.IsAdmin() && !s.isSelf(id)
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.client.ListUsers(ctx)
}

func (s *adminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.gate(); err != nil {
		return err
	}
	if err := validID("user_id", id); err != nil {
		return err
	}
	if s.isSelf(id) {
		return errx.Validation(map[string][]string{"user_id": {"You cannot delete your own account"}})
	}
	if err := s.client.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *adminService) SetAdminStatus(ctx context.Context, id int64, isAdmin bool) error {
	if err := s.gate(); err != nil {
		return err
	}
	if err := validID("user_id", id); err != nil {
		return err
	}
	if !isAdmin && s.isSelf(id) {
		return errx.Validation(map[string][]string{"user_id": {"You cannot remove your own administrator rights"}})
	}
	if err := s.client.SetAdminStatus(ctx, id, isAdmin); err != nil {
		return err
	}
	s.logger.Info(ctx, "admin status changed", "user_id", id, "admin", isAdmin)
	return nil
}

func (s *adminService) ToggleAdmin(ctx context.Context, user models.User) (bool, error) {
	next := !user.IsAdmin
	if err := s.SetAdminStatus(ctx, user.ID, next); err != nil {
		return user.IsAdmin, err
	}
	return next, nil
}

func (s *adminService) GetStats(ctx context.Context) (*models.Stats, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.client.GetStats(ctx)
}

func (s *adminService) ListUserFiles(ctx context.Context, userID int64) ([]models.FileRecord, models.FileSummary, error) {
	if err := s.gate(); err != nil {
		return nil, models.FileSummary{}, err
	}
	if err := validID("user_id", userID); err != nil {
		return nil, models.FileSummary{}, err
	}
	files, err := s.client.ListFiles(ctx, client.ScopeAdmin, models.ListFilter{UserID: userID})
	if err != nil {
		return nil, models.FileSummary{}, err
	}
	return files, models.Summarize(files), nil
}

func (s *adminService) DownloadUserFile(ctx context.Context, fileID int64) (*models.Payload, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.files.download(ctx, fileID)
}

func (s *adminService) PreviewUserFile(ctx context.Context, fileID int64) (*models.Payload, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.files.preview(ctx, fileID)
}

func (s *adminService) UpdateUserFile(ctx context.Context, fileID int64, update models.FileUpdate) (*models.FileRecord, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.files.update(ctx, fileID, update)
}

func (s *adminService) DeleteUserFile(ctx context.Context, fileID int64) error {
	if err := s.gate(); err != nil {
		return err
	}
	return s.files.delete(ctx, fileID)
}

func (s *adminService) CreateUserShareLink(ctx context.Context, fileID int64) (models.ShareLink, error) {
	if err := s.gate(); err != nil {
		return models.ShareLink{}, err
	}
	return s.files.share(ctx, fileID)
}

func (s *adminService) RevokeUserShareLink(ctx context.Context, fileID int64) error {
	if err := s.gate(); err != nil {
		return err
	}
	return s.files.unshare(ctx, fileID)
}
