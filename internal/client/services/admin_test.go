package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/mycloud/internal/client/client"
	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var root = &models.Principal{ID: 10, Username: "root", IsAdmin: true}

func newAdmin(t *testing.T, fc *fakeClient, p *models.Principal) (AdminService, *session.Store) {
	t.Helper()
	store := newStore(t)
	if p != nil {
		authenticate(t, store, p)
	}
	return NewAdminService(fc, store, origin, logging.Discard()), store
}

func TestAdmin_NonAdminIsRejectedWithoutNetwork(t *testing.T) {
	for _, p := range []*models.Principal{nil, alice} {
		fc := &fakeClient{}
		svc, store := newAdmin(t, fc, p)
		before := store.Snapshot()
		ctx := context.Background()

		ops := map[string]func() error{
			"ListUsers":      func() error { _, err := svc.ListUsers(ctx); return err },
			"DeleteUser":     func() error { return svc.DeleteUser(ctx, 2) },
			"SetAdminStatus": func() error { return svc.SetAdminStatus(ctx, 2, true) },
			"ToggleAdmin": func() error {
				_, err := svc.ToggleAdmin(ctx, models.User{Principal: models.Principal{ID: 2}})
				return err
			},
			"GetStats":      func() error { _, err := svc.GetStats(ctx); return err },
			"ListUserFiles": func() error { _, _, err := svc.ListUserFiles(ctx, 2); return err },
			"Download":      func() error { _, err := svc.DownloadUserFile(ctx, 1); return err },
			"Preview":       func() error { _, err := svc.PreviewUserFile(ctx, 1); return err },
			"Update": func() error {
				_, err := svc.UpdateUserFile(ctx, 1, models.FileUpdate{Comment: common.Ptr("x")})
				return err
			},
			"Delete":  func() error { return svc.DeleteUserFile(ctx, 1) },
			"Share":   func() error { _, err := svc.CreateUserShareLink(ctx, 1); return err },
			"Unshare": func() error { return svc.RevokeUserShareLink(ctx, 1) },
		}
		for name, op := range ops {
			err := op()
			assert.ErrorIs(t, err, errx.ErrForbidden, name)
		}

		assert.Empty(t, fc.Calls())
		assert.Equal(t, before, store.Snapshot(), "no state mutation")
		assert.False(t, svc.CanManage(2))
	}
}

func TestAdmin_SelfProtection(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newAdmin(t, fc, root)
	ctx := context.Background()

	err := svc.DeleteUser(ctx, root.ID)
	e, ok := errx.As(err)
	require.True(t, ok)
	assert.Equal(t, errx.KindValidation, e.Kind)
	assert.NotEmpty(t, e.Field("user_id"))

	err = svc.SetAdminStatus(ctx, root.ID, false)
	require.ErrorIs(t, err, errx.ErrValidation)

	_, err = svc.ToggleAdmin(ctx, models.User{Principal: *root})
	require.ErrorIs(t, err, errx.ErrValidation)

	assert.Empty(t, fc.Calls())
	assert.False(t, svc.CanManage(root.ID))
	assert.True(t, svc.CanManage(2))
}

func TestAdmin_UserManagement(t *testing.T) {
	fc := &fakeClient{UsersRet: []models.User{{Principal: models.Principal{ID: 2, Username: "bob"}}}}
	svc, _ := newAdmin(t, fc, root)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	next, err := svc.ToggleAdmin(ctx, users[0])
	require.NoError(t, err)
	assert.True(t, next)
	assert.Equal(t, int64(2), fc.LastUserID)
	assert.True(t, fc.LastIsAdmin)

	users[0].IsAdmin = true
	next, err = svc.ToggleAdmin(ctx, users[0])
	require.NoError(t, err)
	assert.False(t, next)
	assert.False(t, fc.LastIsAdmin)

	require.NoError(t, svc.DeleteUser(ctx, 2))
	assert.Equal(t, int64(2), fc.LastUserID)
}

func TestAdmin_ToggleFailureKeepsFlag(t *testing.T) {
	fc := &fakeClient{AdminErr: &errx.Error{Kind: errx.KindServer}}
	svc, _ := newAdmin(t, fc, root)

	got, err := svc.ToggleAdmin(context.Background(), models.User{Principal: models.Principal{ID: 2}})
	require.Error(t, err)
	assert.False(t, got)
}

func TestAdmin_StatsAverageGuardsZero(t *testing.T) {
	fc := &fakeClient{StatsRet: &models.Stats{Users: []models.UserStats{{ID: 2, FileCount: 0, TotalSize: 0}}}}
	svc, _ := newAdmin(t, fc, root)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Users[0].AverageFileSize())
}

func TestAdmin_UserFilesUseAdminScope(t *testing.T) {
	fc := &fakeClient{
		ListRet:  []models.FileRecord{{ID: 1, Size: 100}, {ID: 2, Size: 50}},
		ShareRet: models.ShareLink{PublicURL: "/public/u"},
	}
	svc, _ := newAdmin(t, fc, root)
	ctx := context.Background()

	files, summary, err := svc.ListUserFiles(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, models.FileSummary{Count: 2, TotalSize: 150}, summary)
	assert.Equal(t, client.ScopeAdmin, fc.LastScope)
	assert.Equal(t, int64(2), fc.LastFilter.UserID)

	_, err = svc.DownloadUserFile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, client.ScopeAdmin, fc.LastScope)

	link, err := svc.CreateUserShareLink(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/public/u", link.PublicURL)

	fc.DeleteErr = &errx.Error{Kind: errx.KindNotFound}
	require.NoError(t, svc.DeleteUserFile(ctx, 1))
	assert.Equal(t, client.ScopeAdmin, fc.LastScope)
}
