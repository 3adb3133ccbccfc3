package services

import (
	"context"
	"io"
	"strings"
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

const origin = "http://localhost:3000"

func newFiles(t *testing.T, fc *fakeClient, loggedIn bool) (FileService, *session.Store) {
	t.Helper()
	store := newStore(t)
	if loggedIn {
		authenticate(t, store, alice)
	}
	return NewFileService(fc, store, origin, logging.Discard()), store
}

func TestFiles_RequireSession(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newFiles(t, fc, false)
	ctx := context.Background()

	_, err := svc.List(ctx, models.ListFilter{})
	require.ErrorIs(t, err, errx.ErrUnauthorized)
	_, err = svc.Upload(ctx, "a.txt", strings.NewReader("x"), "")
	require.ErrorIs(t, err, errx.ErrUnauthorized)
	require.ErrorIs(t, svc.Delete(ctx, 1), errx.ErrUnauthorized)

	assert.Empty(t, fc.Calls())
}

func TestList_AlwaysRefetchesOwnerScope(t *testing.T) {
	fc := &fakeClient{ListRet: []models.FileRecord{{ID: 1}}}
	svc, _ := newFiles(t, fc, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		files, err := svc.List(ctx, models.ListFilter{Search: "rep", UserID: 42})
		require.NoError(t, err)
		require.Len(t, files, 1)
	}
	assert.Equal(t, []string{"ListFiles", "ListFiles"}, fc.Calls())
	assert.Equal(t, client.ScopeOwner, fc.LastScope)
	assert.Equal(t, models.ListFilter{Search: "rep"}, fc.LastFilter, "user_id is admin-only")
}

func TestUpload_WithoutCommentYieldsNilComment(t *testing.T) {
	fc := &fakeClient{UploadRet: &models.FileRecord{ID: 3, Size: 10}}
	svc, _ := newFiles(t, fc, true)

	rec, err := svc.Upload(context.Background(), "ten.bin", strings.NewReader("0123456789"), "  ")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rec.Size)
	assert.Nil(t, rec.Comment)
	assert.Equal(t, "", fc.LastUploadCmt)
	assert.Equal(t, "ten.bin", fc.LastUpload)
}

func TestUpload_MissingFileIsValidation(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newFiles(t, fc, true)

	_, err := svc.Upload(context.Background(), "", strings.NewReader("x"), "")
	require.ErrorIs(t, err, errx.ErrValidation)
	assert.Empty(t, fc.Calls())
}

func TestDownloadAndPreview(t *testing.T) {
	fc := &fakeClient{PayloadRet: &models.Payload{Name: "a.txt", Body: io.NopCloser(strings.NewReader("hi"))}}
	svc, _ := newFiles(t, fc, true)
	ctx := context.Background()

	p, err := svc.Download(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", p.Name)
	assert.Equal(t, int64(5), fc.LastFileID)

	_, err = svc.Preview(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(6), fc.LastFileID)

	_, err = svc.Download(ctx, 0)
	require.ErrorIs(t, err, errx.ErrValidation)
}

func TestUpdateMetadata(t *testing.T) {
	fc := &fakeClient{UpdateRet: &models.FileRecord{ID: 2, OriginalName: "b.txt"}}
	svc, _ := newFiles(t, fc, true)
	ctx := context.Background()

	_, err := svc.UpdateMetadata(ctx, 2, models.FileUpdate{})
	require.ErrorIs(t, err, errx.ErrValidation)

	_, err = svc.UpdateMetadata(ctx, 2, models.FileUpdate{OriginalName: common.Ptr("  ")})
	e, _ := errx.As(err)
	require.NotNil(t, e)
	assert.NotEmpty(t, e.Field("original_name"))
	assert.Empty(t, fc.Calls())

	rec, err := svc.UpdateMetadata(ctx, 2, models.FileUpdate{OriginalName: common.Ptr(" b.txt ")})
	require.NoError(t, err)
	assert.Equal(t, "b.txt", rec.OriginalName)
	assert.Equal(t, "b.txt", *fc.LastUpdate.OriginalName)
	assert.Nil(t, fc.LastUpdate.Comment)
}

func TestDelete_NotFoundIsSuccess(t *testing.T) {
	fc := &fakeClient{DeleteErr: &errx.Error{Kind: errx.KindNotFound, Status: 404}}
	svc, _ := newFiles(t, fc, true)
	require.NoError(t, svc.Delete(context.Background(), 4))

	fc.DeleteErr = &errx.Error{Kind: errx.KindAuthorization, Status: 403}
	require.ErrorIs(t, svc.Delete(context.Background(), 4), errx.ErrForbidden)
}

func TestDelete_FailureLeavesSessionAlone(t *testing.T) {
	fc := &fakeClient{DeleteErr: &errx.Error{Kind: errx.KindAuthentication, Status: 401}}
	svc, store := newFiles(t, fc, true)

	require.Error(t, svc.Delete(context.Background(), 4))
	assert.True(t, store.IsAuthenticated())
}

func TestCreateShareLink_ResolvesAgainstOrigin(t *testing.T) {
	fc := &fakeClient{ShareRet: models.ShareLink{PublicURL: "/public/uid-1"}}
	svc, _ := newFiles(t, fc, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		link, err := svc.CreateShareLink(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3000/public/uid-1", link.PublicURL)
	}

	fc.ShareRet = models.ShareLink{PublicURL: "https://share.example.com/p/uid-2"}
	link, err := svc.CreateShareLink(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "https://share.example.com/p/uid-2", link.PublicURL)

	require.NoError(t, svc.RevokeShareLink(ctx, 8))
	assert.Equal(t, "DeleteShare", fc.Calls()[len(fc.Calls())-1])
}

func TestPublicLookup_WorksWithoutSession(t *testing.T) {
	fc := &fakeClient{PublicRet: &models.PublicFile{OriginalName: "a.txt"}}
	svc, _ := newFiles(t, fc, false)
	ctx := context.Background()

	pf, err := svc.GetByUniqueIdentifier(ctx, "http://localhost:3000/public/uid-1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", pf.OriginalName)
	assert.Equal(t, "uid-1", fc.LastUID)

	_, err = svc.DownloadPublic(ctx, "uid-2")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", fc.LastUID)

	_, err = svc.GetByUniqueIdentifier(ctx, "")
	require.ErrorIs(t, err, errx.ErrValidation)
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"abc", "abc", false},
		{" abc ", "abc", false},
		{"http://h/public/abc/", "abc", false},
		{"http://h/public/abc", "abc", false},
		{"http://h/api/storage/files/public/abc/info/", "abc", false},
		{"http://h/api/storage/files/public/abc/download/", "abc", false},
		{"/public/abc", "abc", false},
		{"http://h/share/abc", "abc", false},
		{"a/b", "", true},
		{"", "", true},
		{"http://h/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIdentifier(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
