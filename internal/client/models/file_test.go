package models

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecord_ShareLink(t *testing.T) {
	f := FileRecord{ID: 1}
	_, ok := f.ShareLink("http://localhost:3000")
	require.False(t, ok)
	require.False(t, f.IsShared())

	f.UniqueIdentifier = common.Ptr("")
	require.False(t, f.IsShared())

	f.UniqueIdentifier = common.Ptr("abc-123")
	link, ok := f.ShareLink("http://localhost:3000/")
	require.True(t, ok)
	require.Equal(t, "http://localhost:3000/public/abc-123", link.PublicURL)
}

func TestFileRecord_DecodeNullFields(t *testing.T) {
	var f FileRecord
	err := json.Unmarshal([]byte(`{
		"id": 7, "owner_id": 2, "original_name": "a.txt", "size": 10,
		"upload_date": "2024-05-01T10:00:00Z", "last_download": null,
		"comment": null, "unique_identifier": null
	}`), &f)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), f.Size)
	assert.Nil(t, f.Comment)
	assert.Nil(t, f.LastDownload)
	assert.Equal(t, "", f.CommentText())
}

func TestPublicFile_DropsOwner(t *testing.T) {
	var pf PublicFile
	require.NoError(t, json.Unmarshal([]byte(`{"original_name":"a.txt","owner_id":3,"size":1,"upload_date":"2024-05-01T10:00:00Z"}`), &pf))

	out, err := json.Marshal(pf)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "owner")
}

func TestFileUpdate_OnlySuppliedFields(t *testing.T) {
	require.True(t, FileUpdate{}.IsEmpty())

	out, err := json.Marshal(FileUpdate{Comment: common.Ptr("")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"comment":""}`, string(out))
}

func TestAverageFileSize(t *testing.T) {
	assert.Equal(t, uint64(0), UserStats{FileCount: 0, TotalSize: 100}.AverageFileSize())
	assert.Equal(t, uint64(25), UserStats{FileCount: 4, TotalSize: 100}.AverageFileSize())
}

func TestSummarize(t *testing.T) {
	s := Summarize([]FileRecord{{Size: 3}, {Size: 7}})
	assert.Equal(t, FileSummary{Count: 2, TotalSize: 10}, s)
}

func TestPrincipal_DisplayName(t *testing.T) {
	assert.Equal(t, "bob", Principal{Username: "bob"}.DisplayName())
	assert.Equal(t, "Bob Smith", Principal{Username: "bob", FirstName: "Bob", LastName: "Smith"}.DisplayName())
}
