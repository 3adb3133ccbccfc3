package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/mycloud/internal/client/repositories/state"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *state.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, state.RunMigrations(context.Background(), db))
	return state.NewSQLiteRepository(db)
}

// failingRepo fails every call.
type failingRepo struct {
	calls int
}

var errDisk = errors.New("disk full")

func (f *failingRepo) Get(context.Context, string) ([]byte, error) { f.calls++; return nil, errDisk }
func (f *failingRepo) Delete(context.Context, string) error        { f.calls++; return errDisk }
func (f *failingRepo) SetAll(context.Context, map[string][]byte) error {
	f.calls++
	return errDisk
}

func newStore(t *testing.T) (*Store, *state.SQLiteRepository) {
	t.Helper()
	repo := newSQLiteRepo(t)
	return NewStore(repo, logging.Discard()), repo
}
