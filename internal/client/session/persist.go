package session

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/errx"
)

// record is the persisted layout of the session.
type record struct {
	User            *models.Principal `json:"user"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	Loading         bool              `json:"loading"`
	Error           *errx.Error       `json:"error"`
	Credentials     map[string]string `json:"credentials,omitempty"`
}

// Load restores the persisted session. Missing, unreadable or malformed data
// leaves the store anonymous; Load never fails.
func (s *Store) Load(ctx context.Context) State {
	raw, err := s.repo.Get(ctx, common.SessionStateKey)
	if err != nil {
		s.logger.Warn(ctx, "could not read persisted session", "error", err)
		return s.Snapshot()
	}
	if raw == nil {
		return s.Snapshot()
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn(ctx, "ignoring malformed persisted session", "error", err)
		return s.Snapshot()
	}

	if rec.User == nil || rec.User.ID == 0 || !rec.IsAuthenticated {
		return s.Snapshot()
	}

	if err := s.Dispatch(ctx, SessionRestoredEvent(rec.User, rec.IsAuthenticated, rec.Credentials)); err != nil {
		s.logger.Warn(ctx, "could not restore session", "error", err)
	} else {
		s.logger.Info(ctx, "session restored", "username", rec.User.Username)
	}
	return s.Snapshot()
}

// Save persists st along with the current credentials. A failure is logged
// and otherwise ignored.
func (s *Store) Save(ctx context.Context, st State) {
	s.save(ctx, st, s.Credentials())
}

func (s *Store) save(ctx context.Context, st State, creds map[string]string) {
	rec := record{
		User:            st.Principal,
		IsAuthenticated: st.IsAuthenticated(),
		Loading:         st.Status == StatusPending,
		Error:           st.LastError,
		Credentials:     creds,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn(ctx, "could not encode session", "error", err)
		return
	}

	values := map[string][]byte{common.SessionStateKey: raw}
	if st.Principal != nil {
		values[common.LastUsernameKey] = []byte(st.Principal.Username)
	}
	if err := s.repo.SetAll(ctx, values); err != nil {
		s.logger.Warn(ctx, "could not persist session", "error", err)
	}
}

// Clear removes the persisted session. A failure is logged and otherwise
// ignored.
func (s *Store) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, common.SessionStateKey); err != nil {
		s.logger.Warn(ctx, "could not clear persisted session", "error", err)
	}
}

// LastUsername returns the username of the last successful login, or "".
func (s *Store) LastUsername(ctx context.Context) string {
	raw, err := s.repo.Get(ctx, common.LastUsernameKey)
	if err != nil {
		s.logger.Debug(ctx, "could not read last username", "error", err)
		return ""
	}
	return string(raw)
}
