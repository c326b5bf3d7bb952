package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

type SessionsRepository struct {
	store *Store
	db    dbx.DBTX
}

func (s *Store) Sessions(db dbx.DBTX) *SessionsRepository {
	return &SessionsRepository{store: s, db: db}
}

func (r *SessionsRepository) Set(ctx context.Context, s *models.Session) error {
	return r.store.do(r.db, func(st *state) error {
		st.sessions[s.Token] = *s
		return nil
	})
}

func (r *SessionsRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	var out *models.Session
	err := r.store.do(r.db, func(st *state) error {
		s, ok := st.sessions[token]
		if !ok {
			return common.ErrorNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *SessionsRepository) Clear(ctx context.Context, token string) error {
	return r.store.do(r.db, func(st *state) error {
		delete(st.sessions, token)
		return nil
	})
}

func (r *SessionsRepository) Purge(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.store.do(r.db, func(st *state) error {
		for token, s := range st.sessions {
			if s.ExpiresAt.Before(now) {
				delete(st.sessions, token)
				n++
			}
		}
		return nil
	})
	return n, err
}
