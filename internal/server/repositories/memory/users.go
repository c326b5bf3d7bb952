package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type UsersRepository struct {
	store *Store
	db    dbx.DBTX
}

func (s *Store) Users(db dbx.DBTX) *UsersRepository {
	return &UsersRepository{store: s, db: db}
}

func (r *UsersRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return common.ErrConflict
		}
		for _, u := range st.users {
			if u.Username == user.Username {
				return common.ErrDuplicateUsername
			}
			if u.Email == user.Email {
				return common.ErrDuplicateEmail
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

// LockByID needs no lock here: transactions on the store are serialized.
func (r *UsersRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UsersRepository) find(match func(models.User) bool) (*models.User, error) {
	var found *models.User
	err := r.store.do(r.db, func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				found = &u
				return nil
			}
		}
		return common.ErrorNotFound
	})
	return found, err
}

func (r *UsersRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.store.do(r.db, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return common.ErrorNotFound
		}
		u.PasswordHash = hash
		st.users[id] = u
		return nil
	})
}

func (r *UsersRepository) UpdateContact(ctx context.Context, id uuid.UUID, email, phoneNumber string) error {
	return r.store.do(r.db, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return common.ErrorNotFound
		}
		for _, other := range st.users {
			if other.ID != id && other.Email == email {
				return common.ErrDuplicateEmail
			}
		}
		u.Email = email
		u.PhoneNumber = phoneNumber
		st.users[id] = u
		return nil
	})
}

func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return common.ErrorNotFound
		}
		if hasDependents(st, id) {
			return fmt.Errorf("%w: user %s still has dependent records", common.ErrStore, id)
		}
		delete(st.users, id)
		for token, s := range st.sessions {
			if s.UserID == id {
				delete(st.sessions, token)
			}
		}
		return nil
	})
}

// hasDependents stands in for the foreign keys on the dependent tables.
// Sessions are left out: their foreign key cascades.
func hasDependents(st *state, id uuid.UUID) bool {
	_, addr := st.addresses[id]
	_, prof := st.profiles[id]
	return addr || prof ||
		len(st.social[id]) > 0 || len(st.education[id]) > 0 ||
		len(st.work[id]) > 0 || len(st.skills[id]) > 0
}
