package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type AddressesRepository struct {
	store *Store
	db    dbx.DBTX
}

func (s *Store) Addresses(db dbx.DBTX) *AddressesRepository {
	return &AddressesRepository{store: s, db: db}
}

func (r *AddressesRepository) Create(ctx context.Context, a *models.Address) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.users[a.UserID]; !ok {
			return fmt.Errorf("%w: address for unknown user %s", common.ErrStore, a.UserID)
		}
		if _, ok := st.addresses[a.UserID]; ok {
			return fmt.Errorf("%w: address already exists", common.ErrConflict)
		}
		st.addresses[a.UserID] = *a
		return nil
	})
}

func (r *AddressesRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var out *models.Address
	err := r.store.do(r.db, func(st *state) error {
		a, ok := st.addresses[userID]
		if !ok {
			return common.ErrorNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *AddressesRepository) Update(ctx context.Context, a *models.Address) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.addresses[a.UserID]; !ok {
			return common.ErrorNotFound
		}
		st.addresses[a.UserID] = *a
		return nil
	})
}

func (r *AddressesRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.store.do(r.db, func(st *state) error {
		delete(st.addresses, userID)
		return nil
	})
}

type ProfilesRepository struct {
	store *Store
	db    dbx.DBTX
}

func (s *Store) Profiles(db dbx.DBTX) *ProfilesRepository {
	return &ProfilesRepository{store: s, db: db}
}

func (r *ProfilesRepository) Create(ctx context.Context, p *models.UserProfile) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.users[p.UserID]; !ok {
			return fmt.Errorf("%w: profile for unknown user %s", common.ErrStore, p.UserID)
		}
		if _, ok := st.profiles[p.UserID]; ok {
			return fmt.Errorf("%w: profile already exists", common.ErrConflict)
		}
		st.profiles[p.UserID] = *p
		return nil
	})
}

func (r *ProfilesRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var out *models.UserProfile
	err := r.store.do(r.db, func(st *state) error {
		p, ok := st.profiles[userID]
		if !ok {
			return common.ErrorNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *ProfilesRepository) Update(ctx context.Context, p *models.UserProfile) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.profiles[p.UserID]; !ok {
			return common.ErrorNotFound
		}
		st.profiles[p.UserID] = *p
		return nil
	})
}

func (r *ProfilesRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.store.do(r.db, func(st *state) error {
		delete(st.profiles, userID)
		return nil
	})
}
