package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

// DetailsRepository mirrors the PostgreSQL schema: one row per user and
// kind, a second insert conflicts.
type DetailsRepository struct {
	store *Store
	db    dbx.DBTX
}

func (s *Store) Details(db dbx.DBTX) *DetailsRepository {
	return &DetailsRepository{store: s, db: db}
}

func addOne[T any](st *state, m map[uuid.UUID][]T, userID uuid.UUID, kind string, v T) error {
	if _, ok := st.users[userID]; !ok {
		return fmt.Errorf("%w: %s for unknown user %s", common.ErrStore, kind, userID)
	}
	if len(m[userID]) > 0 {
		return fmt.Errorf("%w: user already has a %s", common.ErrConflict, kind)
	}
	m[userID] = append(m[userID], v)
	return nil
}

func (r *DetailsRepository) AddSocialProfile(ctx context.Context, p *models.SocialProfile) error {
	return r.store.do(r.db, func(st *state) error {
		return addOne(st, st.social, p.UserID, "social profile", *p)
	})
}

func (r *DetailsRepository) AddEducation(ctx context.Context, e *models.EducationHistory) error {
	return r.store.do(r.db, func(st *state) error {
		return addOne(st, st.education, e.UserID, "education history", *e)
	})
}

func (r *DetailsRepository) AddWorkExperience(ctx context.Context, w *models.WorkExperience) error {
	return r.store.do(r.db, func(st *state) error {
		return addOne(st, st.work, w.UserID, "work experience", *w)
	})
}

func (r *DetailsRepository) AddSkill(ctx context.Context, s *models.Skill) error {
	return r.store.do(r.db, func(st *state) error {
		return addOne(st, st.skills, s.UserID, "skill", *s)
	})
}

func (r *DetailsRepository) List(ctx context.Context, userID uuid.UUID) (*models.Details, error) {
	d := &models.Details{}
	err := r.store.do(r.db, func(st *state) error {
		d.SocialProfiles = append([]models.SocialProfile{}, st.social[userID]...)
		d.Education = append([]models.EducationHistory{}, st.education[userID]...)
		d.WorkExperience = append([]models.WorkExperience{}, st.work[userID]...)
		d.Skills = append([]models.Skill{}, st.skills[userID]...)
		return nil
	})
	return d, err
}

func (r *DetailsRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.store.do(r.db, func(st *state) error {
		delete(st.social, userID)
		delete(st.education, userID)
		delete(st.work, userID)
		delete(st.skills, userID)
		return nil
	})
}
