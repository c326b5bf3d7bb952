package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type ArchiveRepository struct {
	store *Store
	db    dbx.DBTX
}

func (s *Store) Archive(db dbx.DBTX) *ArchiveRepository {
	return &ArchiveRepository{store: s, db: db}
}

func (r *ArchiveRepository) InsertUser(ctx context.Context, u *models.User, archivedAt time.Time) error {
	return r.store.do(r.db, func(st *state) error {
		if _, ok := st.archivedUsers[u.ID]; ok {
			return fmt.Errorf("%w: user %s already archived", common.ErrConflict, u.ID)
		}
		st.archivedUsers[u.ID] = archivedUser{user: *u, archivedAt: archivedAt}
		return nil
	})
}

func (r *ArchiveRepository) InsertAddress(ctx context.Context, a *models.Address) error {
	return r.store.do(r.db, func(st *state) error {
		if err := requireArchivedUser(st, a.UserID); err != nil {
			return err
		}
		st.archivedAddresses[a.UserID] = *a
		return nil
	})
}

func (r *ArchiveRepository) InsertProfile(ctx context.Context, p *models.UserProfile) error {
	return r.store.do(r.db, func(st *state) error {
		if err := requireArchivedUser(st, p.UserID); err != nil {
			return err
		}
		st.archivedProfiles[p.UserID] = *p
		return nil
	})
}

func (r *ArchiveRepository) InsertSocialProfile(ctx context.Context, p *models.SocialProfile) error {
	return r.store.do(r.db, func(st *state) error {
		if err := requireArchivedUser(st, p.UserID); err != nil {
			return err
		}
		st.archivedSocial[p.UserID] = append(st.archivedSocial[p.UserID], *p)
		return nil
	})
}

func (r *ArchiveRepository) InsertEducation(ctx context.Context, e *models.EducationHistory) error {
	return r.store.do(r.db, func(st *state) error {
		if err := requireArchivedUser(st, e.UserID); err != nil {
			return err
		}
		st.archivedEducation[e.UserID] = append(st.archivedEducation[e.UserID], *e)
		return nil
	})
}

func (r *ArchiveRepository) InsertWorkExperience(ctx context.Context, w *models.WorkExperience) error {
	return r.store.do(r.db, func(st *state) error {
		if err := requireArchivedUser(st, w.UserID); err != nil {
			return err
		}
		st.archivedWork[w.UserID] = append(st.archivedWork[w.UserID], *w)
		return nil
	})
}

func (r *ArchiveRepository) InsertSkill(ctx context.Context, s *models.Skill) error {
	return r.store.do(r.db, func(st *state) error {
		if err := requireArchivedUser(st, s.UserID); err != nil {
			return err
		}
		st.archivedSkills[s.UserID] = append(st.archivedSkills[s.UserID], *s)
		return nil
	})
}

// requireArchivedUser stands in for the deleted_user foreign keys.
func requireArchivedUser(st *state, userID uuid.UUID) error {
	if _, ok := st.archivedUsers[userID]; !ok {
		return fmt.Errorf("%w: no archived user %s", common.ErrStore, userID)
	}
	return nil
}

func (r *ArchiveRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserRecord, error) {
	var rec *models.UserRecord
	err := r.store.do(r.db, func(st *state) error {
		au, ok := st.archivedUsers[userID]
		if !ok {
			return common.ErrorNotFound
		}
		rec = &models.UserRecord{
			User:       au.user,
			ArchivedAt: au.archivedAt,
			Details: models.Details{
				SocialProfiles: append([]models.SocialProfile{}, st.archivedSocial[userID]...),
				Education:      append([]models.EducationHistory{}, st.archivedEducation[userID]...),
				WorkExperience: append([]models.WorkExperience{}, st.archivedWork[userID]...),
				Skills:         append([]models.Skill{}, st.archivedSkills[userID]...),
			},
		}
		if a, ok := st.archivedAddresses[userID]; ok {
			rec.Address = &a
		}
		if p, ok := st.archivedProfiles[userID]; ok {
			rec.Profile = &p
		}
		return nil
	})
	return rec, err
}
