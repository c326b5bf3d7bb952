package details

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AddSocialProfile(ctx context.Context, p *models.SocialProfile) error {
	return r.insert(ctx, "social profile", `
		INSERT INTO social_profile (user_id, platform, profile_url)
		VALUES ($1, $2, $3)
	`, p.UserID, p.Platform, p.ProfileURL)
}

func (r *PostgresRepository) AddEducation(ctx context.Context, e *models.EducationHistory) error {
	return r.insert(ctx, "education history", `
		INSERT INTO education_history (user_id, institution_name, degree, graduation_date)
		VALUES ($1, $2, $3, $4)
	`, e.UserID, e.InstitutionName, e.Degree, e.GraduationDate)
}

func (r *PostgresRepository) AddWorkExperience(ctx context.Context, w *models.WorkExperience) error {
	return r.insert(ctx, "work experience", `
		INSERT INTO work_experience (user_id, company_name, position_title, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
	`, w.UserID, w.CompanyName, w.PositionTitle, w.StartDate, w.EndDate)
}

func (r *PostgresRepository) AddSkill(ctx context.Context, s *models.Skill) error {
	return r.insert(ctx, "skill", `
		INSERT INTO skill (user_id, skill_name)
		VALUES ($1, $2)
	`, s.UserID, s.SkillName)
}

func (r *PostgresRepository) insert(ctx context.Context, kind, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return fmt.Errorf("%w: user already has a %s", common.ErrConflict, kind)
		}
		return common.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID) (*models.Details, error) {
	d := &models.Details{
		SocialProfiles: []models.SocialProfile{},
		Education:      []models.EducationHistory{},
		WorkExperience: []models.WorkExperience{},
		Skills:         []models.Skill{},
	}

	queries := []struct {
		dst   any
		query string
	}{
		{&d.SocialProfiles, `SELECT user_id, platform, profile_url FROM social_profile WHERE user_id = $1`},
		{&d.Education, `SELECT user_id, institution_name, degree, graduation_date FROM education_history WHERE user_id = $1`},
		{&d.WorkExperience, `SELECT user_id, company_name, position_title, start_date, end_date FROM work_experience WHERE user_id = $1`},
		{&d.Skills, `SELECT user_id, skill_name FROM skill WHERE user_id = $1`},
	}

	for _, q := range queries {
		if err := sqlscan.Select(ctx, r.db, q.dst, q.query, userID); err != nil {
			return nil, common.StoreError(err)
		}
	}

	return d, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	for _, table := range []string{"social_profile", "education_history", "work_experience", "skill"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			return common.StoreError(err)
		}
	}
	return nil
}
