package archive

import (
	"context"
	"time"

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

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return common.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) InsertUser(ctx context.Context, u *models.User, archivedAt time.Time) error {
	return r.exec(ctx, `
		INSERT INTO deleted_user (id, username, email, phone_number, password_hash, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Username, u.Email, u.PhoneNumber, u.PasswordHash, archivedAt)
}

func (r *PostgresRepository) InsertAddress(ctx context.Context, a *models.Address) error {
	return r.exec(ctx, `
		INSERT INTO deleted_address (user_id, street_address, city, state, zip_code, country)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.UserID, a.StreetAddress, a.City, a.State, a.ZipCode, a.Country)
}

func (r *PostgresRepository) InsertProfile(ctx context.Context, p *models.UserProfile) error {
	return r.exec(ctx, `
		INSERT INTO deleted_user_profile (user_id, first_name, last_name, date_of_birth, bio, hobbies)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.UserID, p.FirstName, p.LastName, p.DateOfBirth, p.Bio, p.Hobbies)
}

func (r *PostgresRepository) InsertSocialProfile(ctx context.Context, p *models.SocialProfile) error {
	return r.exec(ctx, `
		INSERT INTO deleted_social_profile (user_id, platform, profile_url)
		VALUES ($1, $2, $3)
	`, p.UserID, p.Platform, p.ProfileURL)
}

func (r *PostgresRepository) InsertEducation(ctx context.Context, e *models.EducationHistory) error {
	return r.exec(ctx, `
		INSERT INTO deleted_education_history (user_id, institution_name, degree, graduation_date)
		VALUES ($1, $2, $3, $4)
	`, e.UserID, e.InstitutionName, e.Degree, e.GraduationDate)
}

func (r *PostgresRepository) InsertWorkExperience(ctx context.Context, w *models.WorkExperience) error {
	return r.exec(ctx, `
		INSERT INTO deleted_work_experience (user_id, company_name, position_title, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
	`, w.UserID, w.CompanyName, w.PositionTitle, w.StartDate, w.EndDate)
}

func (r *PostgresRepository) InsertSkill(ctx context.Context, s *models.Skill) error {
	return r.exec(ctx, `
		INSERT INTO deleted_skill (user_id, skill_name)
		VALUES ($1, $2)
	`, s.UserID, s.SkillName)
}

type archivedUser struct {
	models.User
	ArchivedAt time.Time `db:"archived_at"`
}

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserRecord, error) {
	var u archivedUser
	err := sqlscan.Get(ctx, r.db, &u, `
		SELECT id, username, email, phone_number, password_hash, archived_at
		FROM deleted_user
		WHERE id = $1
	`, userID)
	if err != nil {
		if sqlscan.NotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError(err)
	}

	rec := &models.UserRecord{User: u.User, ArchivedAt: u.ArchivedAt}

	var addr models.Address
	if found, err := r.getOptional(ctx, &addr, `
		SELECT user_id, street_address, city, state, zip_code, country
		FROM deleted_address
		WHERE user_id = $1
	`, userID); err != nil {
		return nil, err
	} else if found {
		rec.Address = &addr
	}

	var prof models.UserProfile
	if found, err := r.getOptional(ctx, &prof, `
		SELECT user_id, first_name, last_name, date_of_birth, bio, hobbies
		FROM deleted_user_profile
		WHERE user_id = $1
	`, userID); err != nil {
		return nil, err
	} else if found {
		rec.Profile = &prof
	}

	rec.Details = models.Details{
		SocialProfiles: []models.SocialProfile{},
		Education:      []models.EducationHistory{},
		WorkExperience: []models.WorkExperience{},
		Skills:         []models.Skill{},
	}

	lists := []struct {
		dst   any
		query string
	}{
		{&rec.Details.SocialProfiles, `SELECT user_id, platform, profile_url FROM deleted_social_profile WHERE user_id = $1`},
		{&rec.Details.Education, `SELECT user_id, institution_name, degree, graduation_date FROM deleted_education_history WHERE user_id = $1`},
		{&rec.Details.WorkExperience, `SELECT user_id, company_name, position_title, start_date, end_date FROM deleted_work_experience WHERE user_id = $1`},
		{&rec.Details.Skills, `SELECT user_id, skill_name FROM deleted_skill WHERE user_id = $1`},
	}
	for _, l := range lists {
		if err := sqlscan.Select(ctx, r.db, l.dst, l.query, userID); err != nil {
			return nil, common.StoreError(err)
		}
	}

	return rec, nil
}

func (r *PostgresRepository) getOptional(ctx context.Context, dst any, query string, userID uuid.UUID) (bool, error) {
	if err := sqlscan.Get(ctx, r.db, dst, query, userID); err != nil {
		if sqlscan.NotFound(err) {
			return false, nil
		}
		return false, common.StoreError(err)
	}
	return true, nil
}
