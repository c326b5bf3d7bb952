package details

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uid = uuid.MustParse("6f1c1b1e-0000-4000-8000-000000000001")

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestAddSkill(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+skill\s*\(user_id,\s*skill_name\)`).
		WithArgs(uid, "Go").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddSkill(context.Background(), &models.Skill{UserID: uid, SkillName: "Go"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEducation_NullGraduation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+education_history`).
		WithArgs(uid, "MIT", "BSc", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddEducation(context.Background(), &models.EducationHistory{UserID: uid, InstitutionName: "MIT", Degree: "BSc"})
	require.NoError(t, err)
}

func TestAddSocialProfile_SecondRowConflicts(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+social_profile`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "social_profile_pkey"})

	err := repo.AddSocialProfile(context.Background(), &models.SocialProfile{UserID: uid, Platform: "gh", ProfileURL: "https://github.com/alice"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.NotErrorIs(t, err, common.ErrStore)
}

func TestAddWorkExperience_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+work_experience`).WillReturnError(errors.New("db down"))

	err := repo.AddWorkExperience(context.Background(), &models.WorkExperience{UserID: uid})
	assert.ErrorIs(t, err, common.ErrStore)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM\s+social_profile`).WithArgs(uid).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "platform", "profile_url"}).
			AddRow(uid.String(), "github", "https://github.com/alice"))
	mock.ExpectQuery(`FROM\s+education_history`).WithArgs(uid).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "institution_name", "degree", "graduation_date"}))
	mock.ExpectQuery(`FROM\s+work_experience`).WithArgs(uid).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "company_name", "position_title", "start_date", "end_date"}).
			AddRow(uid.String(), "Acme", "Engineer", start, nil))
	mock.ExpectQuery(`FROM\s+skill`).WithArgs(uid).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "skill_name"}).AddRow(uid.String(), "Go"))

	got, err := repo.List(context.Background(), uid)
	require.NoError(t, err)

	assert.Equal(t, []models.SocialProfile{{UserID: uid, Platform: "github", ProfileURL: "https://github.com/alice"}}, got.SocialProfiles)
	assert.Empty(t, got.Education)
	assert.NotNil(t, got.Education)
	require.Len(t, got.WorkExperience, 1)
	assert.Equal(t, start, got.WorkExperience[0].StartDate)
	assert.Nil(t, got.WorkExperience[0].EndDate)
	assert.Equal(t, []models.Skill{{UserID: uid, SkillName: "Go"}}, got.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+social_profile`).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), uid)
	assert.ErrorIs(t, err, common.ErrStore)
}

func TestDeleteByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	for _, table := range []string{"social_profile", "education_history", "work_experience", "skill"} {
		mock.ExpectExec(`DELETE\s+FROM\s+` + table + `\s+WHERE\s+user_id\s*=\s*\$1`).
			WithArgs(uid).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.DeleteByUser(context.Background(), uid))
	assert.NoError(t, mock.ExpectationsWereMet())
}
