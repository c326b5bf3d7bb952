// Package archive writes and reads the deleted_* tables that hold
// point-in-time copies of archived users and their records.
//
// Every entity has its own insert with an explicit column list matching the
// destination table; rows are never copied by column introspection.
package archive

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	InsertUser(ctx context.Context, u *models.User, archivedAt time.Time) error
	InsertAddress(ctx context.Context, a *models.Address) error
	InsertProfile(ctx context.Context, p *models.UserProfile) error
	InsertSocialProfile(ctx context.Context, p *models.SocialProfile) error
	InsertEducation(ctx context.Context, e *models.EducationHistory) error
	InsertWorkExperience(ctx context.Context, w *models.WorkExperience) error
	InsertSkill(ctx context.Context, s *models.Skill) error

	// Get reads an archived user with everything archived alongside it.
	// It returns common.ErrorNotFound if the user was never archived.
	Get(ctx context.Context, userID uuid.UUID) (*models.UserRecord, error)
}
