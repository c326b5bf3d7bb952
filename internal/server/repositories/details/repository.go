// Package details stores the one-to-many records of a user: social
// profiles, education history, work experience and skills.
//
// The schema keys each table by user_id, so a user holds at most one row of
// each kind; a second insert of the same kind yields common.ErrConflict. The
// API is list-shaped so callers (the archiver in particular) never assume
// that limit.
package details

import (
	"context"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	AddSocialProfile(ctx context.Context, p *models.SocialProfile) error
	AddEducation(ctx context.Context, e *models.EducationHistory) error
	AddWorkExperience(ctx context.Context, w *models.WorkExperience) error
	AddSkill(ctx context.Context, s *models.Skill) error

	// List returns every detail row of the user. Empty kinds are empty slices.
	List(ctx context.Context, userID uuid.UUID) (*models.Details, error)

	// DeleteByUser removes all detail rows of the user.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
