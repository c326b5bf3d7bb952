package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ProfileView is the editable part of an account. Username is fixed at
// registration and is not part of it.
type ProfileView struct {
	Email         string `json:"email"`
	StreetAddress string `json:"street_address"`
	PhoneNumber   string `json:"phone_number"`
	Hobbies       string `json:"hobbies"`
	Bio           string `json:"bio"`
}

// ProfileUpdate changes the fields that are non-nil.
type ProfileUpdate struct {
	Email         *string `json:"email" validate:"omitnil,required,email,max=120"`
	StreetAddress *string `json:"street_address" validate:"omitnil,max=100"`
	PhoneNumber   *string `json:"phone_number" validate:"omitnil,required,max=20"`
	Hobbies       *string `json:"hobbies" validate:"omitnil,max=200"`
	Bio           *string `json:"bio" validate:"omitnil,max=300"`
}

type SocialProfileInput struct {
	Platform   string `json:"platform" validate:"required,max=50"`
	ProfileURL string `json:"profile_url" validate:"required,url,max=200"`
}

type EducationInput struct {
	InstitutionName string `json:"institution_name" validate:"required,max=100"`
	Degree          string `json:"degree" validate:"required,max=50"`
	GraduationDate  string `json:"graduation_date" validate:"omitempty,datetime=02/01/2006"`
}

type WorkExperienceInput struct {
	CompanyName   string `json:"company_name" validate:"required,max=100"`
	PositionTitle string `json:"position_title" validate:"required,max=100"`
	StartDate     string `json:"start_date" validate:"required,datetime=02/01/2006"`
	EndDate       string `json:"end_date" validate:"omitempty,datetime=02/01/2006"`
}

type SkillInput struct {
	SkillName string `json:"skill_name" validate:"required,max=50"`
}

// ProfileService reads and edits profiles and the detail records.
type ProfileService struct {
	db          dbx.Transactor
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewProfileService(db dbx.Transactor, m repomanager.RepositoryManager, log logging.Logger) *ProfileService {
	return &ProfileService{db: db, repomanager: m, log: log.With("module", "profile")}
}

func (s *ProfileService) LoadProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Email: user.Email, PhoneNumber: user.PhoneNumber}

	addr, err := s.repomanager.Addresses(s.db).Get(ctx, userID)
	switch {
	case err == nil:
		view.StreetAddress = addr.StreetAddress
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	prof, err := s.repomanager.Profiles(s.db).Get(ctx, userID)
	switch {
	case err == nil:
		view.Hobbies = prof.Hobbies
		view.Bio = prof.Bio
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	return view, nil
}

// UpdateProfile applies u in one transaction. A new email already used by
// another live user yields common.ErrDuplicateEmail.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, u ProfileUpdate) error {
	if err := validateStruct(&u); err != nil {
		return err
	}

	err := inTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		// serializes with ArchiveUser and with other updates of this user
		users := s.repomanager.Users(tx)
		user, err := users.LockByID(ctx, userID)
		if err != nil {
			return err
		}

		if u.Email != nil || u.PhoneNumber != nil {
			email, phone := user.Email, user.PhoneNumber
			if u.Email != nil {
				email = *u.Email
			}
			if u.PhoneNumber != nil {
				phone = *u.PhoneNumber
			}
			if err := users.UpdateContact(ctx, userID, email, phone); err != nil {
				return err
			}
		}

		if u.StreetAddress != nil {
			if err := s.updateAddress(ctx, tx, userID, *u.StreetAddress); err != nil {
				return err
			}
		}

		if u.Hobbies != nil || u.Bio != nil {
			if err := s.updateProfile(ctx, tx, userID, u.Hobbies, u.Bio); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "profile updated", "user_id", userID)
	return nil
}

func (s *ProfileService) updateAddress(ctx context.Context, tx dbx.DBTX, userID uuid.UUID, street string) error {
	repo := s.repomanager.Addresses(tx)
	addr, err := repo.Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return repo.Create(ctx, &models.Address{UserID: userID, StreetAddress: street})
	}
	if err != nil {
		return err
	}
	addr.StreetAddress = street
	return repo.Update(ctx, addr)
}

// updateProfile needs an existing profile row: first name, last name and
// date of birth are set only at registration.
func (s *ProfileService) updateProfile(ctx context.Context, tx dbx.DBTX, userID uuid.UUID, hobbies, bio *string) error {
	repo := s.repomanager.Profiles(tx)
	prof, err := repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if hobbies != nil {
		prof.Hobbies = *hobbies
	}
	if bio != nil {
		prof.Bio = *bio
	}
	return repo.Update(ctx, prof)
}

func (s *ProfileService) AddSocialProfile(ctx context.Context, userID uuid.UUID, in SocialProfileInput) error {
	if err := validateStruct(&in); err != nil {
		return err
	}
	return s.repomanager.Details(s.db).AddSocialProfile(ctx, &models.SocialProfile{
		UserID:     userID,
		Platform:   in.Platform,
		ProfileURL: in.ProfileURL,
	})
}

func (s *ProfileService) AddEducation(ctx context.Context, userID uuid.UUID, in EducationInput) error {
	if err := validateStruct(&in); err != nil {
		return err
	}
	graduated, err := optionalDate(in.GraduationDate)
	if err != nil {
		return common.NewValidationError("graduation_date", "must be a date in DD/MM/YYYY format")
	}
	return s.repomanager.Details(s.db).AddEducation(ctx, &models.EducationHistory{
		UserID:          userID,
		InstitutionName: in.InstitutionName,
		Degree:          in.Degree,
		GraduationDate:  graduated,
	})
}

func (s *ProfileService) AddWorkExperience(ctx context.Context, userID uuid.UUID, in WorkExperienceInput) error {
	if err := validateStruct(&in); err != nil {
		return err
	}
	start, err := time.Parse(DateLayout, in.StartDate)
	if err != nil {
		return common.NewValidationError("start_date", "must be a date in DD/MM/YYYY format")
	}
	end, err := optionalDate(in.EndDate)
	if err != nil {
		return common.NewValidationError("end_date", "must be a date in DD/MM/YYYY format")
	}
	if end != nil && end.Before(start) {
		return common.NewValidationError("end_date", "must not be before start_date")
	}
	return s.repomanager.Details(s.db).AddWorkExperience(ctx, &models.WorkExperience{
		UserID:        userID,
		CompanyName:   in.CompanyName,
		PositionTitle: in.PositionTitle,
		StartDate:     start,
		EndDate:       end,
	})
}

func (s *ProfileService) AddSkill(ctx context.Context, userID uuid.UUID, in SkillInput) error {
	if err := validateStruct(&in); err != nil {
		return err
	}
	return s.repomanager.Details(s.db).AddSkill(ctx, &models.Skill{UserID: userID, SkillName: in.SkillName})
}

func (s *ProfileService) Details(ctx context.Context, userID uuid.UUID) (*models.Details, error) {
	return s.repomanager.Details(s.db).List(ctx, userID)
}

func optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
