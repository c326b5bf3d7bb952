package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Registration is the sign-up input. Dates use DateLayout.
type Registration struct {
	Username        string `json:"username" validate:"required,min=3,max=20"`
	Email           string `json:"email" validate:"required,email,max=120"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,min=2,max=50"`
	LastName        string `json:"last_name" validate:"required,min=2,max=50"`
	DateOfBirth     string `json:"date_of_birth" validate:"required,datetime=02/01/2006"`
	PhoneNumber     string `json:"phone_number" validate:"required,max=20"`
	StreetAddress   string `json:"street_address" validate:"max=100"`
	City            string `json:"city" validate:"max=50"`
	State           string `json:"state" validate:"max=50"`
	ZipCode         string `json:"zip_code" validate:"max=10"`
	Country         string `json:"country" validate:"max=50"`
	Bio             string `json:"bio" validate:"max=300"`
	Hobbies         string `json:"hobbies" validate:"max=200"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type passwordInput struct {
	Password string `json:"password" validate:"required,password"`
}

// CredentialService owns user accounts and their password hashes.
type CredentialService struct {
	db          dbx.Transactor
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	log         logging.Logger
	metrics     *metrics.Metrics

	// compared against when the username is unknown
	dummyHash string
}

func NewCredentialService(db dbx.Transactor, m repomanager.RepositoryManager, hasher PasswordHasher,
	log logging.Logger, mx *metrics.Metrics) (*CredentialService, error) {

	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("deriving dummy hash: %w", err)
	}

	return &CredentialService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		log:         log.With("module", "credentials"),
		metrics:     mx,
		dummyHash:   dummy,
	}, nil
}

// CreateUser registers a new account. User, Address and UserProfile are
// written in one transaction; a duplicate username or email leaves nothing
// behind.
func (s *CredentialService) CreateUser(ctx context.Context, r Registration) (*models.User, error) {
	user, err := s.createUser(ctx, r)
	switch {
	case err == nil:
		s.metrics.Observe(metrics.OpRegister, metrics.ResultOK)
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrConflict):
		s.metrics.Observe(metrics.OpRegister, metrics.ResultRejected)
	default:
		s.metrics.Observe(metrics.OpRegister, metrics.ResultError)
	}
	return user, err
}

func (s *CredentialService) createUser(ctx context.Context, r Registration) (*models.User, error) {
	if err := validateStruct(&r); err != nil {
		return nil, err
	}

	dob, err := time.Parse(DateLayout, r.DateOfBirth)
	if err != nil {
		return nil, common.NewValidationError("date_of_birth", "must be a date in DD/MM/YYYY format")
	}

	// Early check for a friendlier error; the UNIQUE constraints decide.
	users := s.repomanager.Users(s.db)
	if _, err := users.GetByUsername(ctx, r.Username); err == nil {
		return nil, common.ErrDuplicateUsername
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if _, err := users.GetByEmail(ctx, r.Email); err == nil {
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing password: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     r.Username,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		PasswordHash: hash,
	}

	err = inTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		if err := s.repomanager.Addresses(tx).Create(ctx, &models.Address{
			UserID:        user.ID,
			StreetAddress: r.StreetAddress,
			City:          r.City,
			State:         r.State,
			ZipCode:       r.ZipCode,
			Country:       r.Country,
		}); err != nil {
			return err
		}

		return s.repomanager.Profiles(tx).Create(ctx, &models.UserProfile{
			UserID:      user.ID,
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			DateOfBirth: dob,
			Bio:         r.Bio,
			Hobbies:     r.Hobbies,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// VerifyCredentials returns the user when password matches. Unknown
// usernames and wrong passwords both yield common.ErrorUnauthorized, and
// both cost one hash comparison.
func (s *CredentialService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateStruct(&loginInput{Username: username, Password: password}); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			s.metrics.Observe(metrics.OpLogin, metrics.ResultRejected)
			return nil, common.ErrorUnauthorized
		}
		s.metrics.Observe(metrics.OpLogin, metrics.ResultError)
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !isMismatch(err) {
			s.log.Error(ctx, "stored password hash unusable", "user_id", user.ID, "error", err)
		}
		s.metrics.Observe(metrics.OpLogin, metrics.ResultRejected)
		return nil, common.ErrorUnauthorized
	}

	s.metrics.Observe(metrics.OpLogin, metrics.ResultOK)
	return user, nil
}

// UpdatePassword checks newPassword against the password policy and
// replaces the stored hash.
func (s *CredentialService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if err := validateStruct(&passwordInput{Password: newPassword}); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: hashing password: %v", common.ErrorInternal, err)
	}

	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	s.log.Info(ctx, "password updated", "user_id", userID)
	return nil
}

func (s *CredentialService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

func (s *CredentialService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

// GetByUsername is used by the admin CLI.
func (s *CredentialService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByUsername(ctx, username)
}
