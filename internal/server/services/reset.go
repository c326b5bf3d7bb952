package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/mail"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/google/uuid"
)

const resetEmailSubject = "Password Reset Request"

// ResetTokenService signs and checks password reset tokens with the
// process-wide secret.
type ResetTokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewResetTokenService(cfg *config.Config) *ResetTokenService {
	return &ResetTokenService{
		secret:   []byte(cfg.SecretKey),
		validity: cfg.ResetTokenValidity,
		now:      time.Now,
	}
}

// Now is the clock the service issues tokens against.
func (s *ResetTokenService) Now() time.Time {
	return s.now()
}

// IssueResetToken returns a token for userID that expires after the
// configured validity.
func (s *ResetTokenService) IssueResetToken(userID uuid.UUID) (string, error) {
	token, err := auth.GenerateResetToken(userID, s.secret, s.now(), s.validity)
	if err != nil {
		return "", fmt.Errorf("%w: signing reset token: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// ValidateResetToken checks token as of now. See auth.ValidateResetToken.
func (s *ResetTokenService) ValidateResetToken(token string, now time.Time) (uuid.UUID, error) {
	return auth.ValidateResetToken(token, s.secret, now)
}

// PasswordResetService runs the emailed reset flow.
type PasswordResetService struct {
	credentials *CredentialService
	tokens      *ResetTokenService
	mailer      mail.Mailer
	baseURL     string
	log         logging.Logger
	metrics     *metrics.Metrics
}

func NewPasswordResetService(credentials *CredentialService, tokens *ResetTokenService, mailer mail.Mailer,
	cfg *config.Config, log logging.Logger, mx *metrics.Metrics) *PasswordResetService {
	return &PasswordResetService{
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
		baseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		log:         log.With("module", "password_reset"),
		metrics:     mx,
	}
}

type resetRequestInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ValidateRequest checks the shape of email without looking it up.
func (s *PasswordResetService) ValidateRequest(email string) error {
	return validateStruct(&resetRequestInput{Email: email})
}

// RequestReset mails a reset link when email belongs to a live user.
// Unknown emails return nil without sending anything. Mail failures are
// returned.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if err := s.ValidateRequest(email); err != nil {
		return err
	}

	user, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "reset requested for unknown email")
			s.metrics.Observe(metrics.OpResetRequest, metrics.ResultRejected)
			return nil
		}
		s.metrics.Observe(metrics.OpResetRequest, metrics.ResultError)
		return err
	}

	token, err := s.tokens.IssueResetToken(user.ID)
	if err != nil {
		s.metrics.Observe(metrics.OpResetRequest, metrics.ResultError)
		return err
	}

	if err := s.mailer.SendEmail(ctx, user.Email, resetEmailSubject, s.resetBody(token)); err != nil {
		s.metrics.Observe(metrics.OpResetRequest, metrics.ResultError)
		return fmt.Errorf("sending reset email: %w", err)
	}

	s.metrics.Observe(metrics.OpResetRequest, metrics.ResultOK)
	s.log.Info(ctx, "reset email sent", "user_id", user.ID)
	return nil
}

func (s *PasswordResetService) resetBody(token string) string {
	return fmt.Sprintf("your reset link is: %s%s?token=%s", s.baseURL, common.ResetLinkPath, url.QueryEscape(token))
}

// CheckToken reports whether token is currently valid for a live user.
func (s *PasswordResetService) CheckToken(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.tokens.ValidateResetToken(token, s.tokens.Now())
	if err != nil {
		return uuid.Nil, err
	}
	return s.liveUser(ctx, userID)
}

// ResetPassword validates token and sets newPassword for its user.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := s.resetPassword(ctx, token, newPassword)
	switch {
	case err == nil:
		s.metrics.Observe(metrics.OpResetPassword, metrics.ResultOK)
	case errors.Is(err, common.ErrInvalidOrExpiredToken), errors.Is(err, common.ErrValidation):
		s.metrics.Observe(metrics.OpResetPassword, metrics.ResultRejected)
	default:
		s.metrics.Observe(metrics.OpResetPassword, metrics.ResultError)
	}
	return err
}

func (s *PasswordResetService) resetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.CheckToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.credentials.UpdatePassword(ctx, userID, newPassword); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: user %s gone", common.ErrInvalidSignature, userID)
		}
		return err
	}
	return nil
}

// liveUser maps a token for a user that no longer exists to the invalid
// token outcome.
func (s *PasswordResetService) liveUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if _, err := s.credentials.GetUser(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return uuid.Nil, fmt.Errorf("%w: user %s gone", common.ErrInvalidSignature, userID)
		}
		return uuid.Nil, err
	}
	return userID, nil
}
