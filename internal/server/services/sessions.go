package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/sessions"
)

// sessionTokenBytes is the amount of randomness in a session token.
const sessionTokenBytes = 32

// SessionToken is what the HTTP layer needs to set the cookie.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
	// Persistent is set for "remember me" sessions, which get a cookie with
	// an explicit expiry instead of a browser-session cookie.
	Persistent bool
}

// SessionService issues and resolves server-side sessions. A session holds
// only the user id; the user is re-read on every CurrentUser call.
type SessionService struct {
	store       sessions.Repository
	credentials *CredentialService
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
	log         logging.Logger
	metrics     *metrics.Metrics
}

func NewSessionService(store sessions.Repository, credentials *CredentialService, cfg *config.Config,
	log logging.Logger, mx *metrics.Metrics) *SessionService {
	return &SessionService{
		store:       store,
		credentials: credentials,
		ttl:         cfg.SessionTTL,
		rememberTTL: cfg.RememberSessionTTL,
		now:         time.Now,
		log:         log.With("module", "sessions"),
		metrics:     mx,
	}
}

// IssueSession starts a session for user. remember selects the long TTL.
func (s *SessionService) IssueSession(ctx context.Context, user *models.User, remember bool) (*SessionToken, error) {
	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: generating session token: %v", common.ErrorInternal, err)
	}

	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}

	now := s.now()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.Set(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "session issued", "user_id", user.ID, "persistent", remember)
	return &SessionToken{Token: token, ExpiresAt: session.ExpiresAt, Persistent: remember}, nil
}

// EndSession clears the session. Unknown or already ended tokens are fine.
func (s *SessionService) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Clear(ctx, token)
}

// CurrentUser resolves token to a live user. Expired sessions and sessions
// of users that no longer exist are cleared and reported as
// common.ErrorUnauthorized.
func (s *SessionService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if !s.now().Before(session.ExpiresAt) {
		s.clearQuietly(ctx, token)
		return nil, common.ErrorUnauthorized
	}

	user, err := s.credentials.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.clearQuietly(ctx, token)
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	return user, nil
}

// Purge drops sessions that have expired by now.
func (s *SessionService) Purge(ctx context.Context) (int64, error) {
	n, err := s.store.Purge(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.Purged(n)
	return n, nil
}

// RunPurger calls Purge every interval until ctx is done.
func (s *SessionService) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Purge(ctx)
			if err != nil {
				s.log.Error(ctx, "session purge failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Debug(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}

func (s *SessionService) clearQuietly(ctx context.Context, token string) {
	if err := s.store.Clear(ctx, token); err != nil {
		s.log.Warn(ctx, "clearing stale session failed", "error", err)
	}
}
