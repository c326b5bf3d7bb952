package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const alicePassword = "Str0ng!Pass"

// --- fakes ---

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeExporter struct {
	got []*models.UserRecord
	err error
}

func (f *fakeExporter) Export(ctx context.Context, rec *models.UserRecord) error {
	f.got = append(f.got, rec)
	return f.err
}

// countingHasher counts comparisons so tests can see the dummy compare.
type countingHasher struct {
	PasswordHasher
	compares int
}

func (h *countingHasher) Compare(hash, password string) error {
	h.compares++
	return h.PasswordHasher.Compare(hash, password)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// --- environment ---

type testEnv struct {
	store       *memory.Store
	rm          repomanager.RepositoryManager
	cfg         *config.Config
	clock       *fakeClock
	hasher      *countingHasher
	mailer      *fakeMailer
	exporter    *fakeExporter
	metrics     *metrics.Metrics
	credentials *CredentialService
	sessions    *SessionService
	tokens      *ResetTokenService
	reset       *PasswordResetService
	profiles    *ProfileService
	archive     *ArchiveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	store := memory.NewStore()
	rm := repomanager.NewInMemoryRepositoryManager(store)
	log := logging.Discard()
	mx := metrics.New(prometheus.NewRegistry())

	env := &testEnv{
		store:    store,
		rm:       rm,
		cfg:      cfg,
		clock:    &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		hasher:   &countingHasher{PasswordHasher: NewBcryptHasher(bcrypt.MinCost)},
		mailer:   &fakeMailer{},
		exporter: &fakeExporter{},
		metrics:  mx,
	}

	var err error
	env.credentials, err = NewCredentialService(store, rm, env.hasher, log, mx)
	require.NoError(t, err)

	env.sessions = NewSessionService(rm.Sessions(store), env.credentials, cfg, log, mx)
	env.sessions.now = env.clock.Now

	env.tokens = NewResetTokenService(cfg)
	env.tokens.now = env.clock.Now

	env.reset = NewPasswordResetService(env.credentials, env.tokens, env.mailer, cfg, log, mx)
	env.profiles = NewProfileService(store, rm, log)

	env.archive = NewArchiveService(store, rm, env.exporter, log, mx)
	env.archive.now = env.clock.Now

	return env
}

func aliceRegistration() Registration {
	return Registration{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        alicePassword,
		ConfirmPassword: alicePassword,
		FirstName:       "Alice",
		LastName:        "Liddell",
		DateOfBirth:     "04/05/1990",
		PhoneNumber:     "+1 555 0100",
		StreetAddress:   "1 Rabbit Hole",
		City:            "Oxford",
		State:           "Oxfordshire",
		ZipCode:         "OX1",
		Country:         "UK",
		Bio:             "curious",
		Hobbies:         "croquet",
	}
}

func (e *testEnv) registerAlice(t *testing.T) *models.User {
	t.Helper()
	u, err := e.credentials.CreateUser(context.Background(), aliceRegistration())
	require.NoError(t, err)
	return u
}
