// Package memory implements every repository on top of in-process maps.
// It backs development runs (DSN "memory") and service tests.
//
// Store doubles as a dbx.Transactor: WithTx holds a store-wide lock for the
// whole callback and restores a snapshot when the callback fails, so other
// callers never observe a half-applied transaction.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

// ErrNoSQL is returned by the DBTX methods of memory handles.
var ErrNoSQL = errors.New("memory: store does not execute SQL")

type archivedUser struct {
	user       models.User
	archivedAt time.Time
}

type state struct {
	users     map[uuid.UUID]models.User
	addresses map[uuid.UUID]models.Address
	profiles  map[uuid.UUID]models.UserProfile
	social    map[uuid.UUID][]models.SocialProfile
	education map[uuid.UUID][]models.EducationHistory
	work      map[uuid.UUID][]models.WorkExperience
	skills    map[uuid.UUID][]models.Skill

	archivedUsers     map[uuid.UUID]archivedUser
	archivedAddresses map[uuid.UUID]models.Address
	archivedProfiles  map[uuid.UUID]models.UserProfile
	archivedSocial    map[uuid.UUID][]models.SocialProfile
	archivedEducation map[uuid.UUID][]models.EducationHistory
	archivedWork      map[uuid.UUID][]models.WorkExperience
	archivedSkills    map[uuid.UUID][]models.Skill

	sessions map[string]models.Session
}

func newState() *state {
	return &state{
		users:             map[uuid.UUID]models.User{},
		addresses:         map[uuid.UUID]models.Address{},
		profiles:          map[uuid.UUID]models.UserProfile{},
		social:            map[uuid.UUID][]models.SocialProfile{},
		education:         map[uuid.UUID][]models.EducationHistory{},
		work:              map[uuid.UUID][]models.WorkExperience{},
		skills:            map[uuid.UUID][]models.Skill{},
		archivedUsers:     map[uuid.UUID]archivedUser{},
		archivedAddresses: map[uuid.UUID]models.Address{},
		archivedProfiles:  map[uuid.UUID]models.UserProfile{},
		archivedSocial:    map[uuid.UUID][]models.SocialProfile{},
		archivedEducation: map[uuid.UUID][]models.EducationHistory{},
		archivedWork:      map[uuid.UUID][]models.WorkExperience{},
		archivedSkills:    map[uuid.UUID][]models.Skill{},
		sessions:          map[string]models.Session{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		users:             cloneMap(s.users),
		addresses:         cloneMap(s.addresses),
		profiles:          cloneMap(s.profiles),
		social:            cloneSliceMap(s.social),
		education:         cloneSliceMap(s.education),
		work:              cloneSliceMap(s.work),
		skills:            cloneSliceMap(s.skills),
		archivedUsers:     cloneMap(s.archivedUsers),
		archivedAddresses: cloneMap(s.archivedAddresses),
		archivedProfiles:  cloneMap(s.archivedProfiles),
		archivedSocial:    cloneSliceMap(s.archivedSocial),
		archivedEducation: cloneSliceMap(s.archivedEducation),
		archivedWork:      cloneSliceMap(s.archivedWork),
		archivedSkills:    cloneSliceMap(s.archivedSkills),
		sessions:          cloneMap(s.sessions),
	}
}

// Store is the shared in-memory database.
type Store struct {
	txMu sync.Mutex // held for a whole transaction or a standalone call
	mu   sync.Mutex // guards st
	st   *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// Tx is the handle passed to WithTx callbacks. Repositories built on it run
// inside the enclosing transaction.
type Tx struct {
	store *Store
}

var (
	_ dbx.Transactor = (*Store)(nil)
	_ dbx.DBTX       = (*Tx)(nil)
)

// WithTx runs fn with a transactional handle. If fn returns an error or
// panics, every change made through the handle is discarded.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if err != nil {
			rollback()
		}
	}()

	return fn(ctx, &Tx{store: s})
}

// do runs f against the state. Calls made through a *Tx are already inside
// a transaction; anything else is serialized against transactions.
func (s *Store) do(db dbx.DBTX, f func(st *state) error) error {
	if tx, ok := db.(*Tx); !ok || tx.store != s {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.st)
}

// The DBTX methods exist so Store and Tx can travel through code written
// against dbx.DBTX. Memory repositories never call them.

func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, ErrNoSQL
}

func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, ErrNoSQL
}

// QueryRowContext returns nil; there is no way to build a *sql.Row carrying
// an error outside database/sql.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, ErrNoSQL
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, ErrNoSQL
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}
