package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	gs "github.com/dmitrijs2005/gophaccount/internal/server/grpc"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// Backend is the opened storage of the service.
type Backend struct {
	// DB is nil for the in-memory store.
	DB       *sql.DB
	Store    dbx.Transactor
	Repos    repomanager.RepositoryManager
	Sessions sessions.Repository
	Pinger   gs.Pinger

	closers []func() error
}

// OpenBackend connects to the database named by cfg.DatabaseDSN (or creates
// the in-memory store for DSN "memory") and to the session backend.
func OpenBackend(ctx context.Context, cfg *config.Config, log logging.Logger) (*Backend, error) {
	b := &Backend{}

	var mem *memory.Store
	if cfg.DatabaseDSN == config.DSNMemory {
		mem = memory.NewStore()
		b.Store = mem
		b.Repos = repomanager.NewInMemoryRepositoryManager(mem)
		b.Pinger = gs.NopPinger{}
		log.Warn(ctx, "using in-memory store, data is lost on exit")
	} else {
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		b.closers = append(b.closers, db.Close)

		if err := db.PingContext(ctx); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}

		b.DB = db
		b.Store = dbx.NewSQLDB(db)
		b.Repos = repomanager.NewPostgresRepositoryManager()
		b.Pinger = db
	}

	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b.closers = append(b.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		b.Sessions = sessions.NewRedisRepository(client)

	case config.SessionBackendMemory:
		if mem == nil {
			mem = memory.NewStore()
		}
		b.Sessions = mem.Sessions(mem)

	default:
		b.Sessions = b.Repos.Sessions(b.Store)
	}

	return b, nil
}

// Migrate applies the schema. It is a no-op for the in-memory store.
func (b *Backend) Migrate(ctx context.Context) error {
	if b.DB == nil {
		return nil
	}
	return b.Repos.RunMigrations(ctx, b.DB)
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
