package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophaccount/internal/admin"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// flags belong to cobra here, settings come from the environment
	cfg, err := config.LoadConfig(ctx, nil)
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	env := &admin.Env{Config: cfg, Log: log, Out: os.Stdout}
	defer env.Close()

	return admin.NewRootCommand(env).ExecuteContext(ctx)
}
