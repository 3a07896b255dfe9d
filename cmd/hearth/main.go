package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexanderramin/hearth/internal/auth"
	"github.com/alexanderramin/hearth/internal/cli"
	"github.com/alexanderramin/hearth/internal/config"
	"github.com/alexanderramin/hearth/internal/db"
	"github.com/alexanderramin/hearth/internal/docstore/httpstore"
	"github.com/alexanderramin/hearth/internal/logging"
	"github.com/alexanderramin/hearth/internal/remote"
	"github.com/alexanderramin/hearth/internal/repository"
	"github.com/alexanderramin/hearth/internal/store"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	kv := repository.NewSQLiteKVRepo(database)
	opts := []store.Option{
		store.WithDebounce(cfg.Debounce),
		store.WithUnitOfWork(db.NewSQLiteUnitOfWork(database)),
	}
	if cfg.GroupsEnabled() {
		client := httpstore.New(cfg.RemoteURL, nil, log)
		opts = append(opts, store.WithRemote(remote.New(client, auth.NewAnonymous(kv), log)))
	}

	s := store.New(kv, log, opts...)
	if err := s.Load(ctx); err != nil {
		return fmt.Errorf("loading local data: %w", err)
	}
	// Close flushes anything a failed command left pending.
	defer func() {
		if err := s.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	app := &cli.App{Store: s}

	// Forms, spinners and the dashboard only run on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
