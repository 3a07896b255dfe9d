package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexanderramin/hearth/internal/config"
	"github.com/alexanderramin/hearth/internal/docstore/gormstore"
	"github.com/alexanderramin/hearth/internal/logging"
	"github.com/alexanderramin/hearth/internal/syncserver"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadServer()

	// gin defaults to debug mode; LoadServer defaults to release.
	gin.SetMode(cfg.GinMode)
	format := cfg.LogFormat
	if format == "" && gin.IsDebugging() {
		format = "human"
	}
	log := logging.New(os.Stdout, cfg.LogLevel, format)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	docs, err := gormstore.Open(cfg.DBPath + "?_pragma=busy_timeout(5000)")
	if err != nil {
		return err
	}
	defer docs.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := syncserver.New(docs, log, reg, syncserver.Options{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		EnablePprof:      cfg.EnablePprof,
	})
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Watch streams are long-lived, so no write timeout.
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("db", cfg.DBPath).Msg("hearth-syncd listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
