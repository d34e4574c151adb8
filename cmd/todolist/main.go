package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todolist/api/internal/auth"
	"todolist/api/internal/config"
	"todolist/api/internal/httpapi"
	"todolist/api/internal/store"
	"todolist/api/internal/store/memory"
	"todolist/api/internal/store/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	var st store.Store
	var closer func()

	if cfg.DatabaseURL != "" {
		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to init postgres store")
		}
		ctxMigrate, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		err = pg.Migrate(ctxMigrate)
		cancelMigrate()
		if err != nil {
			pg.Close()
			logger.WithError(err).Fatal("failed to migrate postgres store")
		}
		st = pg
		closer = pg.Close
		logger.Info("using postgres store")
	} else {
		st = memory.NewStore()
		logger.Info("using memory store")
	}

	if closer != nil {
		defer closer()
	}

	if cfg.EphemeralSecret {
		logger.Warn("no secret key configured; using a random key, tokens will not survive a restart")
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.Algorithm,
		TTL:       cfg.AccessTokenTTL(),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to init token service")
	}
	passwords := auth.NewPasswordHasher(cfg.BcryptCost)
	authn, err := auth.NewAuthenticator(st, passwords, tokens)
	if err != nil {
		logger.WithError(err).Fatal("failed to init authenticator")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := httpapi.NewServer(st, authn, passwords, httpapi.Options{
		Logger:   logger,
		Registry: registry,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      cfg.ListenAddr(),
			"token_ttl": tokens.TTL().String(),
		}).Info("todolist listening")
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
		}
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
}

func setupLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}
