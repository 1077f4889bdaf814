// Package app assembles the service: config, logger, database, token
// codec, services and the HTTP server, plus lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhttp "github.com/franpulido/ticketlog/internal/auth/http"
	"github.com/franpulido/ticketlog/internal/auth/notify"
	"github.com/franpulido/ticketlog/internal/auth/service"
	"github.com/franpulido/ticketlog/internal/auth/store"
	"github.com/franpulido/ticketlog/internal/auth/store/drivers/sqlite"
	"github.com/franpulido/ticketlog/pkg/cryptox"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

// Version is stamped by the build via -ldflags.
var Version = "dev"

type Application struct {
	Config Config
	Log    *slog.Logger

	store        store.Store
	server       *http.Server
	housekeeping *service.HousekeepingService
}

func New() (*Application, error) {
	cfg := LoadConfig()

	log := slogx.New(slogx.Config{
		Service: "ticketlog-auth",
		Version: Version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	cryptox.SetPepperPath(cfg.PepperFile)

	st, err := initDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	codec, ephemeral, err := loadCodec(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if ephemeral {
		log.Warn("no signing key configured, using an ephemeral key; all tokens die with this process")
	}

	dispatcher := buildDispatcher(cfg, log)

	authSvc := &service.AuthService{
		Store:      st,
		Codec:      codec,
		Dispatcher: dispatcher,
		CodeTTL:    cfg.CodeTTL,
	}
	userSvc := &service.UserService{Store: st}

	if cfg.BootstrapPassword != "" {
		boot := &service.BootstrapService{Store: st, Users: userSvc}
		ctx := slogx.WithContext(context.Background(), log)
		if _, err := boot.EnsureAdmin(ctx, cfg.BootstrapUsername, cfg.BootstrapEmail, cfg.BootstrapPassword); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	router := authhttp.NewRouter(authSvc, userSvc, codec, st, log)

	return &Application{
		Config: cfg,
		Log:    log,
		store:  st,
		server: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		housekeeping: &service.HousekeepingService{
			Store:    st,
			Interval: cfg.HousekeepingInterval,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests within
// the configured grace period.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.housekeeping.Start()
	defer a.housekeeping.Stop()
	defer func() { _ = a.store.Close() }()

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down", "grace", a.Config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func initDatabase(cfg Config) (store.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	st, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, err
	}
	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return st, nil
}

func buildDispatcher(cfg Config, log *slog.Logger) notify.Dispatcher {
	if cfg.SMTPAddr == "" {
		log.Warn("SMTP_ADDR not set, login codes will be written to the log")
		return &notify.LogDispatcher{Logger: log}
	}
	return &notify.SMTPDispatcher{
		Addr:     cfg.SMTPAddr,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}
}
