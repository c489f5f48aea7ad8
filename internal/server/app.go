// Package server wires storage, services and transports into a runnable
// application: the REST API plus a gRPC health endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/config"
	"github.com/dmitrijs2005/learnprogress/internal/server/httpapi"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/learnprogress/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/learnprogress/internal/server/grpc"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	healthServiceName = "learnprogress"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	accountService  *services.AccountService
	progressService *services.ProgressService
	reportService   *services.ReportService
	handler         http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(context.Background(), c, logging.NewJSONLogger(c.Production))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewSQLRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	if c.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		c.SecretKey = key
		logger.Warn(ctx, "no JWT secret configured; tokens will not survive a restart")
	}

	app := &App{
		config:          c,
		logger:          logger,
		db:              db,
		accountService:  services.NewAccountService(db, m, c, logger),
		progressService: services.NewProgressService(db, m, logger),
	}

	if c.SeedAdminEnabled() {
		created, err := app.accountService.EnsureAdmin(ctx, c.AdminEmail, c.AdminUsername, c.AdminPassword)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			logger.Info(ctx, "bootstrap administrator created", "email", c.AdminEmail)
		}
	}

	// a nil *ReportService must not reach the router as a non-nil interface
	var reports httpapi.ReportExporter
	if c.ExportEnabled() {
		app.reportService = services.NewReportService(app.accountService, c, logger)
		reports = app.reportService
	}

	if c.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	app.handler = httpapi.NewServer(app.accountService, app.progressService, reports, db, httpapi.Options{
		Production:   c.Production,
		RequireToken: c.RequireToken,
		SecretKey:    []byte(c.SecretKey),
		CORSOrigins:  c.CORSOrigins,
	}, logger).Handler()

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
	<-stopped
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddrGRPC, healthServiceName, app.db, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then shuts both servers down and closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.HealthAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "close store", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
