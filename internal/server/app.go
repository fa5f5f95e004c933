// Package server wires the DarkTrack server: configuration, encryption key,
// PostgreSQL, providers and services, and the gRPC and HTTP transports,
// with graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/darktrack/internal/cryptox"
	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/config"
	"github.com/dmitrijs2005/darktrack/internal/server/hibp"
	"github.com/dmitrijs2005/darktrack/internal/server/httpapi"
	"github.com/dmitrijs2005/darktrack/internal/server/narrative"
	"github.com/dmitrijs2005/darktrack/internal/server/reports"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/darktrack/internal/server/services"
	"github.com/dmitrijs2005/darktrack/internal/server/storage"

	gs "github.com/dmitrijs2005/darktrack/internal/server/grpc"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = repomanager.NewPostgresRepositoryManager

	newObjectStore = func(ctx context.Context, c reports.S3Config) (reports.ObjectStore, error) {
		return reports.NewS3Store(ctx, c)
	}
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	grpcServer *gs.GRPCServer
	httpServer *httpapi.Server
}

// NewApp builds every dependency. A missing encryption key outside
// development is fatal and reported before any connection is opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	secret, err := cryptox.ResolveSecret(ctx, c.Environment, c.EncryptionKey, logger)
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store := storage.NewEncryptedStore(db, rm, cipher, logger)

	breaches := hibp.NewClient(hibp.Config{
		APIKey:            c.HIBPAPIKey,
		BaseURL:           c.HIBPBaseURL,
		Timeout:           c.HIBPTimeout,
		RequestsPerMinute: c.HIBPRequestsPerMinute,
	}, logger)

	narrator := narrative.NewClient(narrative.Config{
		APIKey:  c.OpenAIAPIKey,
		BaseURL: c.OpenAIBaseURL,
		Model:   c.OpenAIModel,
		Timeout: c.LLMTimeout,
	}, logger)

	scans := services.NewScanService(store, breaches, narrator, c.LookupWindow, logger)

	objects, err := newObjectStore(ctx, reports.S3Config{
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Endpoint:  c.S3BaseEndpoint,
		Bucket:    c.S3Bucket,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}
	rs := reports.NewReportService(scans, objects, c.ReportLinkValidity, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, scans, rs, c.SecretKey),
		httpServer: httpapi.NewServer(c.EndpointAddrHTTP, logger, scans, rs, c.SecretKey),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs one transport; a failure stops the whole app.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.httpServer.Run)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
