// Package server wires the identity server together: configuration,
// storage, credential service, gRPC transport and the metrics endpoint,
// and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/config"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/jonboulle/clockwork"

	gs "github.com/dmitrijs2005/tasklist/internal/server/grpc"
)

// MemoryDSN selects the in-memory identity store.
const MemoryDSN = "memory://"

const shutdownTimeout = 5 * time.Second

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	metrics     *metrics.Metrics
	credentials *services.CredentialService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	return NewAppWithLogger(ctx, c, logger)
}

// NewAppWithLogger is NewApp with a caller-supplied logger.
func NewAppWithLogger(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, db, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.New()
	clock := clockwork.NewRealClock()

	hasher := auth.NewArgon2Hasher(HasherParams(c), nil)
	issuer, err := auth.NewJWTIssuer([]byte(c.SecretKey), c.TokenIssuer, c.SessionTokenTTL, clock)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	svc, err := services.NewCredentialService(rm.Users(db), hasher, issuer, clock, logger,
		services.WithStoreTimeout(c.StoreTimeout),
		services.WithPasswordMinLength(c.PasswordMinLength),
		services.WithMetrics(m),
	)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("credential service init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, metrics: m, credentials: svc}, nil
}

// HasherParams derives the Argon2id parameters from the configuration.
func HasherParams(c *config.Config) auth.Argon2Params {
	p := auth.DefaultArgon2Params()
	p.MemoryKiB = c.Argon2MemoryKiB
	p.Iterations = c.Argon2Iterations
	p.Parallelism = c.Argon2Parallelism
	p.MaxPasswordLength = c.PasswordMaxLength
	return p
}

// openStore returns the repository manager for the configured DSN. For
// PostgreSQL it also pings the database and applies migrations.
func openStore(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, *sql.DB, error) {
	if strings.HasPrefix(c.DatabaseDSN, MemoryDSN) {
		return repomanager.NewMemoryRepositoryManager(), nil, nil
	}

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	pingCtx := ctx
	if c.StoreTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, c.StoreTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		closeDB(db)
		return nil, nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return rm, db, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

// Credentials exposes the wired service, e.g. for tooling sharing the setup.
func (app *App) Credentials() *services.CredentialService {
	return app.credentials
}

// Close releases the database handle, if any.
func (app *App) Close() {
	closeDB(app.db)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.credentials, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}
