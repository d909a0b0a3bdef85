// Package wire provides dependency injection for the docroute application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/docroute/internal/adapters/cli"
	"github.com/example/docroute/internal/adapters/httpapi"
	"github.com/example/docroute/internal/adapters/routefile"
	"github.com/example/docroute/internal/adapters/sqlite"
	"github.com/example/docroute/internal/app"
	"github.com/example/docroute/internal/config"
	"github.com/example/docroute/internal/db"
	"github.com/example/docroute/internal/logging"
	"github.com/example/docroute/internal/ports/primary"
	"github.com/example/docroute/internal/version"
)

var (
	cfg             *config.Config
	logger          *slog.Logger
	database        *sql.DB
	approvalService primary.ApprovalService
	documentService primary.DocumentService
	routeService    primary.RouteService
	once            sync.Once
)

// Config returns the effective configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the application logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// DB returns the shared database handle.
func DB() *sql.DB {
	once.Do(initServices)
	return database
}

// ApprovalService returns the singleton ApprovalService instance.
func ApprovalService() primary.ApprovalService {
	once.Do(initServices)
	return approvalService
}

// DocumentService returns the singleton DocumentService instance.
func DocumentService() primary.DocumentService {
	once.Do(initServices)
	return documentService
}

// RouteService returns the singleton RouteService instance.
func RouteService() primary.RouteService {
	once.Do(initServices)
	return routeService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger = logging.New(cfg.LogLevel, os.Stderr)

	database, err = db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	logWriter := sqlite.NewLogWriterAdapter(sqlite.NewAuditLogRepository(database))
	tx := sqlite.NewTransactor(database)
	documentRepo := sqlite.NewDocumentRepository(database, logWriter)
	routeRepo := sqlite.NewRouteRepository(database, logWriter)
	instanceRepo := sqlite.NewApprovalInstanceRepository(database, logWriter)
	stepRepo := sqlite.NewStepInstanceRepository(database, logWriter)

	// Create services (primary ports implementation)
	approvalService = app.NewApprovalService(tx, documentRepo, routeRepo, instanceRepo, stepRepo, logger)
	documentService = app.NewDocumentService(tx, documentRepo, routeRepo, logger)
	routeService = app.NewRouteService(tx, routeRepo, routefile.NewLoader(), logger)
}

// HTTPServer builds the API server from the shared services and config.
func HTTPServer() (*httpapi.Server, error) {
	once.Do(initServices)
	return httpapi.NewServer(httpapi.Options{
		Approvals: approvalService,
		Documents: documentService,
		Routes:    routeService,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		RateRPS:   cfg.RateRPS,
		RateBurst: cfg.RateBurst,
		Version:   version.String(),
	})
}

// DocumentAdapter returns a new DocumentAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func DocumentAdapter() *cliadapter.DocumentAdapter {
	return DocumentAdapterWithOutput(os.Stdout)
}

// DocumentAdapterWithOutput returns a new DocumentAdapter writing to the given output.
func DocumentAdapterWithOutput(out io.Writer) *cliadapter.DocumentAdapter {
	once.Do(initServices)
	return cliadapter.NewDocumentAdapter(documentService, out)
}

// RouteAdapter returns a new RouteAdapter writing to stdout.
func RouteAdapter() *cliadapter.RouteAdapter {
	return RouteAdapterWithOutput(os.Stdout)
}

// RouteAdapterWithOutput returns a new RouteAdapter writing to the given output.
func RouteAdapterWithOutput(out io.Writer) *cliadapter.RouteAdapter {
	once.Do(initServices)
	return cliadapter.NewRouteAdapter(routeService, out)
}

// ApprovalAdapter returns a new ApprovalAdapter writing to stdout.
func ApprovalAdapter() *cliadapter.ApprovalAdapter {
	return ApprovalAdapterWithOutput(os.Stdout)
}

// ApprovalAdapterWithOutput returns a new ApprovalAdapter writing to the given output.
func ApprovalAdapterWithOutput(out io.Writer) *cliadapter.ApprovalAdapter {
	once.Do(initServices)
	return cliadapter.NewApprovalAdapter(approvalService, out)
}
