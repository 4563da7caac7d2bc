package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appRepos "github.com/yigit/curriculum/internal/app/repositories"
	appServices "github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/config"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
	"github.com/yigit/curriculum/internal/pkg/logger"
	"github.com/yigit/curriculum/internal/pkg/notify"
	"github.com/yigit/curriculum/internal/seed"
)

// Dependencies holds the wired engine
type Dependencies struct {
	CatalogService    appServices.CatalogService
	EnrollmentService appServices.EnrollmentService
	ProgressService   appServices.ProgressService
	Repos             *appRepos.Repositories
	Store             kvstore.Store
	Hub               *notify.Hub
	Logger            zerolog.Logger

	stopWatch context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: logger.ParseFormat(cfg.Logging.Format),
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// BuildDependencies loads the catalog over store and wires the services. A nil store
// gets an in-memory one. Every write through Store is announced on Hub.
func BuildDependencies(ctx context.Context, cfg *config.Config, store kvstore.Store, lgr zerolog.Logger) (*Dependencies, error) {
	if store == nil {
		store = kvstore.NewMemory()
	}

	deps := &Dependencies{Logger: lgr}
	deps.Hub = notify.NewHub(logger.Component(lgr, "notify"))
	deps.Store = kvstore.NewObserved(store, deps.Hub)

	bundled, err := seed.LoadCatalog(cfg.Catalog.SeedPath)
	if err != nil {
		lgr.Error().Err(err).Str("path", cfg.Catalog.SeedPath).Msg("Failed to load catalog seed")
		return nil, err
	}

	deps.Repos = appRepos.NewRepositories(deps.Store, bundled, lgr)
	catalog := deps.Repos.CatalogRepository
	if err := catalog.Load(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to load catalog")
		return nil, err
	}

	if err := catalog.Validate(); err != nil {
		if cfg.Catalog.StrictValidation {
			lgr.Error().Err(err).Msg("Catalog failed integrity validation")
			return nil, fmt.Errorf("catalog validation: %w", err)
		}
		lgr.Warn().Err(err).Msg("Catalog has integrity violations, continuing")
	}

	if cfg.Catalog.WatchChanges {
		watchCtx, cancel := context.WithCancel(context.Background())
		changes, unsubscribe := deps.Hub.SubscribeKeys(appRepos.IsCatalogTable)
		deps.stopWatch = func() {
			cancel()
			unsubscribe()
		}
		go catalog.Watch(watchCtx, changes)
	}

	deps.CatalogService = appServices.NewCatalogService(catalog, logger.Component(lgr, "catalog_service"))
	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.CatalogService,
		deps.Repos.SnapshotRepository,
		deps.Repos.ProfileRepository,
		appServices.EnrollmentOptions{LenientLookup: cfg.Enrollment.LenientLookup},
		logger.Component(lgr, "enrollment"),
	)
	deps.ProgressService = appServices.NewProgressService(
		deps.Repos.SnapshotRepository,
		deps.CatalogService,
		logger.Component(lgr, "progress"),
	)

	return deps, nil
}

// Close stops the catalog watcher and closes the change hub
func (d *Dependencies) Close() {
	if d.stopWatch != nil {
		d.stopWatch()
	}
	d.Hub.Close()
	d.Logger.Info().Msg("Curriculum engine stopped.")
}
