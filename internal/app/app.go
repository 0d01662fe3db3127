package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sitefixtures/internal/config"
	"github.com/templui/sitefixtures/internal/db"
	"github.com/templui/sitefixtures/internal/fixture"
	"github.com/templui/sitefixtures/internal/markdown"
	"github.com/templui/sitefixtures/internal/repository"
	"github.com/templui/sitefixtures/internal/service"
	"github.com/templui/sitefixtures/internal/storage"
	"github.com/templui/sitefixtures/internal/store"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	Store         *store.Manager
	Storage       storage.Storage
	TreeService   *service.TreeService
	ExportService *service.ExportService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	documentRepository := repository.NewDocumentRepository(database)
	translationRepository := repository.NewTranslationRepository(database)

	// Storage
	fixtureStorage, err := storage.New(cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	manager := store.New(database, documentRepository, translationRepository, store.Options{
		DefaultLocale:    cfg.DefaultLocale,
		AvailableLocales: cfg.AvailableLocales,
	})

	// Services
	treeService := service.NewTreeService(documentRepository, translationRepository)
	exportService := service.NewExportService(treeService, fixtureStorage)

	return &App{
		Cfg:           cfg,
		DB:            database,
		Store:         manager,
		Storage:       fixtureStorage,
		TreeService:   treeService,
		ExportService: exportService,
	}, nil
}

// Roots returns the configured base paths
func (a *App) Roots() fixture.Roots {
	return fixture.Roots{
		Routes:  a.Cfg.RouteBasepath,
		Content: a.Cfg.ContentBasepath,
		Menu:    a.Cfg.MenuBasepath,
	}
}

// Loader builds a fixture loader from the configuration. file overrides
// FIXTURES_FILE when set.
func (a *App) Loader(file string, appendOnly bool, log *slog.Logger) *fixture.Loader {
	if file == "" {
		file = a.Cfg.FixturesFile
	}

	var renderer fixture.BodyRenderer
	if a.Cfg.RendersMarkdown() {
		renderer = markdown.NewParser()
	}

	return fixture.NewLoader(a.Store, a.Storage, renderer, fixture.Options{
		File:             file,
		Roots:            a.Roots(),
		DefaultLocale:    a.Cfg.DefaultLocale,
		FailOnParseError: a.Cfg.FailOnParseError(),
		Append:           appendOnly,
	}, log)
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
