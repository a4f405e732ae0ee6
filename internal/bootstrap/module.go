package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"contenttest/internal/bootstrap/config"
	"contenttest/internal/bootstrap/database"
	"contenttest/internal/bootstrap/logging"
	cacheinfra "contenttest/internal/infrastructure/cache"
	sqliterepo "contenttest/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "contenttest/internal/infrastructure/persistence/sqlite/uow"
	probleminfra "contenttest/internal/infrastructure/problem"
	"contenttest/internal/ports"
	"contenttest/internal/usecase/contenttest"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		func(cfg config.Config) config.ProblemsConfig { return cfg.Problems },
		func(cfg config.Config) config.ReconcileConfig { return cfg.Reconcile },
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewTestRepository,
			fx.As(new(ports.TestRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			probleminfra.NewFileProvider,
			fx.As(new(ports.ProblemProvider)),
		),
	),
	fx.Provide(
		fx.Annotate(
			probleminfra.NewXMLGrader,
			fx.As(new(ports.Grader)),
		),
	),
	fx.Provide(contenttest.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
