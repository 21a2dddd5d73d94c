package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"juryboard/internal/bootstrap/config"
	"juryboard/internal/bootstrap/database"
	"juryboard/internal/bootstrap/logging"
	cacheinfra "juryboard/internal/infrastructure/cache"
	"juryboard/internal/infrastructure/notify"
	sqliterepo "juryboard/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "juryboard/internal/infrastructure/persistence/sqlite/uow"
	"juryboard/internal/ports"
	"juryboard/internal/usecase/audit"
	"juryboard/internal/usecase/backup"
	"juryboard/internal/usecase/evaluation"
	"juryboard/internal/usecase/reset"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewEvaluationRepository,
			fx.As(new(ports.EvaluationRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewBackupRepository,
			fx.As(new(ports.BackupRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAuditRepository,
			fx.As(new(ports.AuditRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewPhaseRepository,
			fx.As(new(ports.PhaseGate)),
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
	fx.Provide(provideNotifier),
	fx.Provide(backup.NewService),
	fx.Provide(audit.NewService),
	fx.Provide(evaluation.NewService),
	fx.Provide(provideResetService),
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

func provideNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.Notifier, error) {
	if !cfg.NATS.Enabled {
		return notify.NoopNotifier{}, nil
	}

	templates, err := notify.LoadTemplates(cfg.Notify.TemplatesFile)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.NewNATSNotifier(ctx, cfg.NATS, templates)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			notifier.Close()
			return nil
		},
	})

	return notifier, nil
}

func provideResetService(
	evals ports.EvaluationRepository,
	phase ports.PhaseGate,
	uow ports.UnitOfWork,
	cache ports.Cache,
	notifier ports.Notifier,
	backupSvc *backup.Service,
	auditSvc *audit.Service,
) *reset.Service {
	return reset.NewService(evals, phase, uow, cache, notifier, backupSvc, auditSvc)
}
