package cli

import (
	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/app"
	"github.com/roach88/coursesync/internal/config"
	"github.com/roach88/coursesync/internal/engine"
	"github.com/roach88/coursesync/internal/logging"
	"github.com/roach88/coursesync/internal/store"
)

// runtime is the wired stack a record command works against.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	app    *app.App
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	v, err := config.New(opts.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		v.Set("database.path", opts.Database)
	}
	if opts.Driver != "" {
		v.Set("database.driver", opts.Driver)
	}
	if opts.Verbose {
		v.Set("log.level", "debug")
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openRuntime loads config, builds the logger, opens the store and binds
// the consistency engine to a fresh app. Callers must Close it.
func openRuntime(opts *RootOptions) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}

	st, err := store.Open(cfg.Database.Path,
		store.WithDriver(cfg.Database.Driver),
		store.WithLogger(logger.Named("store")))
	if err != nil {
		_ = logger.Sync()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	a := app.New(st, app.WithLogger(logger.Named("app")))
	engine.New(st,
		engine.WithLogger(logger.Named("engine")),
		engine.WithStrictTransactions(cfg.Engine.StrictTransactions),
	).Register(a)

	logger.Debug("runtime ready",
		zap.String("database", cfg.Database.Path),
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("strict_transactions", cfg.Engine.StrictTransactions))

	return &runtime{cfg: cfg, logger: logger, store: st, app: a}, nil
}

func (r *runtime) Close() error {
	err := r.store.Close()
	_ = r.logger.Sync()
	return err
}
