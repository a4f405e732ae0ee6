package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"contenttest/internal/bootstrap/logging"
	"contenttest/internal/errs"
)

// MaxThreshold is the highest closeness score the matcher can produce.
const MaxThreshold = 1.01

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Problems  ProblemsConfig  `mapstructure:"problems"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ProblemsConfig points at the directory holding problem XML files.
type ProblemsConfig struct {
	Dir           string        `mapstructure:"dir"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

type ReconcileConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("problems_dir", cfg.Problems.Dir),
		slog.Float64("reconcile_threshold", cfg.Reconcile.Threshold),
	)

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if strings.TrimSpace(c.Problems.Dir) == "" {
		return errors.New("problems.dir is required")
	}
	if c.Problems.WatchDebounce < 0 {
		return errors.New("problems.watch_debounce must not be negative")
	}
	if c.Reconcile.Threshold <= 0 || c.Reconcile.Threshold > MaxThreshold {
		return fmt.Errorf("reconcile.threshold must be in (0, %.2f], got %v", MaxThreshold, c.Reconcile.Threshold)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "contenttest")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".contenttest/state.sqlite")
	v.SetDefault("problems.dir", "problems")
	v.SetDefault("problems.watch_debounce", "300ms")
	v.SetDefault("reconcile.threshold", 0.92)
}
