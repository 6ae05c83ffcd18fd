// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and TODO_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/todo/internal/storage"
)

const EnvPrefix = "TODO"

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Storage   StorageConfig
	Log       LogConfig
	Reminders RemindersConfig
	UI        UIConfig
}

type StorageConfig struct {
	Driver string
	Path   string
}

type LogConfig struct {
	Level string
}

type RemindersConfig struct {
	CheckInterval time.Duration
	Desktop       bool
}

type UIConfig struct {
	Color bool
}

func Default() Config {
	return Config{
		Storage:   StorageConfig{Driver: storage.DriverSQLite},
		Log:       LogConfig{Level: "warn"},
		Reminders: RemindersConfig{CheckInterval: 30 * time.Second},
		UI:        UIConfig{Color: true},
	}
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration. An explicit file must exist; without one
// ".todo.yaml" is looked up in the working directory and the user's home.
func Load(file string) (Config, error) {
	def := Default()
	v := viper.New()
	v.SetDefault("storage.driver", def.Storage.Driver)
	v.SetDefault("storage.path", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("reminders.check_interval", def.Reminders.CheckInterval)
	v.SetDefault("reminders.desktop", def.Reminders.Desktop)
	v.SetDefault("ui.color", def.UI.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(".todo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := Config{
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
			Path:   strings.TrimSpace(v.GetString("storage.path")),
		},
		Log:       LogConfig{Level: v.GetString("log.level")},
		Reminders: RemindersConfig{CheckInterval: v.GetDuration("reminders.check_interval"), Desktop: v.GetBool("reminders.desktop")},
		UI:        UIConfig{Color: v.GetBool("ui.color")},
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath(cfg.Storage.Driver)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverSQLite, storage.DriverYAML:
	default:
		return fmt.Errorf("%w: storage.driver %q (want sqlite or yaml)", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is empty", ErrInvalidConfig)
	}
	if c.Reminders.CheckInterval <= 0 {
		return fmt.Errorf("%w: reminders.check_interval must be positive", ErrInvalidConfig)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, l.Level)
	}
	return lvl, nil
}

// DefaultStoragePath places the data file under ~/.todo, falling back to the
// working directory when no home directory is known.
func DefaultStoragePath(driver string) string {
	name := "todo.db"
	if driver == storage.DriverYAML {
		name = "tasks.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return name
	}
	return filepath.Join(home, ".todo", name)
}
