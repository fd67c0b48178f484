package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendSurreal  = "surrealdb"
	envPrefix       = "STUDIO_CAL"
	defaultDataFile = "./config/data/availability.json"
)

type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Surreal SurrealConfig
	Auth    AuthConfig
	Misc    MiscConfig
}

type ServerConfig struct {
	Port               int           `validate:"min=1,max=65535"`
	ReadTimeout        time.Duration `validate:"gt=0"`
	WriteTimeout       time.Duration `validate:"gt=0"`
	IdleTimeout        time.Duration `validate:"gt=0"`
	ShutDownTimeout    time.Duration `validate:"gt=0"`
	RequestTimeout     time.Duration `validate:"gte=0"`
	CORSAllowedOrigins string
}

// DataConfig selects the availability storage engine.
type DataConfig struct {
	Backend         string `validate:"oneof=file surrealdb"`
	FilePath        string
	PersistInterval time.Duration
	WatchFile       bool
}

type SurrealConfig struct {
	Endpoint  string
	Namespace string
	Database  string
	User      string
	Password  string
}

// AuthConfig holds the single admin credential guarding mutations.
// PasswordHash is a bcrypt hash and wins over Password when both are set.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type MiscConfig struct {
	GinMode  string `validate:"omitempty,oneof=debug release test"`
	LogLevel string
}

// LoadConfig reads config.yaml from STUDIO_CAL_CONFIG_PATH (default ./config),
// applies defaults and lets environment variables override every key,
// e.g. STUDIO_CAL_SERVER_PORT for server.port. PORT is honoured as well.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot read .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnvOrDefault(envPrefix+"_CONFIG_PATH", "./config"))

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Info("no config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort(v, "PORT", "server.port")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               port,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		Data: DataConfig{
			Backend:         strings.ToLower(v.GetString("data.backend")),
			FilePath:        v.GetString("data.file_path"),
			PersistInterval: v.GetDuration("data.persist_interval"),
			WatchFile:       v.GetBool("data.watch_file"),
		},
		Surreal: SurrealConfig{
			Endpoint:  v.GetString("surreal.endpoint"),
			Namespace: v.GetString("surreal.namespace"),
			Database:  v.GetString("surreal.database"),
			User:      v.GetString("surreal.user"),
			Password:  v.GetString("surreal.password"),
		},
		Auth: AuthConfig{
			Username:     v.GetString("auth.username"),
			Password:     v.GetString("auth.password"),
			PasswordHash: v.GetString("auth.password_hash"),
		},
		Misc: MiscConfig{
			GinMode:  v.GetString("misc.gin_mode"),
			LogLevel: v.GetString("misc.log_level"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Data.Backend == BackendFile {
		if err := ensureDataFile(cfg.Data.FilePath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.request_timeout", "2s")
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("data.backend", BackendFile)
	v.SetDefault("data.file_path", defaultDataFile)
	v.SetDefault("data.persist_interval", "5s")
	v.SetDefault("data.watch_file", true)

	v.SetDefault("surreal.endpoint", "ws://localhost:8000")
	v.SetDefault("surreal.namespace", "studio")
	v.SetDefault("surreal.database", "calendar")

	v.SetDefault("auth.username", "admin")

	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.log_level", "info")
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Data.Backend {
	case BackendFile:
		if c.Data.FilePath == "" {
			return errors.New("data.file_path is required for the file backend")
		}
		if c.Data.PersistInterval <= 0 {
			return errors.New("data.persist_interval must be positive")
		}
	case BackendSurreal:
		if c.Surreal.Endpoint == "" || c.Surreal.Namespace == "" || c.Surreal.Database == "" {
			return errors.New("surreal.endpoint, surreal.namespace and surreal.database are required for the surrealdb backend")
		}
	}

	if (c.Auth.Password != "" || c.Auth.PasswordHash != "") && c.Auth.Username == "" {
		return errors.New("auth.username is required when a password or password hash is set")
	}
	return nil
}

// ensureDataFile creates an empty JSON document when the data file is missing.
func ensureDataFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat data file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		return fmt.Errorf("create data file: %w", err)
	}
	logger.WithComponent("config").Infof("created empty data file at %s", path)
	return nil
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvOrViperPort(v *viper.Viper, envKey, viperKey string) (int, error) {
	raw := os.Getenv(envKey)
	if raw == "" {
		return v.GetInt(viperKey), nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", envKey, raw, err)
	}
	return port, nil
}
