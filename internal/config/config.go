package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"climate-api/internal/validation"
)

const (
	DateValidationStrict  = "strict"
	DateValidationLenient = "lenient"

	PrecipitationModeLast = "last"
	PrecipitationModeList = "list"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" validate:"oneof=dev prod"`
	LogLevel slog.Level
	HTTPAddr string `env:"HTTP_ADDR" validate:"required"`

	SQLiteDriver          string `env:"DB_DRIVER" validate:"required"`
	SQLiteDSN             string
	SQLitePath            string `env:"SQLITE_PATH" validate:"required_without=SQLiteDSN"`
	SQLiteMaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" validate:"gte=0"`
	SQLiteMaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	SQLiteConnMaxLifetime time.Duration
	// SQLiteLogSQL wraps the driver so every statement is logged at debug level.
	SQLiteLogSQL bool

	// DateValidation controls whether start/end path segments must be real
	// YYYY-MM-DD dates (strict) or are compared as raw strings (lenient).
	DateValidation string `env:"DATE_VALIDATION" validate:"oneof=strict lenient"`
	// PrecipitationMode selects between one value per date (last row wins)
	// and every reading per date.
	PrecipitationMode string `env:"PRECIPITATION_MODE" validate:"oneof=last list"`

	MetricsEnabled bool
}

// StrictDates reports whether date path parameters are validated.
func (c Config) StrictDates() bool {
	return c.DateValidation == DateValidationStrict
}

// Load reads configuration from defaults, an optional config.yaml in . or
// ./config, and the environment, in increasing order of precedence.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

var defaults = map[string]string{
	"app_env":              "dev",
	"log_level":            "info",
	"http_addr":            ":8080",
	"db_driver":            "sqlite3",
	"db_dsn":               "",
	"sqlite_path":          "../dev/sqlite/hawaii.sqlite",
	"db_max_open_conns":    "4",
	"db_max_idle_conns":    "4",
	"db_conn_max_lifetime": "0s",
	"db_log_sql":           "false",
	"date_validation":      DateValidationStrict,
	"precipitation_mode":   PrecipitationModeLast,
	"metrics_enabled":      "true",
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// get returns the trimmed value for key, falling back to the default when
// the configured value is blank.
func get(v *viper.Viper, key string) string {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return defaults[key]
	}
	return s
}

func fromViper(v *viper.Viper) (Config, error) {
	level, err := parseLogLevel(get(v, "log_level"))
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := parseInt(v, "db_max_open_conns")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := parseInt(v, "db_max_idle_conns")
	if err != nil {
		return Config{}, err
	}

	lifetimeStr := get(v, "db_conn_max_lifetime")
	connMaxLifetime, err := time.ParseDuration(lifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", lifetimeStr, err)
	}

	logSQL, err := parseBool(v, "db_log_sql")
	if err != nil {
		return Config{}, err
	}
	metricsEnabled, err := parseBool(v, "metrics_enabled")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                get(v, "app_env"),
		LogLevel:              level,
		HTTPAddr:              get(v, "http_addr"),
		SQLiteDriver:          get(v, "db_driver"),
		SQLiteDSN:             get(v, "db_dsn"),
		SQLitePath:            get(v, "sqlite_path"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogSQL:          logSQL,
		DateValidation:        strings.ToLower(get(v, "date_validation")),
		PrecipitationMode:     strings.ToLower(get(v, "precipitation_mode")),
		MetricsEnabled:        metricsEnabled,
	}

	if err := validation.Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	s := get(v, key)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToUpper(key), s, err)
	}
	return n, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	s := get(v, key)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", strings.ToUpper(key), s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
