package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RunMigrations   bool
}

type AuthConfig struct {
	AccessSecret string
}

type ReportsConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	StatusChunkSize int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Reports     ReportsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_RUN_MIGRATIONS", false)
	v.SetDefault("REPORTS_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("REPORTS_MAX_PAGE_SIZE", 100)
	v.SetDefault("REPORTS_STATUS_CHUNK_SIZE", 1000)

	_ = v.ReadInConfig()

	lifetime, err := time.ParseDuration(strings.TrimSpace(v.GetString("DB_CONN_MAX_LIFETIME")))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
			RunMigrations:   v.GetBool("DB_RUN_MIGRATIONS"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Reports: ReportsConfig{
			DefaultPageSize: v.GetInt("REPORTS_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("REPORTS_MAX_PAGE_SIZE"),
			StatusChunkSize: v.GetInt("REPORTS_STATUS_CHUNK_SIZE"),
		},
	}

	if len(cfg.HTTP.CORSAllowedOrigins) == 0 {
		cfg.HTTP.CORSAllowedOrigins = []string{"*"}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Reports.DefaultPageSize <= 0 || cfg.Reports.MaxPageSize <= 0 {
		return fmt.Errorf("report page sizes must be positive")
	}
	if cfg.Reports.DefaultPageSize > cfg.Reports.MaxPageSize {
		return fmt.Errorf("REPORTS_DEFAULT_PAGE_SIZE must not exceed REPORTS_MAX_PAGE_SIZE")
	}
	if cfg.Reports.StatusChunkSize <= 0 {
		return fmt.Errorf("REPORTS_STATUS_CHUNK_SIZE must be positive")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
