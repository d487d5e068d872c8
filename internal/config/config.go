// Package config loads service settings from an optional TOML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	_ "github.com/joho/godotenv/autoload"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	OAuth     OAuthConfig     `toml:"oauth"`
	Instagram InstagramConfig `toml:"instagram"`
	Redis     RedisConfig     `toml:"redis"`
	Jobs      JobsConfig      `toml:"jobs"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimitRPS   float64  `toml:"rate_limit_rps"`
	RateLimitBurst int      `toml:"rate_limit_burst"`
}

// DatabaseConfig contains Postgres connection settings. URL takes
// precedence over the discrete fields.
type DatabaseConfig struct {
	URL             string   `toml:"url"`
	Host            string   `toml:"host"`
	Port            string   `toml:"port"`
	User            string   `toml:"user"`
	Password        string   `toml:"password"`
	Name            string   `toml:"name"`
	SSLMode         string   `toml:"sslmode"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold"`
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	JWTSecret  string   `toml:"jwt_secret"`
	AccessTTL  Duration `toml:"access_ttl"`
	RefreshTTL Duration `toml:"refresh_ttl"`
}

// OAuthConfig contains provider credentials. A provider with an empty
// client ID is disabled.
type OAuthConfig struct {
	RedirectBaseURL string         `toml:"redirect_base_url"`
	Google          ProviderConfig `toml:"google"`
	Facebook        ProviderConfig `toml:"facebook"`
}

// ProviderConfig holds one OAuth client registration.
type ProviderConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// InstagramConfig registers the Instagram app used to show a user's photos.
// The integration is off when AppID is empty.
type InstagramConfig struct {
	AppID     string `toml:"app_id"`
	AppSecret string `toml:"app_secret"`
}

// RedisConfig enables the read-through cache when Addr is set.
type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      Duration `toml:"ttl"`
}

// JobsConfig contains background schedule settings in cron syntax.
type JobsConfig struct {
	ExpireRequests   string `toml:"expire_requests"`
	RefreshInstagram string `toml:"refresh_instagram"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration decodes TOML strings such as "15m" into a time.Duration.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns the built-in settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"https://*", "http://*"},
			RateLimitRPS:   5,
			RateLimitBurst: 20,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "buyareco",
			SSLMode:         "disable",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: Duration{time.Hour},
			SlowThreshold:   Duration{time.Second},
		},
		Auth: AuthConfig{
			AccessTTL:  Duration{time.Hour},
			RefreshTTL: Duration{30 * 24 * time.Hour},
		},
		OAuth: OAuthConfig{
			RedirectBaseURL: "http://localhost:8080",
		},
		Redis: RedisConfig{
			TTL: Duration{5 * time.Minute},
		},
		Jobs: JobsConfig{
			ExpireRequests:   "@every 5m",
			RefreshInstagram: "@daily",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from the defaults, the TOML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth jwt_secret (JWT_SECRET) is required"))
	}
	if c.Auth.AccessTTL.Duration <= 0 || c.Auth.RefreshTTL.Duration <= 0 {
		errs = append(errs, errors.New("auth token ttls must be positive"))
	}
	return errors.Join(errs...)
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.OAuth.RedirectBaseURL, "OAUTH_REDIRECT_BASE_URL")
	setString(&c.OAuth.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.OAuth.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.OAuth.Facebook.ClientID, "FACEBOOK_CLIENT_ID")
	setString(&c.OAuth.Facebook.ClientSecret, "FACEBOOK_CLIENT_SECRET")
	setString(&c.Instagram.AppID, "INSTAGRAM_APP_ID")
	setString(&c.Instagram.AppSecret, "INSTAGRAM_APP_SECRET")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Jobs.ExpireRequests, "EXPIRE_REQUESTS_SCHEDULE")
	setString(&c.Jobs.RefreshInstagram, "INSTAGRAM_REFRESH_SCHEDULE")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	var errs []error
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid PORT %q: %w", v, err))
		} else {
			c.Server.Port = port
		}
	}
	errs = append(errs,
		setDuration(&c.Auth.AccessTTL, "ACCESS_TOKEN_TTL"),
		setDuration(&c.Auth.RefreshTTL, "REFRESH_TOKEN_TTL"),
		setDuration(&c.Redis.TTL, "CACHE_TTL"),
	)
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	return dst.UnmarshalText([]byte(v))
}
