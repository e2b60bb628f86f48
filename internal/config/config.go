package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crucial707/scantron/internal/db"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Port string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS
	// headers are sent.
	CORSAllowedOrigins []string

	// SchedulerEnabled runs the scheduled-scan and retention jobs inside the API process.
	SchedulerEnabled bool
}

var defaults = map[string]any{
	"port":                 "8080",
	"db_host":              "localhost",
	"db_port":              "5432",
	"db_name":              "scantron",
	"db_user":              "scantron",
	"db_pass":              "scantron",
	"db_sslmode":           "disable",
	"db_max_open_conns":    25,
	"db_max_idle_conns":    5,
	"jwt_secret":           DefaultJWTSecret,
	"env":                  "dev",
	"jwt_expire_hours":     24,
	"tls_cert_file":        "",
	"tls_key_file":         "",
	"log_format":           "text",
	"cors_allowed_origins": "",
	"scheduler_enabled":    true,
}

// Load reads configuration from defaults, an optional YAML file named by CONFIG_FILE, and the
// environment, in increasing order of precedence.
func Load() (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port: v.GetString("port"),

		DBHost:    v.GetString("db_host"),
		DBPort:    v.GetString("db_port"),
		DBName:    v.GetString("db_name"),
		DBUser:    v.GetString("db_user"),
		DBPass:    v.GetString("db_pass"),
		DBSSLMode: v.GetString("db_sslmode"),

		DBMaxOpenConns: positive(v.GetInt("db_max_open_conns"), 25),
		DBMaxIdleConns: positive(v.GetInt("db_max_idle_conns"), 5),

		JWTSecret:      v.GetString("jwt_secret"),
		Env:            strings.ToLower(v.GetString("env")),
		JWTExpireHours: positive(v.GetInt("jwt_expire_hours"), 24),

		TLSCertFile: v.GetString("tls_cert_file"),
		TLSKeyFile:  v.GetString("tls_key_file"),

		LogFormat: v.GetString("log_format"),

		CORSAllowedOrigins: parseCORSOrigins(v.GetString("cors_allowed_origins")),

		SchedulerEnabled: v.GetBool("scheduler_enabled"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe for the selected environment.
func (c Config) Validate() error {
	if c.Env == "prod" && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set to a non-default value when ENV=prod")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DB returns the connection settings for db.Connect.
func (c Config) DB() db.Options {
	return db.Options{
		Host:         c.DBHost,
		Port:         c.DBPort,
		Name:         c.DBName,
		User:         c.DBUser,
		Password:     c.DBPass,
		SSLMode:      c.DBSSLMode,
		MaxOpenConns: c.DBMaxOpenConns,
		MaxIdleConns: c.DBMaxIdleConns,
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func positive(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
