package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Verification VerificationConfig
	Sweeper      SweeperConfig
	Email        EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the unified Redis connection settings.
// Supported modes: single, sentinel, cluster.
type RedisConfig struct {
	// Mode: "single", "sentinel" or "cluster". Defaults to "single".
	Mode string `mapstructure:"mode"`

	// Addrs: list of host:port addresses, used for all modes.
	// For 'single', the first entry wins when non-empty.
	Addrs []string `mapstructure:"addrs"`

	// Addr: alternative single-mode address (kept for compatibility).
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Redis master name (sentinel mode only).
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // milliseconds
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // milliseconds
}

// JWTConfig holds access-token settings.
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationMin int    `mapstructure:"expiration_min"`
}

// VerificationConfig holds OTP issuance/validation settings.
type VerificationConfig struct {
	// CodeTTLMin is the lifetime of an issued code in minutes.
	CodeTTLMin int `mapstructure:"code_ttl_min"`
	// MaxAttempts caps failed validation attempts per code before a
	// re-issue is forced.
	MaxAttempts int `mapstructure:"max_attempts"`
	// ResendCooldownSec is the minimum gap between issued codes for a user.
	ResendCooldownSec int `mapstructure:"resend_cooldown_sec"`
	// CodePepper is a server-side secret mixed into the code hash.
	CodePepper string `mapstructure:"code_pepper"`
}

// SweeperConfig holds the abandoned-registration cleanup settings.
type SweeperConfig struct {
	// IntervalMin is the time between sweep runs in minutes.
	IntervalMin int `mapstructure:"interval_min"`
	// GraceMin is how long a PENDING account survives before removal,
	// in minutes. Kept longer than the OTP TTL to allow retries.
	GraceMin int `mapstructure:"grace_min"`
}

// EmailConfig holds outbound email settings.
type EmailConfig struct {
	// Provider: "resend" or "noop".
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	// SendTimeoutSec bounds a single dispatch attempt.
	SendTimeoutSec int `mapstructure:"send_timeout_sec"`
}

// PostgresConnectionString builds the PostgreSQL DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// CodeTTL returns the OTP lifetime as a duration, defaulting to 10 minutes.
func (v *VerificationConfig) CodeTTL() time.Duration {
	if v.CodeTTLMin <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(v.CodeTTLMin) * time.Minute
}

// ResendCooldown returns the minimum gap between issued codes.
func (v *VerificationConfig) ResendCooldown() time.Duration {
	if v.ResendCooldownSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(v.ResendCooldownSec) * time.Second
}

// Interval returns the sweep interval, defaulting to 10 minutes.
func (s *SweeperConfig) Interval() time.Duration {
	if s.IntervalMin <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(s.IntervalMin) * time.Minute
}

// Grace returns the PENDING grace window, defaulting to 40 minutes
// (four TTL periods).
func (s *SweeperConfig) Grace() time.Duration {
	if s.GraceMin <= 0 {
		return 40 * time.Minute
	}
	return time.Duration(s.GraceMin) * time.Minute
}

// SendTimeout bounds a single email dispatch attempt.
func (e *EmailConfig) SendTimeout() time.Duration {
	if e.SendTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(e.SendTimeoutSec) * time.Second
}

// Load reads configuration from a file merged with environment variables.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // a fresh instance avoids global viper state

	// Environment variables are bound explicitly so the mapping stays greppable.
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expiration_min", "JWT_EXPIRATION_MIN")

	vip.BindEnv("verification.code_ttl_min", "VERIFICATION_CODE_TTL_MIN")
	vip.BindEnv("verification.max_attempts", "VERIFICATION_MAX_ATTEMPTS")
	vip.BindEnv("verification.resend_cooldown_sec", "VERIFICATION_RESEND_COOLDOWN_SEC")
	vip.BindEnv("verification.code_pepper", "VERIFICATION_CODE_PEPPER")

	vip.BindEnv("sweeper.interval_min", "SWEEPER_INTERVAL_MIN")
	vip.BindEnv("sweeper.grace_min", "SWEEPER_GRACE_MIN")

	vip.BindEnv("email.provider", "EMAIL_PROVIDER")
	vip.BindEnv("email.api_key", "EMAIL_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("email.send_timeout_sec", "EMAIL_SEND_TIMEOUT_SEC")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.readtimeout", "SERVER_READTIMEOUT")
	vip.BindEnv("server.writetimeout", "SERVER_WRITETIMEOUT")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Config file '%s' not found, relying on environment variables/defaults.", configPath)
			} else {
				log.Printf("Warning: failed to read config file '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Loaded configuration ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("JWT Expiration Minutes: %d", cfg.JWT.ExpirationMin)
		log.Printf("OTP TTL Minutes: %d", cfg.Verification.CodeTTLMin)
		log.Printf("Sweep Interval Minutes: %d", cfg.Sweeper.IntervalMin)
		log.Printf("Sweep Grace Minutes: %d", cfg.Sweeper.GraceMin)
		log.Printf("Email Provider: %s", cfg.Email.Provider)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("----------------------------")
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}

	return &cfg, nil
}
