package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// The database backs telemetry only; when Enabled is false the server runs
// with a log-based telemetry recorder and never opens a connection.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
}

// AuthConfig contains all authentication settings. An empty JWTSecret
// disables authentication and all requests run as the anonymous user.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
}

// TaskConfig contains settings for the asynchronous task subsystem.
type TaskConfig struct {
	// Workers is the fixed size of the worker pool.
	Workers int `mapstructure:"workers" validate:"required,gte=1"`

	// CleanupIntervalMinutes is how often the janitor sweeps old tasks.
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"required,gte=1"`

	// MaxAgeHours is how long a terminal task is retained before the
	// janitor evicts it.
	MaxAgeHours int `mapstructure:"max_age_hours" validate:"required,gte=1"`
}
