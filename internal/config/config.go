package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Email        EmailConfig        `mapstructure:"email"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Registration RegistrationConfig `mapstructure:"registration"`
	Logger       LoggerConfig       `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	OpTimeout       time.Duration `mapstructure:"op_timeout"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// AuthConfig holds token and password settings
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenExpiration time.Duration `mapstructure:"token_expiration"`
	Issuer          string        `mapstructure:"issuer"`
	BcryptCost      int           `mapstructure:"bcrypt_cost"`
}

// EmailConfig holds SMTP delivery settings; an empty host disables
// approval emails
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// StorageConfig holds upload storage settings
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
}

// RegistrationConfig holds unique id issuing settings
type RegistrationConfig struct {
	EventCode string `mapstructure:"event_code"`
	PadWidth  int    `mapstructure:"pad_width"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/registration.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.op_timeout", 10*time.Second)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Auth defaults
	viper.SetDefault("auth.token_expiration", 24*time.Hour)
	viper.SetDefault("auth.issuer", "spicon-registration")
	viper.SetDefault("auth.bcrypt_cost", 0)

	// Email defaults
	viper.SetDefault("email.port", 587)

	// Storage defaults
	viper.SetDefault("storage.upload_dir", "uploads")

	// Registration defaults
	viper.SetDefault("registration.event_code", "SPICON26")
	viper.SetDefault("registration.pad_width", 3)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("email.username", "SMTP_USERNAME")
	viper.BindEnv("email.password", "SMTP_PASSWORD")
	viper.BindEnv("email.from", "SMTP_FROM")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Registration.EventCode == "" {
		return fmt.Errorf("registration.event_code is required")
	}
	if c.Registration.PadWidth < 1 {
		return fmt.Errorf("registration.pad_width must be at least 1")
	}
	if c.Email.Host != "" && c.Email.From == "" {
		return fmt.Errorf("email.from is required when email.host is set")
	}
	return nil
}
