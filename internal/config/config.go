package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Sequence conflict policies
const (
	// ConflictPolicyRetry re-runs the atomic increment after a lost insert race
	ConflictPolicyRetry = "retry"
	// ConflictPolicyLegacy re-reads the row and returns stored+1 without persisting it
	ConflictPolicyLegacy = "legacy"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		MigrationsDir  string   `yaml:"migrations_dir" env:"SERVER_MIGRATIONS_DIR"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		URL             string `yaml:"url" env:"DATABASE_URL"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Auth struct {
		StaticToken     string `yaml:"static_token" env:"AUTH_STATIC_TOKEN"`
		DefaultUsername string `yaml:"default_username" env:"AUTH_DEFAULT_USERNAME"`
		DefaultPassword string `yaml:"default_password" env:"AUTH_DEFAULT_PASSWORD"`
		BcryptCost      int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Sequence struct {
		MaxAttempts    int    `yaml:"max_attempts" env:"SEQUENCE_MAX_ATTEMPTS"`
		ConflictPolicy string `yaml:"conflict_policy" env:"SEQUENCE_CONFLICT_POLICY"`
		IDPrefix       string `yaml:"id_prefix" env:"SEQUENCE_ID_PREFIX"`
	} `yaml:"sequence"`

	Documents struct {
		AssetsDir     string `yaml:"assets_dir" env:"DOCUMENTS_ASSETS_DIR"`
		TemplatesDir  string `yaml:"templates_dir" env:"DOCUMENTS_TEMPLATES_DIR"`
		Organization  string `yaml:"organization" env:"DOCUMENTS_ORGANIZATION"`
		VerifyBaseURL string `yaml:"verify_base_url" env:"DOCUMENTS_VERIFY_BASE_URL"`
	} `yaml:"documents"`

	Import struct {
		MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"IMPORT_MAX_UPLOAD_BYTES"`
	} `yaml:"import"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables.
// Precedence: environment > .env > yaml > defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadDotEnv(GetEnv("DOTENV_PATH", ".env")); err != nil {
		return nil, err
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv populates the process environment from a .env file if one exists.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.MigrationsDir = "migrations"
	config.Server.AllowedOrigins = []string{"*"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "docissuer"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "8h"
	config.JWT.Issuer = "docissuer"

	config.Auth.BcryptCost = 12

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Sequence.MaxAttempts = 5
	config.Sequence.ConflictPolicy = ConflictPolicyRetry
	config.Sequence.IDPrefix = "TR"

	config.Documents.AssetsDir = "assets"
	config.Documents.Organization = "Tarcin Robotic LLP"
	config.Documents.VerifyBaseURL = "http://localhost:8080/api/v1/verify"

	config.Import.MaxUploadBytes = 10 << 20
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database host or url is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	if config.Sequence.MaxAttempts < 1 {
		return fmt.Errorf("sequence max attempts must be at least 1")
	}

	switch config.Sequence.ConflictPolicy {
	case ConflictPolicyRetry, ConflictPolicyLegacy:
	default:
		return fmt.Errorf("unknown sequence conflict policy %q", config.Sequence.ConflictPolicy)
	}

	if strings.TrimSpace(config.Sequence.IDPrefix) == "" {
		return fmt.Errorf("certificate ID prefix is required")
	}

	if config.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import max upload bytes must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AccessTokenTTL returns the parsed JWT lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.AccessTokenExpiration)
	if err != nil {
		return 8 * time.Hour
	}
	return d
}

// AllowsAnyOrigin reports whether CORS is open to every origin
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.Server.AllowedOrigins) == 0
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

