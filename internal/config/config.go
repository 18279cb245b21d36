package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
)

// Config holds all application configuration
type Config struct {
	Database       DatabaseConfig
	Server         ServerConfig
	Security       SecurityConfig
	CORS           CORSConfig
	Logging        LoggingConfig
	Storage        StorageConfig
	Media          MediaConfig
	Recommendation RecommendationConfig
	Sharing        SharingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string // Full PostgreSQL URL
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int
	Host            string
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds security-related settings
type SecurityConfig struct {
	JWTSecret string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// StorageConfig selects persistence backends.
type StorageConfig struct {
	Driver          string // postgres, memory
	PlaylistBackend string // postgres, mongo, memory
	MongoURI        string
	MongoDatabase   string
	SeedDemoCatalog bool
}

// MediaConfig points at the S3-compatible bucket for uploads. An empty
// endpoint disables uploads.
type MediaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// RecommendationConfig configures local and external recommendations.
type RecommendationConfig struct {
	ServiceURL   string
	DefaultLimit int
	Timeout      time.Duration
}

// SharingConfig bounds share-code generation.
type SharingConfig struct {
	MaxAttempts int
}

// Load reads configuration from the environment, after loading
// config/local.env and .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load("config/local.env")
	_ = godotenv.Load()

	cfg := &Config{}
	var problems []string
	collect := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	collect(cfg.loadDatabase())
	collect(cfg.loadServer())
	cfg.Security.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.loadCORS()
	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
	collect(cfg.loadStorage())
	collect(cfg.loadMedia())
	collect(cfg.loadRecommendation())
	collect(cfg.loadSharing())

	if len(problems) > 0 {
		return nil, fmt.Errorf("load config:\n  - %s", strings.Join(problems, "\n  - "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadDatabase() error {
	c.Database.URL = os.Getenv("DATABASE_URL")
	if c.Database.URL != "" {
		return nil
	}

	c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	port, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return err
	}
	c.Database.Port = port

	if c.Database.User != "" && c.Database.Name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return nil
}

func (c *Config) loadServer() error {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return err
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	c.Server.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	return err
}

func (c *Config) loadCORS() {
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default for local development
		c.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8080",
		}
		return
	}
	for _, origin := range strings.Split(originsEnv, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, trimmed)
		}
	}
}

func (c *Config) loadStorage() error {
	c.Storage.Driver = strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverPostgres))
	c.Storage.PlaylistBackend = strings.ToLower(getEnvOrDefault("PLAYLIST_BACKEND", c.Storage.Driver))
	c.Storage.MongoURI = os.Getenv("MONGODB_URI")
	c.Storage.MongoDatabase = getEnvOrDefault("MONGODB_DB", "musicapp")

	seed, err := getEnvBool("SEED_DEMO_CATALOG", false)
	c.Storage.SeedDemoCatalog = seed
	return err
}

func (c *Config) loadMedia() error {
	c.Media.Endpoint = os.Getenv("MINIO_ENDPOINT")
	c.Media.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	c.Media.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	c.Media.Bucket = getEnvOrDefault("MINIO_BUCKET", "musicapp")
	c.Media.PublicURL = os.Getenv("MINIO_PUBLIC_URL")

	useSSL, err := getEnvBool("MINIO_USE_SSL", false)
	c.Media.UseSSL = useSSL
	return err
}

func (c *Config) loadRecommendation() error {
	c.Recommendation.ServiceURL = strings.TrimRight(os.Getenv("RECOMMENDATION_SERVICE_URL"), "/")

	limit, err := getEnvInt("RECOMMENDATION_LIMIT_DEFAULT", 10)
	if err != nil {
		return err
	}
	c.Recommendation.DefaultLimit = limit
	c.Recommendation.Timeout, err = getEnvDuration("RECOMMENDATION_TIMEOUT", 10*time.Second)
	return err
}

func (c *Config) loadSharing() error {
	attempts, err := getEnvInt("SHARE_CODE_MAX_ATTEMPTS", 8)
	c.Sharing.MaxAttempts = attempts
	return err
}

// NeedsPostgres reports whether any backend is served by Postgres.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.Driver == DriverPostgres || c.Storage.PlaylistBackend == DriverPostgres
}

// MediaEnabled reports whether uploads should be wired.
func (c *Config) MediaEnabled() bool {
	return c.Media.Endpoint != ""
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		errors = append(errors, "STORE_DRIVER must be one of: postgres, memory")
	}
	switch c.Storage.PlaylistBackend {
	case DriverPostgres, DriverMemory, DriverMongo:
	default:
		errors = append(errors, "PLAYLIST_BACKEND must be one of: postgres, mongo, memory")
	}
	if c.Storage.PlaylistBackend == DriverMongo && c.Storage.MongoURI == "" {
		errors = append(errors, "MONGODB_URI is required when PLAYLIST_BACKEND=mongo")
	}

	if c.NeedsPostgres() && c.Database.URL == "" {
		errors = append(errors, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}

	if c.Security.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if len(c.Security.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if c.MediaEnabled() && (c.Media.AccessKey == "" || c.Media.SecretKey == "") {
		errors = append(errors, "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}

	if c.Recommendation.DefaultLimit < 1 {
		errors = append(errors, "RECOMMENDATION_LIMIT_DEFAULT must be positive")
	}
	if c.Sharing.MaxAttempts < 1 {
		errors = append(errors, "SHARE_CODE_MAX_ATTEMPTS must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
