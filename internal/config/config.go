package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envDBDriver              = "DB_DRIVER"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envSQLitePath            = "SQLITE_PATH"
	envJWTSecret             = "JWT_SECRET"
	envSessionExpiry         = "SESSION_EXPIRY_MINUTES"
	envSessionCookieSecure   = "SESSION_COOKIE_SECURE"
	envS3Bucket              = "S3_BUCKET"
	envS3Endpoint            = "S3_ENDPOINT"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envDownloadURLTimeLimit  = "DOWNLOAD_URL_TIME_LIMIT"
	envMaxUploadSize         = "MAX_UPLOAD_SIZE"
	envTaskForwardOnly       = "TASK_STATUS_FORWARD_ONLY"
	envCSRFEnabled           = "CSRF_ENABLED"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultServerPort          = "8000"
	defaultServerReadTimeout   = 10 * time.Second
	defaultServerWriteTimeout  = 30 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultDBDriver            = DriverPostgres
	defaultDBHost              = "localhost"
	defaultDBPort              = 5432
	defaultDBName              = "department"
	defaultDBUser              = "department_app"
	defaultDBSSLMode           = "disable"
	defaultDBMaxConns          = 10
	defaultDBMinConns          = 2
	defaultSQLitePath          = "department.db"
	defaultSessionExpiry       = 8 * time.Hour
	defaultPresignedURLExpiry  = 15 * time.Minute
	defaultMaxUploadSize       = int64(20 * 1024 * 1024)
	defaultLogLevel            = "info"
	defaultLogFormat           = "json"
	minJWTSecretLength         = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	errPortRequiredFmt         = "PORT must be set"
	errUnknownDBDriverFmt      = "DB_DRIVER must be %q or %q, got %q"
	errSQLitePathRequiredFmt   = "SQLITE_PATH must be set when DB_DRIVER=sqlite"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errSessionExpiryFmt        = "SESSION_EXPIRY_MINUTES must be positive"
	errMaxUploadSizeFmt        = "MAX_UPLOAD_SIZE must be positive"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	App      AppConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	Database   string
	User       string
	Password   string
	SSLMode    string
	MaxConns   int
	MinConns   int
	SQLitePath string
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
	CookieSecure   bool
}

// StorageConfig describes the attachment bucket. An empty Bucket disables
// attachments.
type StorageConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

type AppConfig struct {
	PresignedURLExpiry time.Duration
	MaxUploadSize      int64
	StatusForwardOnly  bool
	CSRFEnabled        bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads and validates the full server configuration.
func Load() (*Config, error) {
	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}
	return cfg, nil
}

// LoadDatabase is Load for tools that only touch storage: session and
// upload settings are read but not required.
func LoadDatabase() (*Config, error) {
	cfg := fromEnv()
	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv(envDBDriver, defaultDBDriver)),
			Host:       getEnv(envDBHost, defaultDBHost),
			Port:       getIntEnv(envDBPort, defaultDBPort),
			Database:   getEnv(envDBName, defaultDBName),
			User:       getEnv(envDBUser, defaultDBUser),
			Password:   os.Getenv(envDBPassword),
			SSLMode:    getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns:   getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns:   getIntEnv(envDBMinConns, defaultDBMinConns),
			SQLitePath: getEnv(envSQLitePath, defaultSQLitePath),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envSessionExpiry, defaultSessionExpiry),
			CookieSecure:   getBoolEnv(envSessionCookieSecure, false),
		},
		Storage: StorageConfig{
			Bucket:          os.Getenv(envS3Bucket),
			Endpoint:        os.Getenv(envS3Endpoint),
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
		},
		App: AppConfig{
			PresignedURLExpiry: getDurationEnv(envDownloadURLTimeLimit, defaultPresignedURLExpiry),
			MaxUploadSize:      getInt64Env(envMaxUploadSize, defaultMaxUploadSize),
			StatusForwardOnly:  getBoolEnv(envTaskForwardOnly, false),
			CSRFEnabled:        getBoolEnv(envCSRFEnabled, true),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: getEnv(envLogFormat, defaultLogFormat),
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New(errPortRequiredFmt)
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if c.JWT.Secret == "" {
		return errors.New(messages.requiredEnvNotSet(envJWTSecret))
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return errors.New(errJWTSecretLowEntropyFmt)
	}

	if c.JWT.ExpiryDuration <= 0 {
		return errors.New(errSessionExpiryFmt)
	}

	if c.App.MaxUploadSize <= 0 {
		return errors.New(errMaxUploadSizeFmt)
	}

	if c.Storage.Enabled() {
		required := []struct{ key, value string }{
			{envAWSRegion, c.Storage.Region},
			{envAWSAccessKeyID, c.Storage.AccessKeyID},
			{envAWSSecretAccessKey, c.Storage.SecretAccessKey},
		}
		for _, r := range required {
			if r.value == "" {
				return errors.New(messages.requiredWhenSet(r.key, envS3Bucket))
			}
		}
	}

	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Password == "" {
			return errors.New(messages.requiredEnvNotSet(envDBPassword))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New(errSQLitePathRequiredFmt)
		}
	default:
		return fmt.Errorf(errUnknownDBDriverFmt, DriverPostgres, DriverSQLite, c.Driver)
	}
	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
