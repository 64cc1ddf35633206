package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	DatabaseURL    string
	AppHost        string
	JWTSecret      string
	JWTTTL         time.Duration
	MigrationsDir  string
	StaticDir      string
	RequestTimeout time.Duration
	AllowedOrigins []string
	TrustedProxies []string
	Google         GoogleConfig
	Backup         BackupConfig
}

type GoogleConfig struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	BackupFolderID string
	PersonalEmail  string
}

// Configured reports whether OAuth credentials for Drive backups are present.
func (g GoogleConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RefreshToken != ""
}

type BackupConfig struct {
	Schedule string
	Keep     int
	S3Bucket string
	S3Prefix string
	S3Region string
}

// LoadDotEnv loads .env without overwriting variables already set.
func LoadDotEnv(log *zap.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, falling back to system environment variables")
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AppHost:        getEnv("APP_HOST", ":3000"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		StaticDir:      os.Getenv("STATIC_DIR"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		Google: GoogleConfig{
			ClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
			RefreshToken:   os.Getenv("GOOGLE_REFRESH_TOKEN"),
			BackupFolderID: os.Getenv("GOOGLE_BACKUP_FOLDER_ID"),
			PersonalEmail:  os.Getenv("GOOGLE_PERSONAL_EMAIL"),
		},
		Backup: BackupConfig{
			Schedule: getEnv("BACKUP_SCHEDULE", "0 13 * * *"),
			S3Bucket: os.Getenv("BACKUP_S3_BUCKET"),
			S3Prefix: getEnv("BACKUP_S3_PREFIX", "asdb-backups/"),
			S3Region: os.Getenv("AWS_REGION"),
		},
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 120*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Backup.Keep, err = getInt("BACKUP_KEEP", 50); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
			}
		}
	}
	if c.Backup.Keep < 1 {
		return fmt.Errorf("BACKUP_KEEP must be positive, got %d", c.Backup.Keep)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
