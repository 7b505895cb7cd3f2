package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the photo gallery API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Upload   UploadConfig
	Gallery  GalleryConfig
	Metrics  MetricsConfig
	// SecretKey signs the flash-message cookie.
	SecretKey string
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// UploadConfig governs the ingestion path.
type UploadConfig struct {
	// Dir is the directory stored files are written to, created at boot.
	Dir string
	// MaxContentLength bounds the aggregate request body in bytes.
	MaxContentLength int64
	// AllowedExtensions holds lower-cased extensions without the dot.
	AllowedExtensions []string
}

// Allowed reports whether ext (without dot, any case) may be uploaded.
func (u UploadConfig) Allowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range u.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// GalleryConfig parameterizes the browsing surface.
type GalleryConfig struct {
	PageSize int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

const defaultMaxContentLength = 16 << 20 // 16 MiB

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("GALLERY_API_HOST", "0.0.0.0"),
			Port:         getInt("GALLERY_API_PORT", 8080),
			ReadTimeout:  getDuration("GALLERY_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("GALLERY_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("GALLERY_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "gallery_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "gallery"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Upload: UploadConfig{
			Dir:               getString("GALLERY_UPLOAD_DIR", "static/uploads"),
			MaxContentLength:  getInt64("GALLERY_MAX_CONTENT_LENGTH", defaultMaxContentLength),
			AllowedExtensions: getList("GALLERY_ALLOWED_EXTENSIONS", []string{"png", "jpg", "jpeg", "gif", "webp"}),
		},
		Gallery: GalleryConfig{
			PageSize: getInt("GALLERY_PAGE_SIZE", 12),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("GALLERY_METRICS_PATH", "/metrics"),
		},
		SecretKey: getString("GALLERY_SECRET_KEY", "change-me-to-a-32-byte-secret"),
	}

	if cfg.Upload.MaxContentLength <= 0 {
		cfg.Upload.MaxContentLength = defaultMaxContentLength
	}
	if cfg.Gallery.PageSize <= 0 {
		cfg.Gallery.PageSize = 12
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	if val, ok := os.LookupEnv(key); ok {
		var items []string
		for _, item := range strings.Split(val, ",") {
			item = strings.ToLower(strings.TrimSpace(item))
			if item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
