// Package config loads runtime settings from the environment.
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
	defaultPort                = "8080"
	defaultEnv                 = "development"
	defaultKVBackend           = "memory"
	defaultGenAIModel          = "gemini-2.0-flash"
	defaultLLMTimeout          = 30 * time.Second
	defaultSessionTTL          = 2 * time.Hour
	defaultPreviewLoadingDelay = 500 * time.Millisecond
	defaultCaptureIdleTimeout  = 2 * time.Minute
	defaultMaxUploadBytes      = 10 << 20
	defaultRedisAddr           = "localhost:6379"
	defaultMongoDatabase       = "apparel_designer"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	KV      KVConfig
	DB      DatabaseConfig
	AI      AIConfig
	Render  RenderConfig
	Drive   DriveConfig
	Designs DesignConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// Production reports whether the service runs with production defaults.
func (s ServerConfig) Production() bool {
	return s.Env == "production"
}

// KVConfig selects the key-value backend used for chat logs and selections.
type KVConfig struct {
	Backend       string // memory | postgres | redis | mongo
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDatabase string
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns DATABASE_URL, or builds a connection string from the DB_* parts.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	port := d.Port
	if port == "" {
		port = "5432"
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, port, d.User, d.Password, d.Name, sslmode), nil
}

// AIConfig configures the design helper's language model.
type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RenderConfig configures preview rendering and rasterizing.
type RenderConfig struct {
	ChromePath   string
	LoadingDelay time.Duration
}

// DriveConfig enables exporting designs to Google Drive.
type DriveConfig struct {
	CredentialsPath string
	FolderID        string
}

// Enabled reports whether both credentials and a target folder are set.
func (d DriveConfig) Enabled() bool {
	return d.CredentialsPath != "" && d.FolderID != ""
}

// DesignConfig holds limits for design sessions and their side panels.
type DesignConfig struct {
	SessionTTL         time.Duration
	CaptureIdleTimeout time.Duration
	MaxUploadBytes     int64
}

// LoadDotEnv loads .env outside production. A missing file is not an error.
func LoadDotEnv(path string) error {
	if os.Getenv("ENV") == "production" {
		return nil
	}
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	// Overload so .env values win over the shell in development
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	return loadFrom(os.LookupEnv)
}

func loadFrom(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	var errs []string
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, raw))
			return fallback
		}
		return d
	}
	integer := func(key string, fallback int) int {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid integer %q", key, raw))
			return fallback
		}
		return n
	}

	port := strings.TrimPrefix(get("PORT", defaultPort), ":")

	cfg := Config{
		Server: ServerConfig{
			Port:     port,
			Env:      strings.ToLower(get("ENV", defaultEnv)),
			LogLevel: strings.ToLower(get("LOG_LEVEL", "info")),
		},
		KV: KVConfig{
			Backend:       strings.ToLower(get("KV_BACKEND", defaultKVBackend)),
			RedisAddr:     get("REDIS_ADDR", defaultRedisAddr),
			RedisPassword: get("REDIS_PASSWORD", ""),
			RedisDB:       integer("REDIS_DB", 0),
			MongoURI:      get("MONGO_URI", ""),
			MongoDatabase: get("MONGO_DATABASE", defaultMongoDatabase),
		},
		DB: DatabaseConfig{
			URL:      get("DATABASE_URL", ""),
			Host:     get("DB_HOST", ""),
			Port:     get("DB_PORT", ""),
			User:     get("DB_USER", ""),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", ""),
			SSLMode:  get("DB_SSLMODE", ""),
		},
		AI: AIConfig{
			APIKey:  get("GENAI_API_KEY", ""),
			Model:   get("GENAI_MODEL", defaultGenAIModel),
			Timeout: duration("LLM_TIMEOUT", defaultLLMTimeout),
		},
		Render: RenderConfig{
			ChromePath:   get("CHROME_PATH", ""),
			LoadingDelay: duration("PREVIEW_LOADING_DELAY", defaultPreviewLoadingDelay),
		},
		Drive: DriveConfig{
			CredentialsPath: get("GOOGLE_APPLICATION_CREDENTIALS", ""),
			FolderID:        get("DRIVE_EXPORT_FOLDER_ID", ""),
		},
		Designs: DesignConfig{
			SessionTTL:         duration("SESSION_TTL", defaultSessionTTL),
			CaptureIdleTimeout: duration("CAPTURE_IDLE_TIMEOUT", defaultCaptureIdleTimeout),
			MaxUploadBytes:     int64(integer("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		},
	}

	switch cfg.KV.Backend {
	case "memory", "postgres", "redis", "mongo":
	default:
		errs = append(errs, fmt.Sprintf("KV_BACKEND: unknown backend %q", cfg.KV.Backend))
	}
	if cfg.KV.Backend == "mongo" && cfg.KV.MongoURI == "" {
		errs = append(errs, "MONGO_URI: required when KV_BACKEND=mongo")
	}
	if cfg.KV.Backend == "postgres" {
		if _, err := cfg.DB.DSN(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}
