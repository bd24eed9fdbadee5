package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the portal
type Config struct {
	// Environment: "development" or "production"
	Env string

	Port          string
	PublicBaseURL string

	// Database
	DBPath string

	// Object storage
	StorageBackend string // "fs" or "gcs"
	StorageRoot    string // fs backend only
	StorageBuckets []string
	GCSEndpoint    string // optional emulator endpoint

	// Admin bootstrap
	AdminCreateSecret      string
	BootstrapAdminUsername string
	BootstrapAdminPassword string

	SessionTTL     time.Duration
	AllowedOrigins []string
	TLSCertDir     string
	LogLevel       string

	// TrustedProxies lists the reverse proxies (IPs or CIDR ranges) whose
	// X-Forwarded-For header names the client. Empty means clients connect
	// directly.
	TrustedProxies []string
	// GrievancesPerMinute caps anonymous grievance submissions per client
	GrievancesPerMinute int
}

// Load reads configuration from the environment. If envFile is non-empty it is
// loaded first; a missing default .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:                    strings.ToLower(getEnv("SK_ENV", "development")),
		Port:                   getEnv("SK_PORT", "8080"),
		DBPath:                 getEnv("SK_DB_PATH", "./skportal.db"),
		StorageBackend:         strings.ToLower(getEnv("SK_STORAGE_BACKEND", "fs")),
		StorageRoot:            getEnv("SK_STORAGE_ROOT", "./uploads"),
		StorageBuckets:         splitList(getEnv("SK_STORAGE_BUCKETS", "announcements,gallery,projects")),
		GCSEndpoint:            getEnv("SK_GCS_ENDPOINT", ""),
		AdminCreateSecret:      getEnv("SK_ADMIN_CREATE_SECRET", ""),
		BootstrapAdminUsername: getEnv("SK_BOOTSTRAP_ADMIN_USERNAME", ""),
		BootstrapAdminPassword: getEnv("SK_BOOTSTRAP_ADMIN_PASSWORD", ""),
		SessionTTL:             24 * time.Hour,
		AllowedOrigins:         splitList(getEnv("SK_ALLOWED_ORIGINS", "http://localhost:3000")),
		TLSCertDir:             getEnv("SK_TLS_CERT_DIR", ""),
		LogLevel:               strings.ToLower(getEnv("SK_LOG_LEVEL", "info")),
		TrustedProxies:         splitList(getEnv("SK_TRUSTED_PROXIES", "")),
	}

	perMinute, err := strconv.Atoi(getEnv("SK_GRIEVANCES_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SK_GRIEVANCES_PER_MINUTE: %w", err)
	}
	cfg.GrievancesPerMinute = perMinute
	cfg.PublicBaseURL = strings.TrimRight(getEnv("SK_PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if !filepath.IsAbs(cfg.DBPath) {
		cwd, _ := os.Getwd()
		cfg.DBPath = filepath.Join(cwd, cfg.DBPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "fs", "gcs":
	default:
		return fmt.Errorf("unknown storage backend %q (want fs or gcs)", c.StorageBackend)
	}
	if len(c.StorageBuckets) == 0 {
		return fmt.Errorf("SK_STORAGE_BUCKETS must list at least one bucket")
	}
	if c.GrievancesPerMinute < 1 {
		return fmt.Errorf("SK_GRIEVANCES_PER_MINUTE must be at least 1")
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("SK_TRUSTED_PROXIES: %q is not an IP address or CIDR range", proxy)
		}
	}
	if (c.BootstrapAdminUsername == "") != (c.BootstrapAdminPassword == "") {
		return fmt.Errorf("SK_BOOTSTRAP_ADMIN_USERNAME and SK_BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// IsProduction reports whether cookies must always carry the Secure flag
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
