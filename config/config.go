package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"idman-gateway/internal/domain"
	"idman-gateway/internal/infrastructure/cache"
)

// Config holds the application configuration
type Config struct {
	Port string // Service port

	// Gateway side: validating incoming tokens against the authority.
	AuthEndpoint      string        // Token authority base URL
	ServiceID         string        // Service this gateway protects
	ServiceAuthSecret string        // Shared secret for authority calls
	AllowedPrefixes   []string      // Path prefixes that bypass the gate
	ResourcePrefix    string        // Prefix the gateway is mounted under
	LoginPath         string        // Login page path for challenges
	RequiredRole      string        // Role the gate demands, empty to skip
	TokenCacheSpec    string        // Principal cache spec string
	AuthzCacheSpec    string        // Authorization decision cache spec string
	AuthzNegativeTTL  time.Duration // TTL override for denial entries, 0 uses the cache default

	// Outbound HTTP transport to the authority.
	ConnectTimeout      time.Duration
	RequestTimeout      time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// Authority side: issuing and checking tokens.
	JWTIssuer   string        // JWT issuer claim
	JWTSecret   string        // Secret for signing session JWTs
	SessionTTL  time.Duration // Lifetime of password-login sessions
	BaseURL     string        // Public base URL, used for OAuth callbacks
	DatabaseURL string        // Postgres DSN, empty selects the in-memory store

	// Credential provider selection.
	AuthProvider      domain.AuthMode
	GoogleClientID    string
	GoogleSecret      string
	GoogleLoginDomain string
	GoogleProxy       string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port:              getEnv("PORT", "8888"),
		AuthEndpoint:      getEnv("AUTH_ENDPOINT", ""),
		ServiceID:         getEnv("SERVICE_ID", ""),
		ServiceAuthSecret: getEnv("SERVICE_AUTH_SECRET", ""),
		ResourcePrefix:    getEnv("RESOURCE_PREFIX", ""),
		LoginPath:         getEnv("LOGIN_PATH", "/login"),
		RequiredRole:      getEnv("REQUIRED_ROLE", ""),
		TokenCacheSpec:    getEnv("TOKEN_CACHE_SPEC", "maximumSize=10000,expireAfterAccess=10m"),
		AuthzCacheSpec:    getEnv("AUTHZ_CACHE_SPEC", "maximumSize=10000,expireAfterWrite=5m"),

		ConnectTimeout:      3 * time.Second,
		RequestTimeout:      5 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,

		JWTIssuer:   getEnv("JWT_ISSUER", "idman-gateway"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		SessionTTL:  24 * time.Hour,
		BaseURL:     getEnv("BASE_URL", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		AuthProvider:      domain.AuthMode(getEnv("AUTH_PROVIDER", string(domain.AuthModePassword))),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleLoginDomain: getEnv("GOOGLE_LOGIN_DOMAIN", ""),
		GoogleProxy:       getEnv("GOOGLE_PROXY", ""),
	}

	if prefixes := os.Getenv("ALLOWED_PREFIXES"); prefixes != "" {
		for _, p := range strings.Split(prefixes, ",") {
			if p = strings.TrimSpace(p); p != "" {
				config.AllowedPrefixes = append(config.AllowedPrefixes, p)
			}
		}
	}

	durations := []struct {
		env  string
		dest *time.Duration
	}{
		{"AUTHZ_NEGATIVE_TTL", &config.AuthzNegativeTTL},
		{"CONNECT_TIMEOUT", &config.ConnectTimeout},
		{"REQUEST_TIMEOUT", &config.RequestTimeout},
		{"SESSION_TTL", &config.SessionTTL},
	}
	for _, d := range durations {
		if raw := os.Getenv(d.env); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s format: %w", d.env, err)
			}
			*d.dest = parsed
		}
	}

	counts := []struct {
		env  string
		dest *int
	}{
		{"MAX_IDLE_CONNS", &config.MaxIdleConns},
		{"MAX_IDLE_CONNS_PER_HOST", &config.MaxIdleConnsPerHost},
	}
	for _, c := range counts {
		if raw := os.Getenv(c.env); raw != "" {
			var parsed int
			if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
				return nil, fmt.Errorf("invalid %s format: %w", c.env, err)
			}
			*c.dest = parsed
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if _, err := cache.ParseSpec(c.TokenCacheSpec); err != nil {
		return fmt.Errorf("invalid TOKEN_CACHE_SPEC: %w", err)
	}
	if _, err := cache.ParseSpec(c.AuthzCacheSpec); err != nil {
		return fmt.Errorf("invalid AUTHZ_CACHE_SPEC: %w", err)
	}

	switch c.AuthProvider {
	case domain.AuthModePassword:
	case domain.AuthModeGoogle:
		if c.GoogleClientID == "" || c.GoogleSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required for the google provider")
		}
		if c.BaseURL == "" {
			return fmt.Errorf("BASE_URL is required for the google provider")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.AuthEndpoint != "" {
		if c.ServiceID == "" {
			return fmt.Errorf("SERVICE_ID is required when AUTH_ENDPOINT is set")
		}
		if c.ServiceAuthSecret == "" {
			return fmt.Errorf("SERVICE_AUTH_SECRET is required when AUTH_ENDPOINT is set")
		}
	}

	if c.ConnectTimeout <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("CONNECT_TIMEOUT and REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
