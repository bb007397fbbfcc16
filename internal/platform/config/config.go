package config

import (
	"os"
	"path/filepath"
	"time"
)

// Client captures SDK-level configuration.
type Client struct {
	APIURL          string
	HTTPTimeout     time.Duration
	CredentialsFile string
}

// Server captures configuration for the development identity server.
type Server struct {
	Addr            string
	JWTSigningKey   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

var (
	defaultHTTPTimeout     = 15 * time.Second
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// ClientFromEnv builds a Client config from environment variables so callers
// stay lean.
func ClientFromEnv() Client {
	apiURL := os.Getenv("PFN_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	timeout := defaultHTTPTimeout
	if raw := os.Getenv("PFN_HTTP_TIMEOUT"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			timeout = duration
		}
	}

	credentialsFile := os.Getenv("PFN_CREDENTIALS_FILE")
	if credentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		credentialsFile = filepath.Join(home, ".config", "pfn", "credentials.json")
	}

	return Client{
		APIURL:          apiURL,
		HTTPTimeout:     timeout,
		CredentialsFile: credentialsFile,
	}
}

// ServerFromEnv builds a Server config for the development identity server.
func ServerFromEnv() Server {
	addr := os.Getenv("IDENTITYD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	accessTTL := defaultAccessTokenTTL
	if raw := os.Getenv("ACCESS_TOKEN_TTL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			accessTTL = duration
		}
	}
	refreshTTL := defaultRefreshTokenTTL
	if raw := os.Getenv("REFRESH_TOKEN_TTL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			refreshTTL = duration
		}
	}

	return Server{
		Addr:            addr,
		JWTSigningKey:   jwtSigningKey,
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}
}
