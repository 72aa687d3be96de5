// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	FrontendURL        string
	SessionSecret      []byte
	SessionTTL         time.Duration
	SecretKey          []byte
	GeminiAPIKey       string
	GeminiModel        string
	ElevenLabsAPIKey   string
	Tasklist           string
	ProviderTimeout    time.Duration
	ListenAddr         string
	DBPath             string
}

// HasGoogleCredentials returns true when both the OAuth client id and secret
// are non-empty. Used by the composition root to decide whether the
// authorization flow can be served at startup.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. BRAINDUMP_SESSION_SECRET is required. Google OAuth credentials
// (BRAINDUMP_GOOGLE_CLIENT_ID, BRAINDUMP_GOOGLE_CLIENT_SECRET) and the AI
// service keys are optional; features backed by an absent credential stay
// inactive. Optional variables with defaults: BRAINDUMP_OAUTH_REDIRECT_URL,
// BRAINDUMP_FRONTEND_URL, BRAINDUMP_SESSION_TTL (720h),
// BRAINDUMP_GEMINI_MODEL (gemini-2.5-flash), BRAINDUMP_PROVIDER_TIMEOUT (5s),
// BRAINDUMP_LISTEN_ADDR (127.0.0.1:8080), BRAINDUMP_DB_PATH (braindump.db).
func Load() (*Config, error) {
	sessionSecret := os.Getenv("BRAINDUMP_SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("BRAINDUMP_SESSION_SECRET is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("BRAINDUMP_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	redirectURL := "http://" + listenAddr + "/api/v1/auth/google/callback"
	if v, ok := os.LookupEnv("BRAINDUMP_OAUTH_REDIRECT_URL"); ok {
		redirectURL = v
	}

	frontendURL := "http://localhost:5173/"
	if v, ok := os.LookupEnv("BRAINDUMP_FRONTEND_URL"); ok {
		frontendURL = v
	}

	sessionTTL := 720 * time.Hour
	if v, ok := os.LookupEnv("BRAINDUMP_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BRAINDUMP_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		sessionTTL = parsed
	}

	providerTimeout := 5 * time.Second
	if v, ok := os.LookupEnv("BRAINDUMP_PROVIDER_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BRAINDUMP_PROVIDER_TIMEOUT has invalid duration %q: %w", v, err)
		}
		providerTimeout = parsed
	}

	dbPath := "braindump.db"
	if v, ok := os.LookupEnv("BRAINDUMP_DB_PATH"); ok {
		dbPath = v
	}

	geminiModel := "gemini-2.5-flash"
	if v, ok := os.LookupEnv("BRAINDUMP_GEMINI_MODEL"); ok {
		geminiModel = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("BRAINDUMP_SECRET_KEY"); ok && v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("BRAINDUMP_SECRET_KEY is not valid hex: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("BRAINDUMP_SECRET_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		secretKey = decoded
	}

	return &Config{
		GoogleClientID:     os.Getenv("BRAINDUMP_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("BRAINDUMP_GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   redirectURL,
		FrontendURL:        frontendURL,
		SessionSecret:      []byte(sessionSecret),
		SessionTTL:         sessionTTL,
		SecretKey:          secretKey,
		GeminiAPIKey:       os.Getenv("BRAINDUMP_GEMINI_API_KEY"),
		GeminiModel:        geminiModel,
		ElevenLabsAPIKey:   os.Getenv("BRAINDUMP_ELEVENLABS_API_KEY"),
		Tasklist:           os.Getenv("BRAINDUMP_TASKLIST"),
		ProviderTimeout:    providerTimeout,
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
	}, nil
}
