// Package config loads server configuration from environment variables,
// optionally seeded from a .env file. Configuration is read once at startup.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by LLM_PROVIDER, STT_PROVIDER and TTS_PROVIDER
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
	ProviderMock       = "mock"
)

// MissingConfigError lists every required variable that is not set
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Config holds all server configuration
type Config struct {
	Port           string
	TokenServerURL string // where the call controller requests credentials
	CatalogPath    string // optional override of the embedded service catalog
	LogFormat      string // "json" or "console"

	// Voice room
	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string
	CitizenIdentity  string
	TokenTTL         time.Duration

	// Timeouts
	TokenRequestTimeout time.Duration
	BackendTimeout      time.Duration
	ExpiryCheckInterval time.Duration

	// Conversational backend
	LLMProvider   string
	LLMModel      string
	LLMMaxTokens  int
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Speech
	STTProvider             string
	STTLanguage             string
	STTAlternativeLanguages []string
	GoogleCredentials       string
	TTSProvider             string
	ElevenLabsAPIKey        string
	ElevenLabsVoiceID       string
	ElevenLabsModelID       string
	ElevenLabsOutputFormat  string
}

// Load reads configuration from the environment. Variables from envFiles
// (default ".env") fill in anything the environment does not already set;
// a missing file is not an error.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	port := getEnvOrDefault("PORT", "8080")

	return &Config{
		Port:           port,
		TokenServerURL: getEnvOrDefault("TOKEN_SERVER_URL", "http://localhost:"+port),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		LogFormat:      strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),

		LiveKitURL:       os.Getenv("LIVEKIT_URL"),
		LiveKitAPIKey:    os.Getenv("LIVEKIT_API_KEY"),
		LiveKitAPISecret: os.Getenv("LIVEKIT_API_SECRET"),
		CitizenIdentity:  getEnvOrDefault("CITIZEN_IDENTITY", "citizen-user"),
		TokenTTL:         getEnvDuration("TOKEN_TTL", time.Hour),

		TokenRequestTimeout: getEnvDuration("TOKEN_REQUEST_TIMEOUT", 5*time.Second),
		BackendTimeout:      getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		ExpiryCheckInterval: getEnvDuration("EXPIRY_CHECK_INTERVAL", 30*time.Second),

		LLMProvider:   strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini)),
		LLMModel:      os.Getenv("LLM_MODEL"),
		LLMMaxTokens:  getEnvInt("LLM_MAX_TOKENS", 150),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		STTProvider:             strings.ToLower(getEnvOrDefault("STT_PROVIDER", ProviderGoogle)),
		STTLanguage:             getEnvOrDefault("STT_LANGUAGE", "en-IN"),
		STTAlternativeLanguages: getEnvList("STT_ALTERNATIVE_LANGUAGES", []string{"hi-IN"}),
		GoogleCredentials:       os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		TTSProvider:             strings.ToLower(getEnvOrDefault("TTS_PROVIDER", ProviderElevenLabs)),
		ElevenLabsAPIKey:        os.Getenv("ELEVEN_LABS_API_KEY"),
		ElevenLabsVoiceID:       os.Getenv("ELEVEN_LABS_VOICE_ID"),
		ElevenLabsModelID:       os.Getenv("ELEVEN_LABS_MODEL_ID"),
		ElevenLabsOutputFormat:  os.Getenv("ELEVEN_LABS_OUTPUT_FORMAT"),
	}
}

// ValidateIssuer checks only what is needed to sign room credentials
func (c *Config) ValidateIssuer() error {
	missing := map[string]string{
		"LIVEKIT_API_KEY":    c.LiveKitAPIKey,
		"LIVEKIT_API_SECRET": c.LiveKitAPISecret,
	}
	return missingError(missing)
}

// Validate checks that every credential the selected providers need is
// present and that provider names are known. All missing variables are
// reported at once.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("LLM_PROVIDER must be gemini, openai or mock, got %q", c.LLMProvider)
	}
	switch c.STTProvider {
	case ProviderGoogle, ProviderMock:
	default:
		return fmt.Errorf("STT_PROVIDER must be google or mock, got %q", c.STTProvider)
	}
	switch c.TTSProvider {
	case ProviderElevenLabs, ProviderMock:
	default:
		return fmt.Errorf("TTS_PROVIDER must be elevenlabs or mock, got %q", c.TTSProvider)
	}

	missing := map[string]string{
		"LIVEKIT_URL":        c.LiveKitURL,
		"LIVEKIT_API_KEY":    c.LiveKitAPIKey,
		"LIVEKIT_API_SECRET": c.LiveKitAPISecret,
	}
	switch c.LLMProvider {
	case ProviderGemini:
		missing["GEMINI_API_KEY"] = c.GeminiAPIKey
	case ProviderOpenAI:
		missing["OPENAI_API_KEY"] = c.OpenAIAPIKey
	}
	if c.STTProvider == ProviderGoogle {
		missing["GOOGLE_APPLICATION_CREDENTIALS"] = c.GoogleCredentials
	}
	if c.TTSProvider == ProviderElevenLabs {
		missing["ELEVEN_LABS_API_KEY"] = c.ElevenLabsAPIKey
	}
	if err := missingError(missing); err != nil {
		return err
	}

	if c.TokenTTL <= 0 || c.TokenRequestTimeout <= 0 || c.BackendTimeout <= 0 {
		return fmt.Errorf("TOKEN_TTL, TOKEN_REQUEST_TIMEOUT and BACKEND_TIMEOUT must be positive")
	}
	if c.LLMMaxTokens < 1 {
		return fmt.Errorf("LLM_MAX_TOKENS must be at least 1, got %d", c.LLMMaxTokens)
	}

	return nil
}

func missingError(values map[string]string) error {
	var keys []string
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return &MissingConfigError{Keys: keys}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as duration or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, or returns a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
