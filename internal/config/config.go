// Package config loads the process configuration from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-avatar/internal/config"

var logger = otelslog.NewLogger(scopeName)

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGroq   = "groq"

	AudioBackendMiniaudio = "miniaudio"
	AudioBackendPortaudio = "portaudio"
	AudioBackendNone      = "none"
)

type Config struct {
	Port       string
	BackendURL string
	StaticDir  string

	HeyGenAPIKey  string
	HeyGenAPIURL  string
	AvatarName    string
	AvatarQuality string
	AvatarVoice   string

	LLMProvider  string
	LLMModel     string
	OpenAIAPIKey string
	GroqAPIKey   string
	SystemPrompt string

	DeepgramAPIKey string
	STTLanguage    string
	AudioBackend   string
	CaptureCeiling time.Duration
}

// Load reads .env, if present, and then the environment. Variables already
// set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg := Config{
		Port:       getenv("PORT", "3000"),
		BackendURL: getenv("BACKEND_URL", "http://localhost:3000"),
		StaticDir:  os.Getenv("STATIC_DIR"),

		HeyGenAPIKey:  os.Getenv("HEYGEN_API_KEY"),
		HeyGenAPIURL:  getenv("HEYGEN_API_URL", "https://api.heygen.com"),
		AvatarName:    getenv("AVATAR_NAME", "default"),
		AvatarQuality: getenv("AVATAR_QUALITY", "high"),
		AvatarVoice:   os.Getenv("AVATAR_VOICE"),

		LLMProvider:  strings.ToLower(getenv("LLM_PROVIDER", LLMProviderOpenAI)),
		LLMModel:     os.Getenv("LLM_MODEL"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		SystemPrompt: os.Getenv("SYSTEM_PROMPT"),

		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		STTLanguage:    getenv("STT_LANGUAGE", "en-US"),
		AudioBackend:   strings.ToLower(getenv("AUDIO_BACKEND", AudioBackendMiniaudio)),
	}

	ceiling, err := time.ParseDuration(getenv("CAPTURE_CEILING", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CAPTURE_CEILING: %w", err)
	}
	cfg.CaptureCeiling = ceiling

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings. Missing credentials are not an
// error here, each command reports the ones it needs.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case LLMProviderOpenAI, LLMProviderGroq:
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q: expected %s or %s", c.LLMProvider, LLMProviderOpenAI, LLMProviderGroq)
	}

	switch c.AudioBackend {
	case AudioBackendMiniaudio, AudioBackendPortaudio, AudioBackendNone:
	default:
		return fmt.Errorf("invalid AUDIO_BACKEND %q", c.AudioBackend)
	}

	switch c.AvatarQuality {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("invalid AVATAR_QUALITY %q", c.AvatarQuality)
	}

	if c.CaptureCeiling <= 0 {
		return fmt.Errorf("CAPTURE_CEILING must be positive, got %s", c.CaptureCeiling)
	}
	return nil
}

// LLMAPIKey returns the API key of the selected provider.
func (c Config) LLMAPIKey() string {
	if c.LLMProvider == LLMProviderGroq {
		return c.GroqAPIKey
	}
	return c.OpenAIAPIKey
}

// WarnMissingServerCredentials logs every credential the backend server
// needs but does not have.
func (c Config) WarnMissingServerCredentials() {
	if c.HeyGenAPIKey == "" {
		logger.Warn("HEYGEN_API_KEY not set - session tokens and speak will fail")
	}
	if c.LLMAPIKey() == "" {
		logger.Warn("language model API key not set - completions will fail", "provider", c.LLMProvider)
	}
}

func getenv(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
