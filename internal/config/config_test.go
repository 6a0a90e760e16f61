package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "BACKEND_URL", "STATIC_DIR",
		"HEYGEN_API_KEY", "HEYGEN_API_URL", "AVATAR_NAME", "AVATAR_QUALITY", "AVATAR_VOICE",
		"LLM_PROVIDER", "LLM_MODEL", "OPENAI_API_KEY", "GROQ_API_KEY", "SYSTEM_PROMPT",
		"DEEPGRAM_API_KEY", "STT_LANGUAGE", "AUDIO_BACKEND", "CAPTURE_CEILING",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.Port != "3000" || cfg.BackendURL != "http://localhost:3000" {
		t.Fatalf("unexpected server defaults %+v", cfg)
	}
	if cfg.AvatarName != "default" || cfg.AvatarQuality != "high" {
		t.Fatalf("unexpected avatar defaults %+v", cfg)
	}
	if cfg.LLMProvider != LLMProviderOpenAI || cfg.AudioBackend != AudioBackendMiniaudio {
		t.Fatalf("unexpected provider defaults %+v", cfg)
	}
	if cfg.CaptureCeiling != 60*time.Second {
		t.Fatalf("expected 60s capture ceiling, got %s", cfg.CaptureCeiling)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("LLM_PROVIDER", "Groq")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("CAPTURE_CEILING", "15s")
	t.Setenv("AUDIO_BACKEND", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Port != "8080" || cfg.CaptureCeiling != 15*time.Second || cfg.AudioBackend != AudioBackendNone {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.LLMProvider != LLMProviderGroq || cfg.LLMAPIKey() != "groq-key" {
		t.Fatalf("expected groq provider with its key, got %q / %q", cfg.LLMProvider, cfg.LLMAPIKey())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "provider", key: "LLM_PROVIDER", value: "anthropic"},
		{name: "audio backend", key: "AUDIO_BACKEND", value: "alsa"},
		{name: "quality", key: "AVATAR_QUALITY", value: "ultra"},
		{name: "ceiling format", key: "CAPTURE_CEILING", value: "soon"},
		{name: "ceiling sign", key: "CAPTURE_CEILING", value: "-1s"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(testCase.key, testCase.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", testCase.key, testCase.value)
			}
		})
	}
}
