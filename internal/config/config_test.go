package config

import (
	"strings"
	"testing"
)

func TestFromEnv_GeminiKeyPrecedence(t *testing.T) {
	t.Setenv("QUIZ_LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "primary-key")
	t.Setenv("GOOGLE_AI_API_KEY", "secondary-key")

	cfg := FromEnv()
	if cfg.Gateway.APIKey != "primary-key" {
		t.Errorf("expected GEMINI_API_KEY to win, got %q", cfg.Gateway.APIKey)
	}

	t.Setenv("GEMINI_API_KEY", "")
	cfg = FromEnv()
	if cfg.Gateway.APIKey != "secondary-key" {
		t.Errorf("expected fallback to GOOGLE_AI_API_KEY, got %q", cfg.Gateway.APIKey)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "QUIZ_LLM_PROVIDER", "QUIZ_MODELS", "QUIZ_MAX_COUNT", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if !strings.Contains(cfg.DBDSN, "dbname=study_ai") {
		t.Errorf("DBDSN = %q, expected default dbname", cfg.DBDSN)
	}
	if cfg.Gateway.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Gateway.Provider)
	}
	if len(cfg.Gateway.Models) != 5 || cfg.Gateway.Models[0] != "gemini-2.5-flash" {
		t.Errorf("unexpected default models: %v", cfg.Gateway.Models)
	}
	if cfg.Quiz.MaxCount != 50 {
		t.Errorf("MaxCount = %d, want 50", cfg.Quiz.MaxCount)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_ModelOverride(t *testing.T) {
	t.Setenv("QUIZ_MODELS", " model-a , ,model-b")

	cfg := FromEnv()
	if len(cfg.Gateway.Models) != 2 || cfg.Gateway.Models[0] != "model-a" || cfg.Gateway.Models[1] != "model-b" {
		t.Errorf("unexpected models: %v", cfg.Gateway.Models)
	}
}

func TestNeedsCredential(t *testing.T) {
	tests := []struct {
		provider string
		want     bool
	}{
		{"gemini", true},
		{"anthropic", true},
		{"openai", true},
		{"cli", false},
		{"mock", false},
	}
	for _, tt := range tests {
		got := GatewayConfig{Provider: tt.provider}.NeedsCredential()
		if got != tt.want {
			t.Errorf("NeedsCredential(%q) = %v, want %v", tt.provider, got, tt.want)
		}
	}
}

func TestMaskedKey(t *testing.T) {
	if got := (GatewayConfig{}).MaskedKey(); got != "NOT SET" {
		t.Errorf("empty key: got %q", got)
	}
	got := GatewayConfig{APIKey: "AIzaSyA-0123456789abcdef"}.MaskedKey()
	if got != "AIzaSyA-0123456..." {
		t.Errorf("long key: got %q", got)
	}
	got = GatewayConfig{APIKey: "short"}.MaskedKey()
	if got != "sh..." {
		t.Errorf("short key: got %q", got)
	}
}

func TestFromEnv_SQLiteDefaultDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "")

	cfg := FromEnv()
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.DBDSN != DefaultSQLiteDSN {
		t.Errorf("DBDSN = %q, want %q", cfg.DBDSN, DefaultSQLiteDSN)
	}
}
