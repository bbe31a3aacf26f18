package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is built once at startup and passed down explicitly.
type Config struct {
	Port        string
	DBDriver    string
	DBDSN       string
	JWTSecret   string
	CORSOrigins []string
	Gateway     GatewayConfig
	Quiz        QuizConfig
}

type GatewayConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Models       []string
	VerifyModels bool
	CLIPath      string
}

type QuizConfig struct {
	MaxCount int
}

// Providers that need no credential.
var keylessProviders = map[string]bool{"cli": true, "mock": true}

// NeedsCredential reports whether the configured provider requires an API key.
func (g GatewayConfig) NeedsCredential() bool {
	return !keylessProviders[g.Provider]
}

// MaskedKey returns the first few characters of the key for diagnostics.
func (g GatewayConfig) MaskedKey() string {
	if g.APIKey == "" {
		return "NOT SET"
	}
	n := 15
	if len(g.APIKey) < n {
		n = len(g.APIKey) / 2
	}
	return g.APIKey[:n] + "..."
}

func FromEnv() Config {
	provider := strings.ToLower(getEnv("QUIZ_LLM_PROVIDER", "gemini"))
	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	return Config{
		Port:        getEnv("PORT", "8080"),
		DBDriver:    driver,
		DBDSN:       dsnFromEnv(driver),
		JWTSecret:   getEnv("JWT_SECRET", "study-ai-dev-signing-key"),
		CORSOrigins: csvOr("CORS_ORIGINS", "*"),
		Gateway: GatewayConfig{
			Provider:     provider,
			APIKey:       apiKeyFor(provider),
			BaseURL:      os.Getenv("OPENAI_BASE_URL"),
			Models:       csvOr("QUIZ_MODELS", strings.Join(DefaultModels(provider), ",")),
			VerifyModels: envBool("QUIZ_VERIFY_MODELS", false),
			CLIPath:      getEnv("QUIZ_CLI_PATH", "gemini"),
		},
		Quiz: QuizConfig{
			MaxCount: envInt("QUIZ_MAX_COUNT", 50),
		},
	}
}

// DefaultModels is the ordered model preference list for a provider.
func DefaultModels(provider string) []string {
	switch provider {
	case "anthropic":
		return []string{"claude-sonnet-4-5", "claude-haiku-4-5"}
	case "openai":
		return []string{"gpt-4o-mini", "gpt-4o"}
	case "cli", "mock":
		return []string{provider}
	default:
		return []string{
			"gemini-2.5-flash",
			"gemini-2.0-flash",
			"gemini-2.5-pro",
			"gemini-1.5-flash",
			"gemini-pro",
		}
	}
}

func apiKeyFor(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_AI_API_KEY"))
	}
}

// DefaultSQLiteDSN is used when DB_DRIVER=sqlite and DB_DSN is unset.
const DefaultSQLiteDSN = "file:study_ai.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

func dsnFromEnv(driver string) string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}
	if driver == "sqlite" {
		return DefaultSQLiteDSN
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "study_user"),
		getEnv("DB_PASSWORD", "study_password"),
		getEnv("DB_NAME", "study_ai"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func csvOr(key, def string) []string {
	parts := strings.Split(getEnv(key, def), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
