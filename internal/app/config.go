package app

import (
	"github.com/carebridge/carebridge-backend/internal/platform/envutil"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	// Primary chat provider (summaries, record queries).
	OpenAIBaseURL      string
	OpenAIKey          string
	SummaryModel       string
	SummaryFallback    string
	ChatTimeoutSeconds int
	ChatMaxRetries     int

	// Online-search provider for drug lookups.
	OpenRouterBaseURL string
	OpenRouterKey     string
	DrugModel         string

	// Translation provider.
	TranslateBaseURL string
	TranslateKey     string
}

func LoadConfig() Config {
	return Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),

		OpenAIBaseURL:      envutil.String("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIKey:          envutil.String("OPENAI_API_KEY", ""),
		SummaryModel:       envutil.String("SUMMARY_MODEL", "gpt-4o"),
		SummaryFallback:    envutil.String("SUMMARY_FALLBACK_MODEL", "gpt-3.5-turbo"),
		ChatTimeoutSeconds: envutil.Int("CHAT_TIMEOUT_SECONDS", 60),
		ChatMaxRetries:     envutil.Int("CHAT_MAX_RETRIES", 3),

		OpenRouterBaseURL: envutil.String("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterKey:     envutil.String("OPENROUTER_API_KEY", ""),
		DrugModel:         envutil.String("DRUG_INFO_MODEL", ""),

		TranslateBaseURL: envutil.String("TRANSLATE_BASE_URL", "https://api.sarvam.ai/translate"),
		TranslateKey:     envutil.String("TRANSLATE_API_KEY", ""),
	}
}
