package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type DatasetDriver string

const (
	DatasetCSV    DatasetDriver = "csv"
	DatasetSQLite DatasetDriver = "sqlite"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5000"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string      `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Field device
	ESPAddress string        `env:"ESP_IP"`
	ESPTimeout time.Duration `env:"ESP_TIMEOUT" envDefault:"3s"`

	// Storage
	HistoryFilePath string        `env:"HISTORY_FILE_PATH" envDefault:"hist.txt"`
	DatasetDriver   DatasetDriver `env:"DATASET_DRIVER" envDefault:"csv"`
	DatasetFilePath string        `env:"DATASET_FILE_PATH" envDefault:"pump_log.csv"`
	DatasetDBPath   string        `env:"DATASET_DB_PATH" envDefault:"data/pump_log.db"`

	// Empty disables periodic polling; refresh is then on demand only.
	TelemetryPollSchedule string `env:"TELEMETRY_POLL_SCHEDULE"`
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Parse reads the configuration from the environment without exiting on error.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
