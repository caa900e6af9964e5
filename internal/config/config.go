package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"required"`
	Database    string `validate:"required"`
	UploadDir   string `validate:"required"`
	OutputDir   string `validate:"required"`

	Provider       string `validate:"oneof=ollama openai"`
	OllamaURL      string `validate:"required_if=Provider ollama"`
	OllamaModel    string `validate:"required_if=Provider ollama"`
	OpenAIKey      string `validate:"required_if=Provider openai"`
	OpenAIEndpoint string `validate:"omitempty,url"`
	OpenAIModel    string `validate:"required_if=Provider openai"`

	PaperCount        int `validate:"min=1"`
	QuestionsPerPaper int `validate:"min=1"`
	PaperTitle        string
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		Port:              getEnv("PORT", "5000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		Database:          getEnv("DATABASE_PATH", "./data/questions.db"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		OutputDir:         getEnv("OUTPUT_DIR", "./output"),
		Provider:          getEnv("LLM_PROVIDER", ProviderOllama),
		OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.1"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint:    getEnv("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		PaperCount:        getEnvInt("PAPER_COUNT", 10),
		QuestionsPerPaper: getEnvInt("QUESTIONS_PER_PAPER", 10),
		PaperTitle:        getEnv("PAPER_TITLE", "question paper"),
	}

	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir, filepath.Dir(cfg.Database)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to ensure dir %s: %v", dir, err)
		}
	}

	return cfg
}

// Validate checks the loaded values against their struct constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, val, err)
		return fallback
	}
	return n
}
