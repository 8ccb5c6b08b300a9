package config

import (
	"log"
	"os"
	"strconv"

	"secure-docchat-be/pkg/safety"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	ContentSafety ContentSafetyConfig
	Ai            AIConfig
	Retrieval     RetrievalConfig
	Chat          ChatConfig
	Upload        UploadConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// ContentSafetyConfig holds the Azure Content Safety credentials and
// the per-category severity limits. Both credential values are required
// for the moderation gate; without them every question is refused
// (fail closed).
type ContentSafetyConfig struct {
	Endpoint string
	Key      string

	ThresholdHate     int
	ThresholdSexual   int
	ThresholdViolence int
	ThresholdSelfHarm int
}

// Thresholds assembles the per-category severity limits for the gate.
func (c ContentSafetyConfig) Thresholds() safety.Thresholds {
	return safety.Thresholds{
		"hate":      c.ThresholdHate,
		"sexual":    c.ThresholdSexual,
		"violence":  c.ThresholdViolence,
		"self_harm": c.ThresholdSelfHarm,
	}
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	LLMBaseURL        string
	JinaKey           string
	HuggingFaceKey    string
}

type RetrievalConfig struct {
	KRecall int
	KFinal  int
}

type ChatConfig struct {
	WindowSize     int
	ViolationLimit int
}

type UploadConfig struct {
	Dir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8501"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		ContentSafety: ContentSafetyConfig{
			Endpoint: getEnv("CONTENT_SAFETY_ENDPOINT", ""),
			Key:      getEnv("CONTENT_SAFETY_KEY", ""),

			ThresholdHate:     getEnvAsInt("SAFETY_THRESHOLD_HATE", 0),
			ThresholdSexual:   getEnvAsInt("SAFETY_THRESHOLD_SEXUAL", 2),
			ThresholdViolence: getEnvAsInt("SAFETY_THRESHOLD_VIOLENCE", 4),
			ThresholdSelfHarm: getEnvAsInt("SAFETY_THRESHOLD_SELF_HARM", 4),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			JinaKey:           getEnv("JINA_API_KEY", ""),
			HuggingFaceKey:    getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Retrieval: RetrievalConfig{
			KRecall: getEnvAsInt("RETRIEVAL_K_RECALL", 10),
			KFinal:  getEnvAsInt("RETRIEVAL_K_FINAL", 5),
		},
		Chat: ChatConfig{
			WindowSize:     getEnvAsInt("CHAT_WINDOW_SIZE", 3),
			ViolationLimit: getEnvAsInt("CHAT_VIOLATION_LIMIT", 3),
		},
		Upload: UploadConfig{
			Dir: getEnv("UPLOAD_DIR", "./uploads"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
