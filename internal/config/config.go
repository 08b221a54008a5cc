package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	NotesRoot          string
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	ChunkCharLimit     int
	RetrieveLimit      int
	ContentThreshold   float32
	FilenameThreshold  float32
	RipgrepPath        string
	SearchMaxResults   int
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for go.mod
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		NotesRoot:          getEnv("NOTES_ROOT", ""),
		DBPath:             getEnv("DB_PATH", "./data/notechat.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "notes"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		// nomic-embed-text is trained asymmetrically: inputs must carry the
		// "search_query: " / "search_document: " instruction prefixes that the
		// llm package applies.
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "nomic-embed-text-v1.5"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		RipgrepPath:        getEnv("RIPGREP_PATH", "rg"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// Parse QDRANT_VECTOR_SIZE
	// This must match the output vector size of the embeddings model exactly,
	// or similarity queries against stored vectors are meaningless. If the
	// vector size changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	cfg.ChunkCharLimit, err = getEnvInt("CHUNK_CHAR_LIMIT", 4000)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkCharLimit <= 0 {
		return nil, fmt.Errorf("CHUNK_CHAR_LIMIT must be greater than 0")
	}

	cfg.RetrieveLimit, err = getEnvInt("RETRIEVE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	cfg.SearchMaxResults, err = getEnvInt("SEARCH_MAX_RESULTS", 50)
	if err != nil {
		return nil, err
	}

	// Filename matching needs a higher bar than content matching: filenames
	// are short and noisy, so near-threshold filename similarities are mostly
	// coincidence.
	cfg.ContentThreshold, err = getEnvFloat("CONTENT_SIMILARITY_THRESHOLD", 0.35)
	if err != nil {
		return nil, err
	}
	cfg.FilenameThreshold, err = getEnvFloat("FILENAME_SIMILARITY_THRESHOLD", 0.55)
	if err != nil {
		return nil, err
	}

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Validate required fields
	if cfg.NotesRoot == "" {
		return nil, fmt.Errorf("NOTES_ROOT is required")
	}

	// Create ./data directory if it doesn't exist (for future DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

// getEnvFloat gets a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float32) (float32, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return float32(parsed), nil
}
