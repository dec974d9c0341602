package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Vector    VectorConfig
	RAG       RAGConfig
	Cache     CacheConfig
	History   HistoryConfig
	Ingest    IngestConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type UploadConfig struct {
	Password          string
	MaxFileSize       int64
	AllowedExtensions []string
	TempDir           string
}

type EmbeddingConfig struct {
	Provider   string // "openai" or "ollama"
	Model      string
	Dimensions int
}

type LLMConfig struct {
	Provider     string // "openai", "anthropic" or "ollama"
	Model        string
	Temperature  float64
	MaxTokens    int
	OpenAIKey    string
	AnthropicKey string
	OllamaURL    string
}

type VectorConfig struct {
	Collection string
}

type RAGConfig struct {
	TopK          int
	MinScore      float64
	ContextWindow int
}

type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

type HistoryConfig struct {
	MaxLength int
	PageSize  int
}

type IngestConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
	Workers        int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateRPS, err := getEnvFloat("RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	maxFileSize, err := getEnvInt64("MAX_FILE_SIZE", 250*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE: %w", err)
	}

	dimensions, err := getEnvInt("EMBEDDING_DIMENSIONS", 1536)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_DIMENSIONS: %w", err)
	}

	topK, err := getEnvInt("RAG_TOP_K", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_TOP_K: %w", err)
	}

	minScore, err := getEnvFloat("RAG_MIN_SCORE", 0.5)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_MIN_SCORE: %w", err)
	}

	contextWindow, err := getEnvInt("RAG_CONTEXT_WINDOW", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_CONTEXT_WINDOW: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 2000)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	cacheSize, err := getEnvInt("CACHE_MAX_SIZE", 10000)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAX_SIZE: %w", err)
	}

	cacheTTL, err := getEnvDuration("CACHE_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	historyLen, err := getEnvInt("MAX_HISTORY_LENGTH", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_HISTORY_LENGTH: %w", err)
	}

	pageSize, err := getEnvInt("HISTORY_PAGE_SIZE", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_PAGE_SIZE: %w", err)
	}

	chunkSize, err := getEnvInt("CHUNK_SIZE", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_SIZE: %w", err)
	}

	chunkOverlap, err := getEnvInt("CHUNK_OVERLAP", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_OVERLAP: %w", err)
	}

	embedBatch, err := getEnvInt("EMBED_BATCH_SIZE", 16)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBED_BATCH_SIZE: %w", err)
	}

	workers, err := getEnvInt("INGEST_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_WORKERS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Upload: UploadConfig{
			Password:          getEnv("UPLOAD_PASSWORD", ""),
			MaxFileSize:       maxFileSize,
			AllowedExtensions: splitList(getEnv("ALLOWED_EXTENSIONS", ".pdf,.txt")),
			TempDir:           getEnv("UPLOAD_TEMP_DIR", ""),
		},
		Embedding: EmbeddingConfig{
			Provider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions: dimensions,
		},
		LLM: LLMConfig{
			Provider:     getEnv("LLM_PROVIDER", "openai"),
			Model:        getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature:  temperature,
			MaxTokens:    maxTokens,
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
		},
		Vector: VectorConfig{
			Collection: getEnv("VECTOR_COLLECTION", "rag_documents"),
		},
		RAG: RAGConfig{
			TopK:          topK,
			MinScore:      minScore,
			ContextWindow: contextWindow,
		},
		Cache: CacheConfig{
			MaxSize: cacheSize,
			TTL:     cacheTTL,
		},
		History: HistoryConfig{
			MaxLength: historyLen,
			PageSize:  pageSize,
		},
		Ingest: IngestConfig{
			ChunkSize:      chunkSize,
			ChunkOverlap:   chunkOverlap,
			EmbedBatchSize: embedBatch,
			Workers:        workers,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Upload.Password == "" {
		missing = append(missing, "UPLOAD_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
