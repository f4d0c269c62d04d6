package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// AI
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	ChatModel      string
	EmbeddingModel string
	EmbeddingDim   int

	// Ingestion
	VectorIndexName string
	ChunkSize       int
	ChunkOverlap    int

	// Conversation
	HistoryWindow int

	// Auth
	JWTSecret          string
	TokenExpiryMinutes int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:      getEnv("NEO4J_DATABASE", "neo4j"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		ChatModel:          getEnv("CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:       getEnvInt("EMBEDDING_DIM", 1536),
		VectorIndexName:    getEnv("VECTOR_INDEX_NAME", "chunk_embeddings"),
		ChunkSize:          getEnvInt("CHUNK_SIZE", 250),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 10),
		HistoryWindow:      getEnvInt("HISTORY_WINDOW", 3),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenExpiryMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	// OpenAI key may be empty when a self-hosted gateway is configured
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
