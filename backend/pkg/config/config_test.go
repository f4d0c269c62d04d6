package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Ambient environment (or a local .env) must not leak into this test
	for _, key := range []string{
		"PORT", "NEO4J_URI", "NEO4J_DATABASE", "EMBEDDING_DIM",
		"VECTOR_INDEX_NAME", "CHUNK_SIZE", "CHUNK_OVERLAP",
		"HISTORY_WINDOW", "ACCESS_TOKEN_EXPIRE_MINUTES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "neo4j", cfg.Neo4jDatabase)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
	assert.Equal(t, "chunk_embeddings", cfg.VectorIndexName)
	assert.Equal(t, 250, cfg.ChunkSize)
	assert.Equal(t, 10, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.HistoryWindow)
	assert.Equal(t, 15, cfg.TokenExpiryMinutes)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NEO4J_URI", "neo4j://db.internal:7687")
	t.Setenv("EMBEDDING_DIM", "768")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("HISTORY_WINDOW", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "neo4j://db.internal:7687", cfg.Neo4jURI)
	assert.Equal(t, 768, cfg.EmbeddingDim)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 8, cfg.HistoryWindow)
}

func TestLoadIgnoresUnparsableInt(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Neo4jURI:      "bolt://localhost:7687",
			Neo4jUser:     "neo4j",
			Neo4jPassword: "password",
			EmbeddingDim:  1536,
			ChunkSize:     250,
			ChunkOverlap:  10,
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Neo4jURI = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Neo4jPassword = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.EmbeddingDim = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.ChunkOverlap = 250
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.ChunkOverlap = -1
	assert.Error(t, cfg.Validate())
}

func TestEnvironmentPredicates(t *testing.T) {
	assert.True(t, (&Config{Env: "development"}).IsDevelopment())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
	assert.True(t, (&Config{Env: "production"}).IsProduction())
}
