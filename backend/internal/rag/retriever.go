package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"faqgraph/backend/internal/graph"
)

// ContextItem is one candidate piece of supporting context fetched by a
// retriever prior to answer generation
type ContextItem struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Retriever fetches candidate supporting context for a query
type Retriever interface {
	Retrieve(ctx context.Context, queryText string) ([]ContextItem, error)
}

// QueryEmbedder is the slice of the embedding capability the vector
// retriever needs
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator is the slice of the generation capability the retrievers and
// dispatcher need
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMsg string, history []graph.Message) (string, error)
}

// VectorRetriever embeds the query and searches the chunk vector index
type VectorRetriever struct {
	repo      *graph.Repository
	embedder  QueryEmbedder
	indexName string
	topK      int
}

// NewVectorRetriever creates a similarity-search retriever
func NewVectorRetriever(repo *graph.Repository, embedder QueryEmbedder, indexName string, topK int) *VectorRetriever {
	if topK < 1 {
		topK = 5
	}
	return &VectorRetriever{
		repo:      repo,
		embedder:  embedder,
		indexName: indexName,
		topK:      topK,
	}
}

// Retrieve returns the topK most similar chunks to the query
func (r *VectorRetriever) Retrieve(ctx context.Context, queryText string) ([]ContextItem, error) {
	vector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.repo.QueryVectorIndex(ctx, r.indexName, vector, r.topK)
	if err != nil {
		return nil, err
	}

	items := make([]ContextItem, 0, len(hits))
	for _, hit := range hits {
		items = append(items, ContextItem{
			Source:  hit.ChunkID,
			Content: hit.Text,
			Score:   hit.Score,
		})
	}
	return items, nil
}

// CypherRetriever translates the natural language question into a Cypher
// query against the live schema and runs it read-only
type CypherRetriever struct {
	repo *graph.Repository
	gen  Generator
}

// NewCypherRetriever creates a query-translation retriever
func NewCypherRetriever(repo *graph.Repository, gen Generator) *CypherRetriever {
	return &CypherRetriever{repo: repo, gen: gen}
}

// writeClausePattern rejects generated queries containing mutation clauses.
// The translation contract is read-only; anything else is discarded.
var writeClausePattern = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|LOAD\s+CSV)\b`)

// Retrieve generates and executes one Cypher query, mapping result rows to
// context items
func (r *CypherRetriever) Retrieve(ctx context.Context, queryText string) ([]ContextItem, error) {
	schema, err := r.repo.SchemaSummary(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(TextToCypherPrompt, schema, queryText)
	generated, err := r.gen.Generate(ctx, "", prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	cypher := sanitizeGeneratedCypher(generated)
	if cypher == "" {
		return nil, fmt.Errorf("model returned no usable query")
	}
	if writeClausePattern.MatchString(cypher) {
		return nil, fmt.Errorf("generated query contains write clauses")
	}

	records, err := r.repo.ExecuteRaw(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	items := make([]ContextItem, 0, len(records))
	for _, record := range records {
		parts := make([]string, 0, len(record.Keys))
		for i, key := range record.Keys {
			parts = append(parts, fmt.Sprintf("%s: %v", key, record.Values[i]))
		}
		items = append(items, ContextItem{
			Source:  "graph",
			Content: strings.Join(parts, ", "),
		})
	}
	return items, nil
}

// sanitizeGeneratedCypher strips code fences and surrounding noise the model
// was told not to emit but sometimes does anyway
func sanitizeGeneratedCypher(generated string) string {
	s := strings.TrimSpace(generated)
	s = strings.TrimPrefix(s, "```cypher")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
