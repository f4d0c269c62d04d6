package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"faqgraph/backend/pkg/logger"
)

// Repository handles all Neo4j database operations. It holds no state of its
// own beyond the shared executor; conversation and knowledge-graph data live
// in the store, never in process memory.
type Repository struct {
	exec   Executor
	logger *zap.Logger
}

// NewRepository creates a new graph repository on top of a shared executor
func NewRepository(exec Executor) *Repository {
	return &Repository{
		exec:   exec,
		logger: logger.Named("graph"),
	}
}

// ExecuteRaw runs a caller-assembled read query. Used by the
// query-translation retriever, which produces whole statements rather than
// identity-derived templates.
func (r *Repository) ExecuteRaw(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	return r.exec.Execute(ctx, query, params)
}
