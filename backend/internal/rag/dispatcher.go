package rag

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"faqgraph/backend/internal/graph"
	"faqgraph/backend/pkg/logger"
)

// StrategyKind selects the active retrieval strategy
type StrategyKind string

const (
	// StrategyVector is embedding similarity search over the chunk index
	StrategyVector StrategyKind = "vector"
	// StrategyText2Cypher is natural-language-to-query translation
	StrategyText2Cypher StrategyKind = "text2cypher"
)

// Dispatcher wraps exactly one active retriever behind a stable interface.
// The strategy is swapped by replacing a single pointer, so concurrent
// retrieval calls either see the old retriever or the new one, never a torn
// configuration. When no strategy was configured, the first retrieval
// initializes the vector retriever on demand.
type Dispatcher struct {
	active atomic.Pointer[Retriever]

	repo      *graph.Repository
	embedder  QueryEmbedder
	gen       Generator
	indexName string
	topK      int
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with no strategy configured yet
func NewDispatcher(repo *graph.Repository, embedder QueryEmbedder, gen Generator, indexName string, topK int) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		embedder:  embedder,
		gen:       gen,
		indexName: indexName,
		topK:      topK,
		logger:    logger.Named("rag"),
	}
}

// SetStrategy (re)configures the active retriever. Safe at any time; only
// subsequent retrieval calls observe the new strategy.
func (d *Dispatcher) SetStrategy(kind StrategyKind) error {
	var retriever Retriever
	switch kind {
	case StrategyVector:
		retriever = NewVectorRetriever(d.repo, d.embedder, d.indexName, d.topK)
	case StrategyText2Cypher:
		retriever = NewCypherRetriever(d.repo, d.gen)
	default:
		return fmt.Errorf("unknown retrieval strategy: %s", kind)
	}

	d.active.Store(&retriever)
	d.logger.Info("Retrieval strategy configured",
		zap.String("strategy", string(kind)),
	)
	return nil
}

// retriever returns the active retriever, lazily installing the vector
// default when none was configured
func (d *Dispatcher) retriever() Retriever {
	if active := d.active.Load(); active != nil {
		return *active
	}

	var fallback Retriever = NewVectorRetriever(d.repo, d.embedder, d.indexName, d.topK)
	if d.active.CompareAndSwap(nil, &fallback) {
		d.logger.Debug("No retrieval strategy configured, defaulting to vector similarity")
	}
	return *d.active.Load()
}

// RetrieveAndGenerate fetches candidate context with the active retriever
// and asks the generation capability for the final answer. Empty retrieval
// does not short-circuit; the model is expected to answer gracefully from
// insufficient context.
func (d *Dispatcher) RetrieveAndGenerate(ctx context.Context, queryText string, history []graph.Message, template string) (string, []ContextItem, error) {
	items, err := d.retriever().Retrieve(ctx, queryText)
	if err != nil {
		return "", nil, err
	}

	if template == "" {
		template = AnswerTemplate
	}

	contextText := renderContext(items)
	prompt := fmt.Sprintf(template, contextText, queryText)

	answer, err := d.gen.Generate(ctx, DefaultSystemInstructions, prompt, history)
	if err != nil {
		return "", nil, err
	}
	return answer, items, nil
}

func renderContext(items []ContextItem) string {
	if len(items) == 0 {
		return "(no supporting context found)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item.Content)
		b.WriteString("\n")
	}
	return b.String()
}
