package chat

import (
	"context"

	"go.uber.org/zap"

	"faqgraph/backend/internal/graph"
	"faqgraph/backend/internal/rag"
	"faqgraph/backend/pkg/logger"
)

// HistoryStore is the session-scoped slice of the graph repository the
// orchestrator depends on
type HistoryStore interface {
	ResolveOrCreateSession(ctx context.Context, owner graph.Entity, sessionID string) (string, error)
	LoadHistory(ctx context.Context, sessionID string, window int) ([]graph.Message, error)
	LinkSession(ctx context.Context, owner graph.Entity, sessionID string) error
	AppendMessages(ctx context.Context, sessionID string, messages []graph.Message) error
}

// Generator is the direct (non-RAG) generation capability
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMsg string, history []graph.Message) (string, error)
}

// Dispatcher is the retrieval-augmented generation path
type Dispatcher interface {
	RetrieveAndGenerate(ctx context.Context, queryText string, history []graph.Message, template string) (string, []rag.ContextItem, error)
}

// Options selects how one turn is answered
type Options struct {
	UseRAG       bool
	Template     string
	SystemPrompt string
}

// Reply is the outcome of one conversational turn
type Reply struct {
	Answer    string            `json:"answer"`
	SessionID string            `json:"session_id"`
	Context   []rag.ContextItem `json:"context,omitempty"`
}

// Orchestrator coordinates one conversational turn: session resolution,
// history, generation and persistence. It owns the lifetime of the request
// but never graph data; all state lives in the store.
type Orchestrator struct {
	store      HistoryStore
	gen        Generator
	dispatcher Dispatcher
	window     int
	logger     *zap.Logger
}

// NewOrchestrator wires the conversation coordinator
func NewOrchestrator(store HistoryStore, gen Generator, dispatcher Dispatcher, window int) *Orchestrator {
	if window < 1 {
		window = 3
	}
	return &Orchestrator{
		store:      store,
		gen:        gen,
		dispatcher: dispatcher,
		window:     window,
		logger:     logger.Named("chat"),
	}
}

// Respond executes the per-turn protocol. A supplied session id that fails
// the ownership check silently resolves to a fresh session; both sides of
// the exchange are always appended to history before returning.
func (o *Orchestrator) Respond(ctx context.Context, owner graph.Entity, sessionID, text string, opts Options) (*Reply, error) {
	effectiveID, err := o.store.ResolveOrCreateSession(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := o.store.LoadHistory(ctx, effectiveID, o.window)
	if err != nil {
		return nil, err
	}

	if err := o.store.LinkSession(ctx, owner, effectiveID); err != nil {
		return nil, err
	}

	reply := &Reply{SessionID: effectiveID}
	if opts.UseRAG {
		answer, items, err := o.dispatcher.RetrieveAndGenerate(ctx, text, history, opts.Template)
		if err != nil {
			return nil, err
		}
		reply.Answer = answer
		reply.Context = items
	} else {
		systemPrompt := opts.SystemPrompt
		if systemPrompt == "" {
			systemPrompt = rag.DefaultSystemInstructions
		}
		answer, err := o.gen.Generate(ctx, systemPrompt, text, history)
		if err != nil {
			return nil, err
		}
		reply.Answer = answer
	}

	err = o.store.AppendMessages(ctx, effectiveID, []graph.Message{
		{Role: graph.RoleUser, Content: text},
		{Role: graph.RoleAssistant, Content: reply.Answer},
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug("Turn completed",
		zap.String("session_id", effectiveID),
		zap.Bool("rag", opts.UseRAG),
		zap.Int("history_len", len(history)),
	)
	return reply, nil
}
