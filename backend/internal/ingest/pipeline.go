package ingest

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"faqgraph/backend/internal/graph"
	apperrors "faqgraph/backend/pkg/errors"
	"faqgraph/backend/pkg/logger"
)

// Stage is one step of the ingestion state machine. Progression is linear on
// success; any failure is terminal for the run with the triggering stage
// recorded.
type Stage string

const (
	StageReceived   Stage = "received"
	StageSplit      Stage = "split"
	StageEmbedded   Stage = "embedded"
	StageGraphBuilt Stage = "graph_built"
	StageIndexed    Stage = "indexed"
	StageComplete   Stage = "complete"
	StageFailed     Stage = "failed"
)

// embedBatchSize bounds how many chunks go into one embedding request
const embedBatchSize = 16

// embedConcurrency bounds how many embedding requests run in parallel
const embedConcurrency = 4

// Embedder is the embedding capability consumed by the pipeline
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Result summarizes one completed or failed ingestion run
type Result struct {
	DocumentID    string `json:"document_id"`
	Chunks        int    `json:"chunks"`
	Entities      int    `json:"entities"`
	Relationships int    `json:"relationships"`
	State         Stage  `json:"state"`
	FailedStage   Stage  `json:"failed_stage,omitempty"`
}

// Pipeline turns a raw document into graph nodes, relationships and indexed
// embeddings. One Run is a single sequential unit of work to the caller;
// embedding of independent chunks is parallelized internally, but the graph
// and index stages are serialized after all embeddings are confirmed.
//
// No rollback happens on failure: a failed run may leave a partial document
// graph behind, compensated explicitly via DeleteByMetadata.
type Pipeline struct {
	repo      *graph.Repository
	chunker   Chunker
	embedder  Embedder
	extractor Extractor
	indexName string
	logger    *zap.Logger
}

// NewPipeline wires the ingestion capabilities together
func NewPipeline(repo *graph.Repository, chunker Chunker, embedder Embedder, extractor Extractor, indexName string) *Pipeline {
	return &Pipeline{
		repo:      repo,
		chunker:   chunker,
		embedder:  embedder,
		extractor: extractor,
		indexName: indexName,
		logger:    logger.Named("ingest"),
	}
}

// Run executes the full state machine for one document
func (p *Pipeline) Run(ctx context.Context, content []byte, contentType string, metadata map[string]string) (*Result, error) {
	documentID, err := gonanoid.New()
	if err != nil {
		return p.fail(StageReceived, "", err)
	}

	result := &Result{DocumentID: documentID}

	// Received
	text, err := ExtractText(content, contentType)
	if err != nil {
		return p.fail(StageReceived, documentID, err)
	}

	// Split
	chunks, err := p.chunker.Split(text)
	if err != nil {
		return p.fail(StageSplit, documentID, err)
	}
	if len(chunks) == 0 {
		return p.fail(StageSplit, documentID, errEmptyDocument)
	}
	result.Chunks = len(chunks)

	// Embedded
	embeddings, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return p.fail(StageEmbedded, documentID, err)
	}

	// GraphBuilt
	entities, relationships, err := p.buildGraph(ctx, documentID, metadata, chunks, embeddings)
	if err != nil {
		return p.fail(StageGraphBuilt, documentID, err)
	}
	result.Entities = entities
	result.Relationships = relationships

	// Indexed
	if err := p.repo.EnsureVectorIndex(ctx, p.indexName, "Chunk", "embedding", p.embedder.Dimensions()); err != nil {
		return p.fail(StageIndexed, documentID, err)
	}

	result.State = StageComplete
	p.logger.Info("Ingestion complete",
		zap.String("document_id", documentID),
		zap.Int("chunks", result.Chunks),
		zap.Int("entities", result.Entities),
		zap.Int("relationships", result.Relationships),
	)
	return result, nil
}

// DeleteByMetadata is the explicit compensator for failed or unwanted
// ingestions: it removes every document matching the predicate along with
// its derived chunks and entities
func (p *Pipeline) DeleteByMetadata(ctx context.Context, predicate map[string]string) (int64, error) {
	return p.repo.DeleteDocumentsByMetadata(ctx, predicate)
}

// embedChunks fans batches of chunks out to the embedder and reassembles the
// vectors in chunk order
func (p *Pipeline) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		start, end := start, end
		g.Go(func() error {
			vectors, err := p.embedder.EmbedAll(gctx, chunks[start:end])
			if err != nil {
				return err
			}
			copy(embeddings[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// buildGraph writes the document, its chunks and the extracted entities and
// relationships, sequentially
func (p *Pipeline) buildGraph(ctx context.Context, documentID string, metadata map[string]string, chunks []string, embeddings [][]float32) (int, int, error) {
	if err := p.repo.CreateDocument(ctx, documentID, metadata); err != nil {
		return 0, 0, err
	}

	var entities, relationships int
	for i, chunk := range chunks {
		chunkID, err := gonanoid.New()
		if err != nil {
			return entities, relationships, err
		}
		if err := p.repo.CreateChunk(ctx, documentID, chunkID, chunk, i, embeddings[i]); err != nil {
			return entities, relationships, err
		}

		extraction, err := p.extractor.Extract(ctx, chunk)
		if err != nil {
			return entities, relationships, err
		}

		for _, entity := range extraction.Entities {
			if entity.Name == "" {
				continue
			}
			if err := p.repo.MergeEntityMention(ctx, chunkID, entity.Name, entity.Type, entity.Description); err != nil {
				return entities, relationships, err
			}
			entities++
		}
		for _, rel := range extraction.Relationships {
			if rel.Source == "" || rel.Target == "" {
				continue
			}
			if err := p.repo.MergeEntityRelationship(ctx, rel.Source, rel.Target, rel.Description, rel.Strength); err != nil {
				return entities, relationships, err
			}
			relationships++
		}
	}
	return entities, relationships, nil
}

// fail records the triggering stage and wraps the cause
func (p *Pipeline) fail(stage Stage, documentID string, err error) (*Result, error) {
	p.logger.Error("Ingestion failed",
		zap.String("stage", string(stage)),
		zap.String("document_id", documentID),
		zap.Error(err),
	)
	return &Result{
		DocumentID:  documentID,
		State:       StageFailed,
		FailedStage: stage,
	}, apperrors.NewPipelineStage(string(stage), documentID, err)
}

var errEmptyDocument = apperrors.NewBaseError(apperrors.ErrorTypePipeline, "document produced no chunks", nil)
