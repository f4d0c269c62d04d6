package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqgraph/backend/internal/graph"
	apperrors "faqgraph/backend/pkg/errors"
)

// storeCall records one query sent to the graph store
type storeCall struct {
	Query  string
	Params map[string]any
}

type fakeStore struct {
	calls   []storeCall
	failOn  string // substring of a query that should error
	respond func(query string, params map[string]any) ([]*neo4j.Record, error)
}

func (f *fakeStore) Execute(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	f.calls = append(f.calls, storeCall{Query: query, Params: params})
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errors.New("store rejected query")
	}
	if f.respond != nil {
		return f.respond(query, params)
	}
	return nil, nil
}

func (f *fakeStore) queriesContaining(fragment string) int {
	n := 0
	for _, call := range f.calls {
		if strings.Contains(call.Query, fragment) {
			n++
		}
	}
	return n
}

type fakeChunker struct {
	chunks []string
	err    error
}

func (f *fakeChunker) Split(text string) ([]string, error) {
	return f.chunks, f.err
}

type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dims)
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

type fakeExtractor struct {
	extraction *Extraction
	err        error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (*Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.extraction != nil {
		return f.extraction, nil
	}
	return &Extraction{}, nil
}

func newTestPipeline(store *fakeStore, chunker Chunker, embedder Embedder, extractor Extractor) *Pipeline {
	return NewPipeline(graph.NewRepository(store), chunker, embedder, extractor, "chunk_embeddings")
}

func TestPipelineRunComplete(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: []string{"first chunk", "second chunk"}},
		&fakeEmbedder{dims: 4},
		&fakeExtractor{extraction: &Extraction{
			Entities: []DerivedEntity{
				{Name: "ACME", Type: "ORGANIZATION", Description: "a vendor"},
			},
			Relationships: []DerivedRelationship{
				{Source: "ACME", Target: "BILLING", Description: "invoices through", Strength: 0.9},
			},
		}},
	)

	result, err := pipeline.Run(context.Background(), []byte("document body"), ContentTypeText, map[string]string{"subject": "billing"})
	require.NoError(t, err)

	assert.Equal(t, StageComplete, result.State)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, 2, result.Entities)      // one per chunk
	assert.Equal(t, 2, result.Relationships) // one per chunk

	assert.Equal(t, 1, store.queriesContaining("CREATE (d:Document"))
	assert.Equal(t, 2, store.queriesContaining("HAS_CHUNK"))
	assert.Equal(t, 2, store.queriesContaining("MENTIONS"))
	assert.Equal(t, 2, store.queriesContaining("RELATES_TO"))
	assert.Equal(t, 1, store.queriesContaining("CREATE VECTOR INDEX"))
}

func TestPipelineRunSkipsUnnamedExtractions(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: []string{"only chunk"}},
		&fakeEmbedder{dims: 4},
		&fakeExtractor{extraction: &Extraction{
			Entities: []DerivedEntity{
				{Name: "", Type: "PERSON"},
				{Name: "REAL", Type: "CONCEPT"},
			},
			Relationships: []DerivedRelationship{
				{Source: "", Target: "REAL"},
				{Source: "REAL", Target: ""},
			},
		}},
	)

	result, err := pipeline.Run(context.Background(), []byte("text"), ContentTypeText, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Entities)
	assert.Equal(t, 0, result.Relationships)
	assert.Equal(t, 1, store.queriesContaining("MENTIONS"))
	assert.Equal(t, 0, store.queriesContaining("RELATES_TO"))
}

func TestPipelineRunFailsOnUnsupportedContent(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: []string{"x"}},
		&fakeEmbedder{dims: 4},
		&fakeExtractor{},
	)

	result, err := pipeline.Run(context.Background(), []byte("data"), "application/octet-stream", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePipeline))

	assert.Equal(t, StageFailed, result.State)
	assert.Equal(t, StageReceived, result.FailedStage)
	assert.Empty(t, store.calls)
}

func TestPipelineRunFailsOnEmptyDocument(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: nil},
		&fakeEmbedder{dims: 4},
		&fakeExtractor{},
	)

	result, err := pipeline.Run(context.Background(), []byte(""), ContentTypeText, nil)
	require.Error(t, err)
	assert.Equal(t, StageFailed, result.State)
	assert.Equal(t, StageSplit, result.FailedStage)
}

func TestPipelineRunRecordsEmbeddingFailure(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: []string{"chunk"}},
		&fakeEmbedder{dims: 4, err: errors.New("embedding backend down")},
		&fakeExtractor{},
	)

	result, err := pipeline.Run(context.Background(), []byte("text"), ContentTypeText, nil)
	require.Error(t, err)
	assert.Equal(t, StageFailed, result.State)
	assert.Equal(t, StageEmbedded, result.FailedStage)
	// Nothing may reach the store before the embeddings are confirmed
	assert.Empty(t, store.calls)
}

func TestPipelineRunRecordsGraphFailure(t *testing.T) {
	store := &fakeStore{failOn: "MENTIONS"}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: []string{"chunk"}},
		&fakeEmbedder{dims: 4},
		&fakeExtractor{extraction: &Extraction{
			Entities: []DerivedEntity{{Name: "ACME", Type: "ORGANIZATION"}},
		}},
	)

	result, err := pipeline.Run(context.Background(), []byte("text"), ContentTypeText, nil)
	require.Error(t, err)
	assert.Equal(t, StageFailed, result.State)
	assert.Equal(t, StageGraphBuilt, result.FailedStage)
	assert.Equal(t, 0, store.queriesContaining("CREATE VECTOR INDEX"))
}

func TestPipelineRunRecordsIndexFailure(t *testing.T) {
	store := &fakeStore{failOn: "CREATE VECTOR INDEX"}
	pipeline := newTestPipeline(store,
		&fakeChunker{chunks: []string{"chunk"}},
		&fakeEmbedder{dims: 4},
		&fakeExtractor{},
	)

	result, err := pipeline.Run(context.Background(), []byte("text"), ContentTypeText, nil)
	require.Error(t, err)
	assert.Equal(t, StageFailed, result.State)
	assert.Equal(t, StageIndexed, result.FailedStage)
}

func TestPipelineDeleteByMetadata(t *testing.T) {
	store := &fakeStore{
		respond: func(query string, params map[string]any) ([]*neo4j.Record, error) {
			return []*neo4j.Record{{Keys: []string{"deleted"}, Values: []any{int64(3)}}}, nil
		},
	}
	pipeline := newTestPipeline(store, &fakeChunker{}, &fakeEmbedder{dims: 4}, &fakeExtractor{})

	deleted, err := pipeline.DeleteByMetadata(context.Background(), map[string]string{"subject": "billing"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
