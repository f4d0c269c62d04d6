package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// Document / Knowledge Graph Operations
// ============================================================================
//
// Ingestion artifacts:
//
//	(:Document {id, ...metadata})-[:HAS_CHUNK]->(:Chunk {id, text, index, embedding})
//	(:Chunk)-[:MENTIONS]->(:Entity {name, type, description})
//	(:Entity)-[:RELATES_TO {description, strength}]->(:Entity)

// CreateDocument creates a Document node carrying the caller-supplied
// metadata verbatim. The metadata is the sole predicate available for later
// bulk deletion.
func (r *Repository) CreateDocument(ctx context.Context, documentID string, metadata map[string]string) error {
	props := make(map[string]any, len(metadata))
	for k, v := range metadata {
		props[k] = v
	}

	query := `
		CREATE (d:Document {id: $id, created_at: datetime($now)})
		SET d += $metadata
	`

	_, err := r.exec.Execute(ctx, query, map[string]any{
		"id":       documentID,
		"now":      time.Now().UTC().Format(time.RFC3339),
		"metadata": props,
	})
	return err
}

// CreateChunk attaches one embedded chunk to its document
func (r *Repository) CreateChunk(ctx context.Context, documentID, chunkID, text string, index int, embedding []float32) error {
	query := `
		MATCH (d:Document {id: $document_id})
		CREATE (c:Chunk {
			id: $id,
			text: $text,
			index: $index,
			embedding: $embedding
		})
		CREATE (d)-[:HAS_CHUNK]->(c)
	`

	_, err := r.exec.Execute(ctx, query, map[string]any{
		"document_id": documentID,
		"id":          chunkID,
		"text":        text,
		"index":       index,
		"embedding":   toFloat64Slice(embedding),
	})
	return err
}

// MergeEntityMention upserts a derived entity by name and links the chunk
// that mentions it
func (r *Repository) MergeEntityMention(ctx context.Context, chunkID, name, entityType, description string) error {
	query := `
		MATCH (c:Chunk {id: $chunk_id})
		MERGE (e:Entity {name: $name})
		SET e.type = $type, e.description = $description
		MERGE (c)-[:MENTIONS]->(e)
	`

	_, err := r.exec.Execute(ctx, query, map[string]any{
		"chunk_id":    chunkID,
		"name":        name,
		"type":        entityType,
		"description": description,
	})
	return err
}

// MergeEntityRelationship upserts a derived relationship between two named
// entities. Missing endpoints make the merge a no-op.
func (r *Repository) MergeEntityRelationship(ctx context.Context, source, target, description string, strength float64) error {
	query := `
		MATCH (src:Entity {name: $source})
		MATCH (dst:Entity {name: $target})
		MERGE (src)-[rel:RELATES_TO]->(dst)
		SET rel.description = $description, rel.strength = $strength
	`

	_, err := r.exec.Execute(ctx, query, map[string]any{
		"source":      source,
		"target":      target,
		"description": description,
		"strength":    strength,
	})
	return err
}

// DeleteDocumentsByMetadata detach-deletes every Document whose properties
// equal all given key/value pairs, cascading across its chunks and the
// entities those chunks mention. The predicate keys address properties
// dynamically through the parameter map, so no untrusted text enters the
// query. Returns the number of documents removed.
func (r *Repository) DeleteDocumentsByMetadata(ctx context.Context, predicate map[string]string) (int64, error) {
	if len(predicate) == 0 {
		return 0, fmt.Errorf("empty metadata predicate")
	}

	pred := make(map[string]any, len(predicate))
	for k, v := range predicate {
		pred[k] = v
	}

	query := `
		MATCH (d:Document)
		WHERE all(k IN keys($pred) WHERE d[k] = $pred[k])
		OPTIONAL MATCH (d)-[:HAS_CHUNK]->(c:Chunk)
		OPTIONAL MATCH (c)-[:MENTIONS]->(e:Entity)
		DETACH DELETE e, c, d
		RETURN count(DISTINCT d) AS deleted
	`

	records, err := r.exec.Execute(ctx, query, map[string]any{"pred": pred})
	if err != nil {
		return 0, err
	}

	var deleted int64
	if len(records) > 0 {
		deleted = getInt64FromRecord(records[0], "deleted")
	}

	r.logger.Info("Documents deleted by metadata",
		zap.Int64("deleted", deleted),
		zap.Any("predicate", predicate),
	)
	return deleted, nil
}
