package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "faqgraph/backend/pkg/errors"
)

// ============================================================================
// Vector Index Operations
// ============================================================================

// EnsureVectorIndex creates the chunk embedding index if it does not exist.
// Index DDL cannot be parameterized, so name, label and property are
// validated as structural identifiers and the dimensionality is rendered from
// its integer value. The similarity function is fixed to cosine.
func (r *Repository) EnsureVectorIndex(ctx context.Context, name, label, property string, dimensions int) error {
	for _, ident := range []string{name, label, property} {
		if !identifierPattern.MatchString(ident) {
			return apperrors.NewSchemaBadIdentifier(ident)
		}
	}
	if dimensions <= 0 {
		return apperrors.NewSchemaBadIdentifier(fmt.Sprintf("dimensions=%d", dimensions))
	}

	query := fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (n:%s) ON (n.%s)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}
	`, name, label, property, dimensions)

	if _, err := r.exec.Execute(ctx, query, nil); err != nil {
		return err
	}

	r.logger.Debug("Vector index ensured",
		zap.String("index", name),
		zap.Int("dimensions", dimensions),
	)
	return nil
}

// QueryVectorIndex returns the topK nearest chunks to the query vector
func (r *Repository) QueryVectorIndex(ctx context.Context, name string, vector []float32, topK int) ([]VectorHit, error) {
	if topK < 1 {
		topK = 5
	}

	query := `
		CALL db.index.vector.queryNodes($index, $k, $embedding)
		YIELD node, score
		RETURN node.id AS chunk_id, node.text AS text, score
	`

	records, err := r.exec.Execute(ctx, query, map[string]any{
		"index":     name,
		"k":         topK,
		"embedding": toFloat64Slice(vector),
	})
	if err != nil {
		return nil, err
	}

	var hits []VectorHit
	for _, record := range records {
		hits = append(hits, VectorHit{
			ChunkID: getStringFromRecord(record, "chunk_id"),
			Text:    getStringFromRecord(record, "text"),
			Score:   getFloat64FromRecord(record, "score"),
		})
	}
	return hits, nil
}

// SchemaSummary renders a compact description of the live graph schema for
// the query-translation retriever prompt
func (r *Repository) SchemaSummary(ctx context.Context) (string, error) {
	labels, err := r.collectStrings(ctx, "CALL db.labels() YIELD label RETURN label AS value", "value")
	if err != nil {
		return "", err
	}
	relTypes, err := r.collectStrings(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType AS value", "value")
	if err != nil {
		return "", err
	}
	propKeys, err := r.collectStrings(ctx, "CALL db.propertyKeys() YIELD propertyKey RETURN propertyKey AS value", "value")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Node labels: %s\n", strings.Join(labels, ", "))
	fmt.Fprintf(&b, "Relationship types: %s\n", strings.Join(relTypes, ", "))
	fmt.Fprintf(&b, "Property keys: %s\n", strings.Join(propKeys, ", "))
	return b.String(), nil
}

func (r *Repository) collectStrings(ctx context.Context, query, key string) ([]string, error) {
	records, err := r.exec.Execute(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(records))
	for _, record := range records {
		values = append(values, getStringFromRecord(record, key))
	}
	return values, nil
}
