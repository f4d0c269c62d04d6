package graph

import (
	"context"

	"go.uber.org/zap"

	apperrors "faqgraph/backend/pkg/errors"
)

// ============================================================================
// Entity Operations
// ============================================================================

// SaveEntity upserts an entity by its identity keys: MERGE on the key
// properties, SET everything else. Re-applying the same identity always lands
// on the same node with the latest field values.
func (r *Repository) SaveEntity(ctx context.Context, entity Entity) (map[string]any, error) {
	query, params, err := entity.upsertQuery()
	if err != nil {
		return nil, err
	}

	records, err := r.exec.Execute(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewQueryFailed(query, nil)
	}

	r.logger.Debug("Entity upserted",
		zap.String("label", entity.Schema.Label),
	)
	return getNodePropsFromRecord(records[0], "n"), nil
}

// FindEntity looks an entity up by identity. Zero rows means not found;
// callers never have to disambiguate an empty node from a missing one.
func (r *Repository) FindEntity(ctx context.Context, entity Entity) (map[string]any, error) {
	query, params, err := entity.findQuery()
	if err != nil {
		return nil, err
	}

	records, err := r.exec.Execute(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(entity.Schema.Label)
	}

	return getNodePropsFromRecord(records[0], "n"), nil
}

// DeleteEntity detach-deletes an entity by identity and returns how many
// nodes were removed. Deleting an absent identity is not an error.
func (r *Repository) DeleteEntity(ctx context.Context, entity Entity) (int64, error) {
	query, params, err := entity.deleteQuery()
	if err != nil {
		return 0, err
	}

	records, err := r.exec.Execute(ctx, query, params)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	deleted := getInt64FromRecord(records[0], "deleted")
	r.logger.Debug("Entity deleted",
		zap.String("label", entity.Schema.Label),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
