package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "faqgraph/backend/pkg/errors"
)

func TestSaveEntity_ReturnsNodeProps(t *testing.T) {
	exec := &fakeExecutor{
		respond: func(query string, params map[string]any) ([]*neo4j.Record, error) {
			return []*neo4j.Record{nodeRecord("n", map[string]any{
				"email":    "a@b.c",
				"username": "alice",
			})}, nil
		},
	}
	repo := NewRepository(exec)

	entity := NewEntity(UserSchema, map[string]any{"email": "a@b.c", "username": "alice"})
	props, err := repo.SaveEntity(context.Background(), entity)
	require.NoError(t, err)

	assert.Equal(t, "alice", props["username"])
	require.Len(t, exec.calls, 1)
	assert.Contains(t, exec.calls[0].Query, "MERGE (n:User {email: $email})")
	assert.Equal(t, "a@b.c", exec.calls[0].Params["email"])
}

func TestSaveEntity_ValuesNeverInQueryText(t *testing.T) {
	exec := &fakeExecutor{
		respond: func(query string, params map[string]any) ([]*neo4j.Record, error) {
			return []*neo4j.Record{nodeRecord("n", nil)}, nil
		},
	}
	repo := NewRepository(exec)

	malicious := `x"}) DETACH DELETE (m) //`
	entity := NewEntity(UserSchema, map[string]any{"email": malicious})
	_, err := repo.SaveEntity(context.Background(), entity)
	require.NoError(t, err)

	require.Len(t, exec.calls, 1)
	assert.False(t, strings.Contains(exec.calls[0].Query, malicious),
		"property values must be bound as parameters, not interpolated")
	assert.Equal(t, malicious, exec.calls[0].Params["email"])
}

func TestFindEntity_NotFound(t *testing.T) {
	repo := NewRepository(&fakeExecutor{})

	entity := NewEntity(UserSchema, map[string]any{"email": "missing@b.c"})
	_, err := repo.FindEntity(context.Background(), entity)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteEntity_ReportsCount(t *testing.T) {
	exec := &fakeExecutor{
		respond: func(query string, params map[string]any) ([]*neo4j.Record, error) {
			return []*neo4j.Record{record("deleted", int64(1))}, nil
		},
	}
	repo := NewRepository(exec)

	deleted, err := repo.DeleteEntity(context.Background(), NewEntity(UserSchema, map[string]any{"email": "a@b.c"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestDeleteEntity_AbsentIsNotAnError(t *testing.T) {
	exec := &fakeExecutor{
		respond: func(query string, params map[string]any) ([]*neo4j.Record, error) {
			return []*neo4j.Record{record("deleted", int64(0))}, nil
		},
	}
	repo := NewRepository(exec)

	deleted, err := repo.DeleteEntity(context.Background(), NewEntity(UserSchema, map[string]any{"email": "a@b.c"}))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
