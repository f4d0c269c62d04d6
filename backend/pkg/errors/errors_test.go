package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseErrorMessage(t *testing.T) {
	err := NewBaseError(ErrorTypeQuery, "query failed", nil)
	assert.Equal(t, "[query] query failed", err.Error())

	wrapped := NewBaseError(ErrorTypeQuery, "query failed", errors.New("socket closed"))
	assert.Equal(t, "[query] query failed: socket closed", wrapped.Error())
}

func TestBaseErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewBaseError(ErrorTypeConnection, "cannot connect", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestIsErrorTypeOnTypedErrors(t *testing.T) {
	assert.True(t, IsErrorType(NewNotFound("User"), ErrorTypeNotFound))
	assert.True(t, IsErrorType(NewSchemaNoKeys("User"), ErrorTypeSchema))
	assert.True(t, IsErrorType(NewSchemaMissingKey("User", "email"), ErrorTypeSchema))
	assert.True(t, IsErrorType(NewSchemaBadIdentifier("bad name"), ErrorTypeSchema))
	assert.True(t, IsErrorType(NewSessionNotFound("s1"), ErrorTypeOwnership))
	assert.True(t, IsErrorType(NewConnectionFailed("bolt://x", nil), ErrorTypeConnection))
	assert.True(t, IsErrorType(NewQueryFailed("MATCH", nil), ErrorTypeQuery))
	assert.True(t, IsErrorType(NewConstraintViolated("User", nil), ErrorTypeConstraint))
	assert.True(t, IsErrorType(NewPipelineStage("split", "d1", nil), ErrorTypePipeline))
	assert.True(t, IsErrorType(NewConfigMissingRequired("NEO4J_URI"), ErrorTypeConfig))

	assert.False(t, IsErrorType(NewNotFound("User"), ErrorTypeQuery))
	assert.False(t, IsErrorType(nil, ErrorTypeQuery))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeQuery))
}

func TestIsErrorTypeThroughWrapping(t *testing.T) {
	inner := NewNotFound("Session")
	outer := fmt.Errorf("handling request: %w", inner)
	assert.True(t, IsErrorType(outer, ErrorTypeNotFound))

	doubly := fmt.Errorf("outermost: %w", outer)
	assert.True(t, IsErrorType(doubly, ErrorTypeNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("User")))
	// Ownership mismatches surface exactly like absence
	assert.True(t, IsNotFound(NewSessionNotFound("s1")))
	assert.False(t, IsNotFound(NewQueryFailed("MATCH", nil)))
	assert.False(t, IsNotFound(nil))
}

func TestTypedErrorsCarryContext(t *testing.T) {
	nf := NewNotFound("User")
	assert.Equal(t, "User", nf.Label)

	ps := NewPipelineStage("embedded", "doc-1", errors.New("backend down"))
	assert.Equal(t, "embedded", ps.Stage)
	assert.Equal(t, "doc-1", ps.DocumentID)
	assert.Contains(t, ps.Error(), "embedded")
	assert.Contains(t, ps.Error(), "backend down")
}
