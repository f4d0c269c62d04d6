package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSchema represents entity schema errors (missing identity keys)
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeNotFound represents identity lookups that matched nothing
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConstraint represents store-level constraint violations
	ErrorTypeConstraint ErrorType = "constraint"
	// ErrorTypeConnection represents graph store connectivity errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeQuery represents query execution errors
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypePipeline represents ingestion pipeline stage errors
	ErrorTypePipeline ErrorType = "pipeline"
	// ErrorTypeOwnership represents session/user ownership mismatches
	ErrorTypeOwnership ErrorType = "ownership"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Schema Errors

// ErrSchemaNoKeys is returned when an entity schema declares no identity fields
type ErrSchemaNoKeys struct {
	*BaseError
	Label string
}

func NewSchemaNoKeys(label string) *ErrSchemaNoKeys {
	return &ErrSchemaNoKeys{
		BaseError: NewBaseError(ErrorTypeSchema, fmt.Sprintf("entity %s declares no identity keys", label), nil),
		Label:     label,
	}
}

// ErrSchemaMissingKey is returned when an entity instance lacks a value for
// one of its declared identity keys
type ErrSchemaMissingKey struct {
	*BaseError
	Label string
	Key   string
}

func NewSchemaMissingKey(label, key string) *ErrSchemaMissingKey {
	return &ErrSchemaMissingKey{
		BaseError: NewBaseError(ErrorTypeSchema, fmt.Sprintf("entity %s is missing identity key %s", label, key), nil),
		Label:     label,
		Key:       key,
	}
}

// ErrSchemaBadIdentifier is returned when a label or property name is not a
// valid structural identifier
type ErrSchemaBadIdentifier struct {
	*BaseError
	Identifier string
}

func NewSchemaBadIdentifier(identifier string) *ErrSchemaBadIdentifier {
	return &ErrSchemaBadIdentifier{
		BaseError:  NewBaseError(ErrorTypeSchema, fmt.Sprintf("invalid structural identifier: %q", identifier), nil),
		Identifier: identifier,
	}
}

// Lookup Errors

// ErrNotFound is returned when an identity-based lookup matched no node
type ErrNotFound struct {
	*BaseError
	Label string
}

func NewNotFound(label string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found", label), nil),
		Label:     label,
	}
}

// ErrSessionNotFound is returned when a session lookup fails the ownership
// check; existence is deliberately not leaked
type ErrSessionNotFound struct {
	*BaseError
	SessionID string
}

func NewSessionNotFound(sessionID string) *ErrSessionNotFound {
	return &ErrSessionNotFound{
		BaseError: NewBaseError(ErrorTypeOwnership, fmt.Sprintf("session not found: %s", sessionID), nil),
		SessionID: sessionID,
	}
}

// Graph Errors

// ErrConnectionFailed is returned when the graph store cannot be reached
type ErrConnectionFailed struct {
	*BaseError
	URI string
}

func NewConnectionFailed(uri string, err error) *ErrConnectionFailed {
	return &ErrConnectionFailed{
		BaseError: NewBaseError(ErrorTypeConnection, fmt.Sprintf("failed to connect to graph store: %s", uri), err),
		URI:       uri,
	}
}

// ErrQueryFailed is returned when a graph query fails at execution time
type ErrQueryFailed struct {
	*BaseError
	Query string
}

func NewQueryFailed(query string, err error) *ErrQueryFailed {
	return &ErrQueryFailed{
		BaseError: NewBaseError(ErrorTypeQuery, "query failed", err),
		Query:     query,
	}
}

// ErrConstraintViolated is returned when the store rejects a write on a
// uniqueness or existence constraint
type ErrConstraintViolated struct {
	*BaseError
	Label string
}

func NewConstraintViolated(label string, err error) *ErrConstraintViolated {
	return &ErrConstraintViolated{
		BaseError: NewBaseError(ErrorTypeConstraint, fmt.Sprintf("constraint violated on %s", label), err),
		Label:     label,
	}
}

// Pipeline Errors

// ErrPipelineStage is returned when an ingestion stage fails; the run is
// terminal and partial graph state may remain until compensated
type ErrPipelineStage struct {
	*BaseError
	Stage      string
	DocumentID string
}

func NewPipelineStage(stage, documentID string, err error) *ErrPipelineStage {
	return &ErrPipelineStage{
		BaseError:  NewBaseError(ErrorTypePipeline, fmt.Sprintf("ingestion failed at stage %s", stage), err),
		Stage:      stage,
		DocumentID: documentID,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// ErrType returns the error category; promoted to every typed error through
// the embedded BaseError
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if typed, ok := err.(interface{ ErrType() ErrorType }); ok {
		return typed.ErrType() == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(wrapped.Unwrap(), errType)
	}
	return false
}

// IsNotFound reports whether an error should surface to callers as "not
// found"; ownership mismatches fail closed to the same outcome
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound) || IsErrorType(err, ErrorTypeOwnership)
}
