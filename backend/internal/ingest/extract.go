package ingest

import (
	"context"
	"fmt"
	"strings"
)

// Default entity types offered to the extraction model
var defaultEntityTypes = []string{
	"ORGANIZATION", "PERSON", "LOCATION", "CONCEPT", "CREATIVE_WORK", "DATE", "PRODUCT", "EVENT",
}

const extractPrompt = `You are a knowledge graph construction assistant.
Identify the entities and the relationships between them in the provided text.

Entity types: %s

Rules:
- Entity names are capitalized.
- Every relationship endpoint must be an entity identified in the same text.
- Relationship strength is a score between 0 and 1.
- Only use information present in the text.`

// DerivedEntity is one entity extracted from chunk text
type DerivedEntity struct {
	Name        string `json:"name" jsonschema_description:"Name of the entity, all letters capitalized"`
	Type        string `json:"type" jsonschema_description:"One of the provided entity types"`
	Description string `json:"description" jsonschema_description:"Description of the entity based on the source text"`
}

// DerivedRelationship is one relationship extracted from chunk text
type DerivedRelationship struct {
	Source      string  `json:"source" jsonschema_description:"Name of the source entity"`
	Target      string  `json:"target" jsonschema_description:"Name of the target entity"`
	Description string  `json:"description" jsonschema_description:"Why the source and target entities are related"`
	Strength    float64 `json:"strength" jsonschema_description:"Strength of the relationship between 0 and 1"`
}

// Extraction is the structured extraction result for one chunk
type Extraction struct {
	Entities      []DerivedEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []DerivedRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

// Extractor derives entities and relationships from chunk text
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// StructuredGenerator is the slice of the generation capability the
// extractor needs: a completion constrained to a response schema
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userMsg, schemaName string, out any) error
}

// LLMExtractor extracts the knowledge graph from text via a structured
// completion
type LLMExtractor struct {
	gen         StructuredGenerator
	entityTypes []string
}

// NewLLMExtractor creates an extractor; nil entityTypes selects the defaults
func NewLLMExtractor(gen StructuredGenerator, entityTypes []string) *LLMExtractor {
	if len(entityTypes) == 0 {
		entityTypes = defaultEntityTypes
	}
	return &LLMExtractor{
		gen:         gen,
		entityTypes: entityTypes,
	}
}

// Extract runs one structured extraction over the chunk text
func (e *LLMExtractor) Extract(ctx context.Context, text string) (*Extraction, error) {
	systemPrompt := fmt.Sprintf(extractPrompt, strings.Join(e.entityTypes, ", "))

	var result Extraction
	err := e.gen.GenerateJSON(ctx, systemPrompt, text, "extract_entities_and_relationships", &result)
	if err != nil {
		return nil, fmt.Errorf("entity extraction failed: %w", err)
	}
	return &result, nil
}
