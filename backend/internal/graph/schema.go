package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "faqgraph/backend/pkg/errors"
)

// identifierPattern is the closed shape every structural identifier (label,
// property key, index name) must satisfy before it may be interpolated into
// query text. Values never go through this path; they are always bound as
// parameters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Schema is the declarative identity descriptor for one entity type: its
// graph label and the ordered list of property keys that make up its
// identity. Everything not named in Keys is a value field, written
// unconditionally on upsert.
type Schema struct {
	Label string
	Keys  []string
}

// NewSchema validates and returns a schema descriptor. Registration-time
// validation keeps the structural identifier set closed: a schema that fails
// here can never reach query compilation.
func NewSchema(label string, keys ...string) (Schema, error) {
	if !identifierPattern.MatchString(label) {
		return Schema{}, apperrors.NewSchemaBadIdentifier(label)
	}
	if len(keys) == 0 {
		return Schema{}, apperrors.NewSchemaNoKeys(label)
	}
	for _, k := range keys {
		if !identifierPattern.MatchString(k) {
			return Schema{}, apperrors.NewSchemaBadIdentifier(k)
		}
	}
	return Schema{Label: label, Keys: keys}, nil
}

// MustSchema is NewSchema for package-level descriptors; invalid descriptors
// are programming errors and panic at init
func MustSchema(label string, keys ...string) Schema {
	s, err := NewSchema(label, keys...)
	if err != nil {
		panic(err)
	}
	return s
}

// Entity is a concrete value instance of a schema: the descriptor plus a
// property bag holding identity and value fields together.
type Entity struct {
	Schema Schema
	Props  map[string]any
}

// NewEntity builds an entity instance for a schema
func NewEntity(schema Schema, props map[string]any) Entity {
	if props == nil {
		props = map[string]any{}
	}
	return Entity{Schema: schema, Props: props}
}

// validate re-checks the descriptor and confirms every identity key is
// present in the instance; it runs before any query text is built
func (e Entity) validate() error {
	if len(e.Schema.Keys) == 0 {
		return apperrors.NewSchemaNoKeys(e.Schema.Label)
	}
	if !identifierPattern.MatchString(e.Schema.Label) {
		return apperrors.NewSchemaBadIdentifier(e.Schema.Label)
	}
	for _, k := range e.Schema.Keys {
		if !identifierPattern.MatchString(k) {
			return apperrors.NewSchemaBadIdentifier(k)
		}
		if _, ok := e.Props[k]; !ok {
			return apperrors.NewSchemaMissingKey(e.Schema.Label, k)
		}
	}
	for k := range e.Props {
		if !identifierPattern.MatchString(k) {
			return apperrors.NewSchemaBadIdentifier(k)
		}
	}
	return nil
}

// isKey reports whether a property name is part of the identity
func (e Entity) isKey(name string) bool {
	for _, k := range e.Schema.Keys {
		if k == name {
			return true
		}
	}
	return false
}

// valueFields returns the non-identity property names in deterministic order
func (e Entity) valueFields() []string {
	fields := make([]string, 0, len(e.Props))
	for name := range e.Props {
		if !e.isKey(name) {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

// matchPattern renders the identity match fragment for an alias, e.g.
// `(n:User {email: $email})`. Parameter names equal the key names.
func (e Entity) matchPattern(alias string) string {
	parts := make([]string, 0, len(e.Schema.Keys))
	for _, k := range e.Schema.Keys {
		parts = append(parts, fmt.Sprintf("%s: $%s", k, k))
	}
	return fmt.Sprintf("(%s:%s {%s})", alias, e.Schema.Label, strings.Join(parts, ", "))
}

// keyParams returns the parameter map for an identity match
func (e Entity) keyParams() map[string]any {
	params := make(map[string]any, len(e.Schema.Keys))
	for _, k := range e.Schema.Keys {
		params[k] = e.Props[k]
	}
	return params
}

// upsertQuery compiles the merge-by-identity upsert: MERGE on the identity
// keys, SET every value field, RETURN the node
func (e Entity) upsertQuery() (string, map[string]any, error) {
	if err := e.validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE %s\n", e.matchPattern("n"))

	fields := e.valueFields()
	if len(fields) > 0 {
		sets := make([]string, 0, len(fields))
		for _, name := range fields {
			sets = append(sets, fmt.Sprintf("n.%s = $%s", name, name))
		}
		fmt.Fprintf(&b, "SET %s\n", strings.Join(sets, ", "))
	}
	b.WriteString("RETURN n")

	params := make(map[string]any, len(e.Props))
	for name, value := range e.Props {
		params[name] = value
	}
	return b.String(), params, nil
}

// findQuery compiles the match-by-identity lookup
func (e Entity) findQuery() (string, map[string]any, error) {
	if err := e.validate(); err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("MATCH %s\nRETURN n", e.matchPattern("n"))
	return query, e.keyParams(), nil
}

// deleteQuery compiles the match-by-identity detach delete
func (e Entity) deleteQuery() (string, map[string]any, error) {
	if err := e.validate(); err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("MATCH %s\nDETACH DELETE n\nRETURN count(n) AS deleted", e.matchPattern("n"))
	return query, e.keyParams(), nil
}
