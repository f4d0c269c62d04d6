package graph

import (
	"context"
	"errors"
	"strings"

	"faqgraph/backend/pkg/logger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "faqgraph/backend/pkg/errors"
)

// Executor runs a parameterized Cypher query and returns the result rows.
// Values always travel through the parameter map; only structural identifiers
// from registered schemas may appear in the query text itself.
type Executor interface {
	Execute(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
}

// Client owns the single Neo4j driver for the process. It is constructed once
// at startup and shared by every repository; each Execute call opens and
// closes its own session so concurrent callers never share cursor state.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewClient connects to Neo4j and verifies connectivity. A failure here is
// fatal for the process; there is no silent retry.
func NewClient(ctx context.Context, uri, user, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewConnectionFailed(uri, err)
	}

	return &Client{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}, nil
}

// Close closes the underlying driver
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Execute runs one query in its own session and collects all records
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, classifyQueryError(query, err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, classifyQueryError(query, err)
	}

	return records, nil
}

// classifyQueryError maps driver errors onto the application taxonomy.
// Constraint violations are surfaced distinctly; everything else is a plain
// query failure. No retries happen here.
func classifyQueryError(query string, err error) error {
	var neo4jErr *neo4j.Neo4jError
	if errors.As(err, &neo4jErr) {
		if strings.Contains(neo4jErr.Code, "ConstraintValidationFailed") ||
			strings.Contains(neo4jErr.Code, "ConstraintViolation") {
			return apperrors.NewConstraintViolated(neo4jErr.Code, err)
		}
	}
	return apperrors.NewQueryFailed(query, err)
}
