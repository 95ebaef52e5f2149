// Package graph is the provider boundary: a thin wrapper over the Neo4j
// driver able to execute compiled queries, plus entity identity and node
// serialization helpers. The compiler never touches this package; queries
// compile without a connection and only cross this boundary when a caller
// decides to run one.
package graph

import (
	"context"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/openogm/graphom/internal/cypher"
)

// Config holds the driver connection settings.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

// ConfigFromEnv reads connection settings from the environment, with the
// driver's conventional defaults for local development.
func ConfigFromEnv() Config {
	cfg := Config{
		URI:      os.Getenv("GRAPHOM_NEO4J_URI"),
		User:     os.Getenv("GRAPHOM_NEO4J_USER"),
		Password: os.Getenv("GRAPHOM_NEO4J_PASSWORD"),
		Database: os.Getenv("GRAPHOM_NEO4J_DATABASE"),
	}
	if cfg.URI == "" {
		cfg.URI = "bolt://localhost:7687"
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	return cfg
}

// Client wraps the Neo4j driver and executes compiled queries.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClient creates a client from configuration.
func NewClient(cfg Config) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Client{driver: driver, database: cfg.Database}, nil
}

// Verify checks connectivity to the database.
func (c *Client) Verify(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the driver resources.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// session returns a new session in the given access mode.
func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.database,
	})
}

// Read executes a compiled query in a read transaction and collects the
// records.
func (c *Client) Read(ctx context.Context, q *cypher.Query) ([]*neo4j.Record, error) {
	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := neo4j.ExecuteRead(ctx, session,
		func(tx neo4j.ManagedTransaction) ([]*neo4j.Record, error) {
			res, err := tx.Run(ctx, q.Text, q.ParameterMap())
			if err != nil {
				return nil, err
			}
			return res.Collect(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	return records, nil
}

// Write executes a compiled query in a write transaction and collects the
// records.
func (c *Client) Write(ctx context.Context, q *cypher.Query) ([]*neo4j.Record, error) {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	records, err := neo4j.ExecuteWrite(ctx, session,
		func(tx neo4j.ManagedTransaction) ([]*neo4j.Record, error) {
			res, err := tx.Run(ctx, q.Text, q.ParameterMap())
			if err != nil {
				return nil, err
			}
			return res.Collect(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	return records, nil
}
