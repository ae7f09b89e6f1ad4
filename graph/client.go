package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Sentinel errors for graph operations.
var (
	// ErrUnavailable indicates that the graph store could not be reached or a
	// query failed. Read paths convert this into an empty result set; it is
	// only returned by operations that surface errors, such as Ping.
	ErrUnavailable = errors.New("graph: store unavailable")
)

// Config holds the Neo4j connection settings.
type Config struct {
	// URI is the bolt connection string (e.g. "bolt://localhost:7687").
	URI string

	// Username and Password authenticate against the database.
	Username string
	Password string

	// Database is the target database name. Defaults to "neo4j".
	Database string
}

// Client executes parameterized Cypher against the knowledge graph. One Client
// is created at process start, shared by every request, and closed at
// shutdown.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	log      *slog.Logger
}

// NewClient connects to Neo4j and verifies connectivity. The returned client
// must be closed with Close when the process shuts down.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Database == "" {
		cfg.Database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", cfg.URI, err)
	}

	return &Client{
		driver:   driver,
		database: cfg.Database,
		log:      logger.With("component", "graph"),
	}, nil
}

// Close releases the underlying driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Ping verifies that the store answers a trivial query. Unlike the retrieval
// reads, Ping reports failures to the caller; it backs the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "RETURN 1 AS ok", nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// read executes a read query in its own session and returns row-oriented
// records. Errors propagate to the caller; the degraded wrapper is run.
func (c *Client) read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		rows, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, Record(row.AsMap()))
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Record), nil
}

// run is the degraded read used by the retrieval pipeline: any failure is
// logged and converted into an empty result set so the pipeline never aborts
// on a graph error.
func (c *Client) run(ctx context.Context, op, cypher string, params map[string]any) []Record {
	records, err := c.read(ctx, cypher, params)
	if err != nil {
		c.log.Warn("graph query degraded to empty result", "op", op, "error", err)
		return nil
	}
	return records
}

// Write executes a write query in its own session. Used by schema provisioning
// and the bulk loader; errors propagate.
func (c *Client) Write(ctx context.Context, cypher string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, params)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("graph write: %w", err)
	}
	return nil
}
