// Package viz builds the visualization subgraph returned with each answer.
//
// Candidate entity names are pooled from three sources: the generator's
// structured entity list, the scalar string fields of every graph record used
// as context (descriptions and property bags excluded), and the extractor's
// principal and host candidates. The pool is deduplicated, capped, and handed
// to the graph access layer's subgraph operation. An empty pool yields an
// empty subgraph without touching the store.
package viz

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zero-day-ai/kgchat/extract"
	"github.com/zero-day-ai/kgchat/graph"
	"github.com/zero-day-ai/kgchat/llm"
)

// Pool size caps for the default and wide views.
const (
	// DefaultMaxEntities caps the candidate pool for the standard view.
	DefaultMaxEntities = 5

	// WideMaxEntities caps the candidate pool for the wide view.
	WideMaxEntities = 15

	// defaultMaxNodes bounds the node set fetched for the neighborhood.
	defaultMaxNodes = 50
)

// SubgraphQuerier is the graph operation the builder depends on.
type SubgraphQuerier interface {
	Subgraph(ctx context.Context, entityNames []string, maxNodes int) graph.SubgraphResult
}

// Builder fetches bounded visualization subgraphs for answer entities.
type Builder struct {
	querier     SubgraphQuerier
	maxEntities int
	log         *slog.Logger
}

// NewBuilder creates a builder. maxEntities caps the candidate pool; zero or
// negative selects the default cap.
func NewBuilder(querier SubgraphQuerier, maxEntities int, logger *slog.Logger) *Builder {
	if maxEntities <= 0 {
		maxEntities = DefaultMaxEntities
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		querier:     querier,
		maxEntities: maxEntities,
		log:         logger.With("component", "viz"),
	}
}

// Build deduplicates and caps the candidate pool, then fetches the bounded
// neighborhood. An empty pool returns an empty subgraph without a query.
func (b *Builder) Build(ctx context.Context, candidates []string) graph.SubgraphResult {
	pool := dedupe(candidates)
	if len(pool) == 0 {
		return graph.SubgraphResult{}
	}
	if len(pool) > b.maxEntities {
		pool = pool[:b.maxEntities]
	}
	b.log.Debug("building subgraph", "entities", len(pool))
	return b.querier.Subgraph(ctx, pool, defaultMaxNodes)
}

// CandidateNames pools entity name candidates from the structured answer, the
// context records, and the extracted principal and host candidates.
// Deduplication happens in Build; this only gathers.
func CandidateNames(answer llm.StructuredAnswer, records []graph.Record, ents extract.Entities) []string {
	var pool []string
	pool = append(pool, answer.Entities...)
	for _, record := range records {
		pool = append(pool, record.ScalarStrings()...)
	}
	pool = append(pool, ents.Principals...)
	pool = append(pool, ents.Hosts...)
	return pool
}

// dedupe removes duplicates case-insensitively, keeping first-seen casing and
// order, and drops empty names.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
