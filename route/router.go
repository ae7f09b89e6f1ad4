package route

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/zero-day-ai/kgchat/extract"
	"github.com/zero-day-ai/kgchat/graph"
)

// previewRows caps the serialized preview embedded in a synthetic analytical
// record.
const previewRows = 5

// Querier is the subset of the graph access layer the router dispatches to.
// All operations are total: failures have already been degraded to empty
// results at the access layer boundary.
type Querier interface {
	RDPAccess(ctx context.Context, principal string) []graph.Record
	GroupMemberships(ctx context.Context, principal string) []graph.Record
	AttackPaths(ctx context.Context, target string) []graph.Record
	HighValueTargets(ctx context.Context, limit int) []graph.Record
	DomainAdmins(ctx context.Context) []graph.Record
	Kerberoastable(ctx context.Context) []graph.Record
	KeywordSearch(ctx context.Context, query string, limit int) []graph.Record
	Analytical() []graph.AnalyticalQuery
	RunAnalytical(ctx context.Context, q graph.AnalyticalQuery) []graph.Record
}

// Options tunes the router's result caps.
type Options struct {
	// SearchLimit caps generic keyword search results.
	SearchLimit int

	// TargetLimit caps the high-value target ranking.
	TargetLimit int
}

// Router selects and executes retrieval plans.
type Router struct {
	querier  Querier
	log      *slog.Logger
	opts     Options
	handlers map[StepKind]func(ctx context.Context, step Step) []graph.Record
}

// NewRouter builds a router over the given querier.
func NewRouter(querier Querier, opts Options, logger *slog.Logger) *Router {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = graph.DefaultSearchLimit
	}
	if opts.TargetLimit <= 0 {
		opts.TargetLimit = graph.DefaultTargetLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		querier: querier,
		log:     logger.With("component", "route"),
		opts:    opts,
	}
	// Exhaustive over StepKind: adding a kind without a handler is caught by
	// the dispatch check in Execute.
	r.handlers = map[StepKind]func(ctx context.Context, step Step) []graph.Record{
		StepPrincipalAccess:  r.principalAccess,
		StepAttackPaths:      r.attackPaths,
		StepHighValueTargets: r.highValueTargets,
		StepDomainAdmins:     r.domainAdmins,
		StepKerberoastable:   r.kerberoastable,
		StepAnalytical:       r.analytical,
		StepKeywordSearch:    r.keywordSearch,
	}
	return r
}

// Route classifies the query into a plan using the querier's analytical
// registry.
func (r *Router) Route(query string, ents extract.Entities) Plan {
	plan := BuildPlan(query, ents, r.querier.Analytical())
	r.log.Debug("query routed", "intent", plan.Intent.String(), "steps", len(plan.Steps))
	return plan
}

// Execute runs the plan's steps in order and concatenates their records. A
// targeted plan that yields no rows falls through to the generic keyword
// search exactly once.
func (r *Router) Execute(ctx context.Context, plan Plan, query string) []graph.Record {
	var records []graph.Record
	for _, step := range plan.Steps {
		handler, ok := r.handlers[step.Kind]
		if !ok {
			r.log.Warn("no handler for step kind", "kind", int(step.Kind))
			continue
		}
		records = append(records, handler(ctx, step)...)
	}

	if plan.Intent == IntentTargeted && len(records) == 0 {
		r.log.Debug("targeted plan empty, falling through to keyword search")
		records = r.keywordSearch(ctx, Step{Kind: StepKeywordSearch, Query: query})
	}
	return records
}

func (r *Router) principalAccess(ctx context.Context, step Step) []graph.Record {
	records := r.querier.RDPAccess(ctx, step.Principal)
	return append(records, r.querier.GroupMemberships(ctx, step.Principal)...)
}

func (r *Router) attackPaths(ctx context.Context, step Step) []graph.Record {
	return r.querier.AttackPaths(ctx, step.Target)
}

func (r *Router) highValueTargets(ctx context.Context, _ Step) []graph.Record {
	return r.querier.HighValueTargets(ctx, r.opts.TargetLimit)
}

func (r *Router) domainAdmins(ctx context.Context, _ Step) []graph.Record {
	return r.querier.DomainAdmins(ctx)
}

func (r *Router) kerberoastable(ctx context.Context, _ Step) []graph.Record {
	return r.querier.Kerberoastable(ctx)
}

func (r *Router) keywordSearch(ctx context.Context, step Step) []graph.Record {
	return r.querier.KeywordSearch(ctx, step.Query, r.opts.SearchLimit)
}

// analytical runs one canned query and wraps its rows into a single synthetic
// record whose description serializes a preview of the first rows.
func (r *Router) analytical(ctx context.Context, step Step) []graph.Record {
	rows := r.querier.RunAnalytical(ctx, step.Analytical)
	return []graph.Record{syntheticRecord(step.Analytical, rows)}
}

func syntheticRecord(q graph.AnalyticalQuery, rows []graph.Record) graph.Record {
	return graph.Record{
		"name":        q.Name,
		"labels":      []any{"Analytics"},
		"description": serializePreview(rows, previewRows),
	}
}

// serializePreview renders the first limit rows as "key=value" pairs, one row
// per line, with keys sorted for determinism.
func serializePreview(rows []graph.Record, limit int) string {
	if len(rows) == 0 {
		return "no results"
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, row[k]))
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}
	return strings.Join(lines, "\n")
}
