// Package pipeline orchestrates the retrieval-augmented answer flow: entity
// extraction, query routing, context formatting, answer generation, and
// subgraph construction.
//
// Each request is processed synchronously and independently; stages run
// sequentially with no intra-request fan-out. Every stage is bounded by a
// per-stage timeout threaded through its context, and every stage is total,
// so the pipeline always produces a well-formed response regardless of graph
// or generator failures.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/kgchat/extract"
	"github.com/zero-day-ai/kgchat/graph"
	"github.com/zero-day-ai/kgchat/llm"
	"github.com/zero-day-ai/kgchat/prompt"
	"github.com/zero-day-ai/kgchat/route"
	"github.com/zero-day-ai/kgchat/viz"
)

// DefaultStageTimeout bounds each blocking stage (retrieval, generation,
// subgraph) when no timeout is configured.
const DefaultStageTimeout = 30 * time.Second

// Config tunes pipeline behavior.
type Config struct {
	// StageTimeout bounds each blocking stage. Zero selects the default.
	StageTimeout time.Duration

	// Extract configures placeholder identities for the extractor.
	Extract extract.Options
}

// Response is the complete answer payload for one query. All fields are
// always non-nil well-formed values.
type Response struct {
	// Answer is the generated free-text answer.
	Answer string `json:"answer"`

	// Sources are the graph records used as generation context.
	Sources []graph.Record `json:"sources"`

	// Graph is the visualization subgraph for the surfaced entities.
	Graph graph.SubgraphResult `json:"graph_data"`
}

// Pipeline wires the retrieval stages together. One Pipeline is built at
// process start and shared by every request.
type Pipeline struct {
	router    *route.Router
	generator *llm.Generator
	builder   *viz.Builder
	cfg       Config
	tracer    trace.Tracer
	log       *slog.Logger
}

// New builds a pipeline over its collaborators.
func New(router *route.Router, generator *llm.Generator, builder *viz.Builder, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = DefaultStageTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		router:    router,
		generator: generator,
		builder:   builder,
		cfg:       cfg,
		tracer:    otel.Tracer("kgchat/pipeline"),
		log:       logger.With("component", "pipeline"),
	}
}

// Process answers one query. The returned response is always well-formed:
// graph and generator failures degrade to empty sources, an apology answer,
// or an empty subgraph, never to an error.
func (p *Pipeline) Process(ctx context.Context, query string, history []llm.Turn) Response {
	requestID := uuid.NewString()
	log := p.log.With("request_id", requestID)

	ctx, span := p.tracer.Start(ctx, "pipeline.process",
		trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	ents := p.extractStage(ctx, query)

	plan, records := p.retrieveStage(ctx, query, ents)
	log.Debug("retrieval complete", "intent", plan.Intent.String(), "records", len(records))

	answer := p.generateStage(ctx, query, records, history)

	subgraph := p.subgraphStage(ctx, answer, records, ents)

	if records == nil {
		records = []graph.Record{}
	}
	if subgraph.Nodes == nil {
		subgraph.Nodes = []graph.Node{}
	}
	if subgraph.Edges == nil {
		subgraph.Edges = []graph.Edge{}
	}
	return Response{
		Answer:  answer.Answer,
		Sources: records,
		Graph:   subgraph,
	}
}

func (p *Pipeline) extractStage(ctx context.Context, query string) extract.Entities {
	_, span := p.tracer.Start(ctx, "pipeline.extract")
	defer span.End()
	return extract.Extract(query, p.cfg.Extract)
}

func (p *Pipeline) retrieveStage(ctx context.Context, query string, ents extract.Entities) (route.Plan, []graph.Record) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()
	ctx, span := p.tracer.Start(ctx, "pipeline.retrieve")
	defer span.End()

	plan := p.router.Route(query, ents)
	span.SetAttributes(attribute.String("retrieval.intent", plan.Intent.String()))
	return plan, p.router.Execute(ctx, plan, query)
}

func (p *Pipeline) generateStage(ctx context.Context, query string, records []graph.Record, history []llm.Turn) llm.StructuredAnswer {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()
	ctx, span := p.tracer.Start(ctx, "pipeline.generate")
	defer span.End()

	return p.generator.Answer(ctx, llm.Request{
		Query:      query,
		Context:    prompt.FormatRecords(records),
		History:    history,
		Structured: true,
	})
}

func (p *Pipeline) subgraphStage(ctx context.Context, answer llm.StructuredAnswer, records []graph.Record, ents extract.Entities) graph.SubgraphResult {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()
	ctx, span := p.tracer.Start(ctx, "pipeline.subgraph")
	defer span.End()

	return p.builder.Build(ctx, viz.CandidateNames(answer, records, ents))
}
