package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// EntitiesDelimiter separates the free-text answer from the entity list in a
// structured completion. Text before the delimiter is the answer; each
// non-empty line after it, stripped of a leading bullet marker, is an entity.
const EntitiesDelimiter = "ENTITIES:"

// ApologyAnswer is the fixed degraded answer returned when the backend fails.
const ApologyAnswer = "I'm sorry, I encountered an error while generating your answer. Please try again."

// systemPreamble is the fixed domain instruction prepended to every prompt.
const systemPreamble = `You are a specialized cybersecurity assistant that provides accurate, reliable, and contextual information.
Your knowledge is based on authoritative cybersecurity sources and a knowledge graph of network entities.

Key guidelines:
1. Provide complete, accurate answers based on the knowledge graph context provided
2. Explain cybersecurity terms in plain language while maintaining accuracy
3. Include relevant relationships between entities when helpful (users, computers, domains, groups)
4. Focus on explaining attack paths, vulnerabilities, and security concepts
5. Structure complex answers clearly with bullet points or sections

Use the provided knowledge graph context to enhance your answers with domain-specific knowledge.`

// structureDirective asks the generator for the delimited entity block.
const structureDirective = `After providing your answer, list key cybersecurity entities mentioned in your response in this format:

ENTITIES:
- Entity1
- Entity2
- Entity3`

// Request carries everything needed to generate one answer.
type Request struct {
	// Query is the raw user question.
	Query string

	// Context is the formatted knowledge graph context block.
	Context string

	// History is the ordered prior conversation, oldest first.
	History []Turn

	// Structured requests the ENTITIES directive. When false the completion
	// is returned as a plain answer with no entity parsing expected.
	Structured bool
}

// StructuredAnswer is the parsed generator output: free text plus an ordered
// entity list. Consumed once per request, never cached.
type StructuredAnswer struct {
	// Answer is the free-text answer.
	Answer string `json:"answer"`

	// Entities are the names listed after the delimiter, in completion order.
	// Empty when the delimiter was absent or generation failed.
	Entities []string `json:"entities"`
}

// Generator turns retrieval context and a query into a StructuredAnswer via
// the configured Completer.
type Generator struct {
	completer Completer
	log       *slog.Logger
}

// NewGenerator wires a generator to its backend.
func NewGenerator(completer Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		completer: completer,
		log:       logger.With("component", "llm"),
	}
}

// Backend reports the configured backend name for health checks.
func (g *Generator) Backend() string {
	return g.completer.Name()
}

// Answer builds the instruction, invokes the backend and parses the result.
// Backend failures never propagate: they are logged and converted into the
// fixed apology answer with an empty entity list.
func (g *Generator) Answer(ctx context.Context, req Request) StructuredAnswer {
	instruction := BuildInstruction(req)

	completion, err := g.completer.Complete(ctx, instruction)
	if err != nil {
		g.log.Warn("generation degraded to apology answer", "backend", g.completer.Name(), "error", err)
		return StructuredAnswer{Answer: ApologyAnswer, Entities: []string{}}
	}
	if !req.Structured {
		return StructuredAnswer{Answer: completion, Entities: []string{}}
	}
	return ParseStructured(completion)
}

// BuildInstruction assembles the single instruction string sent to the
// backend: preamble, optional structure directive, serialized history, context
// block, and the raw query.
func BuildInstruction(req Request) string {
	var b strings.Builder

	b.WriteString(systemPreamble)
	b.WriteString("\n\n")
	if req.Structured {
		b.WriteString(structureDirective)
		b.WriteString("\n\n")
	}
	if len(req.History) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", capitalize(turn.Role.String()), turn.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Knowledge Graph Context:\n%s\n\n", req.Context)
	fmt.Fprintf(&b, "User Query: %s\n\nYour helpful answer:", req.Query)

	return b.String()
}

// ParseStructured splits a completion on the ENTITIES delimiter. When the
// delimiter is absent the whole text is the answer and the entity list is
// empty; this is a parsing fallback, not an error.
func ParseStructured(completion string) StructuredAnswer {
	before, after, found := strings.Cut(completion, EntitiesDelimiter)
	if !found {
		return StructuredAnswer{Answer: completion, Entities: []string{}}
	}

	entities := []string{}
	for _, line := range strings.Split(after, "\n") {
		entity := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		entity = strings.TrimPrefix(entity, "-")
		entity = strings.TrimSpace(entity)
		if entity != "" {
			entities = append(entities, entity)
		}
	}
	return StructuredAnswer{
		Answer:   strings.TrimSpace(before),
		Entities: entities,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
