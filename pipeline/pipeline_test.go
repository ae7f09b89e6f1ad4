package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/kgchat/graph"
	"github.com/zero-day-ai/kgchat/llm"
	"github.com/zero-day-ai/kgchat/pipeline"
	"github.com/zero-day-ai/kgchat/route"
	"github.com/zero-day-ai/kgchat/viz"
)

// fakeQuerier serves canned rows and records invoked operations.
type fakeQuerier struct {
	calls  []string
	rdp    []graph.Record
	groups []graph.Record
	search []graph.Record
}

func (f *fakeQuerier) RDPAccess(_ context.Context, principal string) []graph.Record {
	f.calls = append(f.calls, "rdp:"+principal)
	return f.rdp
}

func (f *fakeQuerier) GroupMemberships(_ context.Context, principal string) []graph.Record {
	f.calls = append(f.calls, "groups:"+principal)
	return f.groups
}

func (f *fakeQuerier) AttackPaths(_ context.Context, target string) []graph.Record {
	f.calls = append(f.calls, "paths:"+target)
	return nil
}

func (f *fakeQuerier) HighValueTargets(_ context.Context, _ int) []graph.Record {
	f.calls = append(f.calls, "targets")
	return nil
}

func (f *fakeQuerier) DomainAdmins(_ context.Context) []graph.Record {
	f.calls = append(f.calls, "admins")
	return nil
}

func (f *fakeQuerier) Kerberoastable(_ context.Context) []graph.Record {
	f.calls = append(f.calls, "kerberoast")
	return nil
}

func (f *fakeQuerier) KeywordSearch(_ context.Context, query string, _ int) []graph.Record {
	f.calls = append(f.calls, "search:"+query)
	return f.search
}

func (f *fakeQuerier) Analytical() []graph.AnalyticalQuery {
	return graph.AnalyticalQueries()
}

func (f *fakeQuerier) RunAnalytical(_ context.Context, q graph.AnalyticalQuery) []graph.Record {
	f.calls = append(f.calls, "analytical:"+q.Name)
	return nil
}

// recordingCompleter captures the last prompt it was given.
type recordingCompleter struct {
	lastPrompt string
	response   string
}

func (r *recordingCompleter) Complete(_ context.Context, prompt string) (string, error) {
	r.lastPrompt = prompt
	return r.response, nil
}

func (r *recordingCompleter) Name() string { return "recording" }

type fakeSubgraphQuerier struct {
	gotNames []string
	result   graph.SubgraphResult
}

func (f *fakeSubgraphQuerier) Subgraph(_ context.Context, names []string, _ int) graph.SubgraphResult {
	f.gotNames = names
	return f.result
}

func newPipeline(q *fakeQuerier, sub *fakeSubgraphQuerier, completer llm.Completer) *pipeline.Pipeline {
	router := route.NewRouter(q, route.Options{}, nil)
	generator := llm.NewGenerator(completer, nil)
	builder := viz.NewBuilder(sub, viz.DefaultMaxEntities, nil)
	return pipeline.New(router, generator, builder, pipeline.Config{}, nil)
}

// TestProcess_TargetedFlow verifies the end-to-end targeted flow: a principal
// query retrieves access rows, feeds them to the generator, and builds a
// subgraph from the answer entities and sources.
func TestProcess_TargetedFlow(t *testing.T) {
	q := &fakeQuerier{rdp: []graph.Record{{"computer": "DC01"}}}
	sub := &fakeSubgraphQuerier{result: graph.SubgraphResult{
		Nodes: []graph.Node{{ID: 0, Label: "DC01", Type: "Computer"}},
		Edges: []graph.Edge{},
	}}
	completer := &llm.MockCompleter{
		Response: "alice can reach DC01 over RDP.\nENTITIES:\n- DC01",
	}

	resp := newPipeline(q, sub, completer).Process(context.Background(),
		"What RDP access does alice@corp.local have?", nil)

	assert.Equal(t, "alice can reach DC01 over RDP.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "DC01", resp.Sources[0].PrimaryName())
	require.Len(t, resp.Graph.Nodes, 1)
	assert.Contains(t, sub.gotNames, "DC01")
	assert.Contains(t, sub.gotNames, "alice@corp.local")
	assert.Equal(t, []string{"rdp:alice@corp.local", "groups:alice@corp.local"}, q.calls)
}

// TestProcess_GeneratorFailureDegrades verifies that a backend failure still
// yields a well-formed response carrying the apology answer.
func TestProcess_GeneratorFailureDegrades(t *testing.T) {
	q := &fakeQuerier{search: []graph.Record{{"name": "Phishing"}}}
	completer := &llm.MockCompleter{Err: assert.AnError}

	resp := newPipeline(q, &fakeSubgraphQuerier{}, completer).Process(
		context.Background(), "tell me about phishing", nil)

	assert.Equal(t, llm.ApologyAnswer, resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.NotNil(t, resp.Graph.Nodes)
	assert.NotNil(t, resp.Graph.Edges)
}

// TestProcess_EmptyRetrievalStillAnswers verifies that zero retrieved rows
// produce non-nil sources and an answer generated over the sentinel context.
func TestProcess_EmptyRetrievalStillAnswers(t *testing.T) {
	q := &fakeQuerier{}
	completer := &llm.MockCompleter{Response: "I could not find anything relevant."}

	resp := newPipeline(q, &fakeSubgraphQuerier{}, completer).Process(
		context.Background(), "tell me about basket weaving", nil)

	assert.Equal(t, "I could not find anything relevant.", resp.Answer)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

// TestProcess_HistoryReachesGenerator verifies conversation turns are carried
// into the generation prompt.
func TestProcess_HistoryReachesGenerator(t *testing.T) {
	q := &fakeQuerier{}
	completer := &recordingCompleter{response: "answer"}
	history := []llm.Turn{
		{Role: llm.RoleUser, Content: "who is alice"},
		{Role: llm.RoleAssistant, Content: "a domain user"},
	}

	newPipeline(q, &fakeSubgraphQuerier{}, completer).Process(
		context.Background(), "what can they reach", history)

	assert.Contains(t, completer.lastPrompt, "who is alice")
	assert.Contains(t, completer.lastPrompt, "a domain user")
}
