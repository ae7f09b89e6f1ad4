package serve_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/kgchat/graph"
	"github.com/zero-day-ai/kgchat/llm"
	"github.com/zero-day-ai/kgchat/memory"
	"github.com/zero-day-ai/kgchat/pipeline"
	"github.com/zero-day-ai/kgchat/serve"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeProcessor returns a canned response and records the history it saw.
type fakeProcessor struct {
	gotQuery   string
	gotHistory []llm.Turn
	resp       pipeline.Response
}

func (f *fakeProcessor) Process(_ context.Context, query string, history []llm.Turn) pipeline.Response {
	f.gotQuery = query
	f.gotHistory = history
	return f.resp
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func newTestServer(p *fakeProcessor, store memory.Store, pingErr error) *serve.Server {
	return serve.NewServer(p, store, &fakePinger{err: pingErr}, "mock", nil)
}

func postChat(t *testing.T, srv *serve.Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// TestChat_RoundTrip verifies the happy path payload shape.
func TestChat_RoundTrip(t *testing.T) {
	p := &fakeProcessor{resp: pipeline.Response{
		Answer:  "DC01 is reachable over RDP.",
		Sources: []graph.Record{{"computer": "DC01"}},
		Graph: graph.SubgraphResult{
			Nodes: []graph.Node{{ID: 0, Label: "DC01", Type: "Computer"}},
			Edges: []graph.Edge{},
		},
	}}
	srv := newTestServer(p, memory.NewInMemoryStore(0), nil)

	rec := postChat(t, srv, serve.ChatRequest{Query: "what can alice reach"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DC01 is reachable over RDP.", resp["answer"])
	assert.NotNil(t, resp["sources"])
	graphData, ok := resp["graph_data"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, graphData["nodes"], 1)
	assert.Equal(t, "what can alice reach", p.gotQuery)
}

// TestChat_MissingQuery verifies an empty query is rejected.
func TestChat_MissingQuery(t *testing.T) {
	srv := newTestServer(&fakeProcessor{}, memory.NewInMemoryStore(0), nil)

	rec := postChat(t, srv, map[string]any{"query": "   "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestChat_InlineHistoryWins verifies inline history is used even when a
// session exists.
func TestChat_InlineHistoryWins(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	require.NoError(t, store.Append(context.Background(), "s1",
		llm.Turn{Role: llm.RoleUser, Content: "stored"}))

	p := &fakeProcessor{}
	srv := newTestServer(p, store, nil)

	rec := postChat(t, srv, serve.ChatRequest{
		Query:     "follow up",
		SessionID: "s1",
		History:   []serve.HistoryTurn{{Role: "user", Content: "inline"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.gotHistory, 1)
	assert.Equal(t, "inline", p.gotHistory[0].Content)
}

// TestChat_SessionHistoryLoadedAndAppended verifies the session flow: stored
// turns reach the processor and the new exchange is appended.
func TestChat_SessionHistoryLoadedAndAppended(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	require.NoError(t, store.Append(context.Background(), "s1",
		llm.Turn{Role: llm.RoleUser, Content: "earlier question"},
		llm.Turn{Role: llm.RoleAssistant, Content: "earlier answer"},
	))

	p := &fakeProcessor{resp: pipeline.Response{Answer: "new answer"}}
	srv := newTestServer(p, store, nil)

	rec := postChat(t, srv, serve.ChatRequest{Query: "new question", SessionID: "s1"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.gotHistory, 2)
	assert.Equal(t, "earlier question", p.gotHistory[0].Content)

	history, err := store.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "new question", history[2].Content)
	assert.Equal(t, "new answer", history[3].Content)
}

// TestClearSession verifies the session clear endpoint.
func TestClearSession(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	require.NoError(t, store.Append(context.Background(), "s1",
		llm.Turn{Role: llm.RoleUser, Content: "hello"}))

	srv := newTestServer(&fakeProcessor{}, store, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/session/s1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	history, err := store.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestHealth verifies both the healthy and degraded shapes.
func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
		wantGraph  string
	}{
		{
			name:       "healthy",
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantGraph:  "ok",
		},
		{
			name:       "graph unreachable",
			pingErr:    graph.ErrUnavailable,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantGraph:  "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeProcessor{}, memory.NewInMemoryStore(0), tt.pingErr)

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			components := resp["components"].(map[string]any)
			assert.Equal(t, tt.wantGraph, components["graph"])
			assert.Equal(t, "mock", components["llm"])
		})
	}
}

// TestRoot verifies the banner endpoint.
func TestRoot(t *testing.T) {
	srv := newTestServer(&fakeProcessor{}, memory.NewInMemoryStore(0), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kgchat")
}
