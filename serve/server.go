package serve

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zero-day-ai/kgchat/llm"
	"github.com/zero-day-ai/kgchat/memory"
	"github.com/zero-day-ai/kgchat/pipeline"
)

// Processor answers one query with conversation context.
type Processor interface {
	Process(ctx context.Context, query string, history []llm.Turn) pipeline.Response
}

// Pinger reports graph store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP transport over the chat pipeline.
type Server struct {
	engine    *gin.Engine
	processor Processor
	store     memory.Store
	pinger    Pinger
	backend   string
	log       *slog.Logger
}

// NewServer wires the HTTP routes. backend names the generation backend for
// health reporting.
func NewServer(processor Processor, store memory.Store, pinger Pinger, backend string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:    engine,
		processor: processor,
		store:     store,
		pinger:    pinger,
		backend:   backend,
		log:       logger.With("component", "serve"),
	}

	engine.GET("/", s.handleRoot)
	engine.GET("/api/health", s.handleHealth)
	engine.POST("/api/chat", s.handleChat)
	engine.DELETE("/api/session/:id", s.handleClearSession)

	return s
}

// Handler returns the HTTP handler for mounting on a server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HistoryTurn is one conversation turn on the wire.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat endpoint payload. History and SessionID are both
// optional; inline history takes precedence over the stored session.
type ChatRequest struct {
	Query     string        `json:"query" binding:"required"`
	History   []HistoryTurn `json:"history"`
	SessionID string        `json:"session_id"`
}

// ChatResponse is the chat endpoint result.
type ChatResponse struct {
	Answer    string `json:"answer"`
	Sources   any    `json:"sources"`
	GraphData any    `json:"graph_data"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	ctx := c.Request.Context()
	history := s.resolveHistory(ctx, req)

	resp := s.processor.Process(ctx, req.Query, history)

	s.appendSession(ctx, req.SessionID, req.Query, resp.Answer)

	c.JSON(http.StatusOK, ChatResponse{
		Answer:    resp.Answer,
		Sources:   resp.Sources,
		GraphData: resp.Graph,
	})
}

// resolveHistory picks the conversation context: inline history when present,
// otherwise the stored session.
func (s *Server) resolveHistory(ctx context.Context, req ChatRequest) []llm.Turn {
	if len(req.History) > 0 {
		turns := make([]llm.Turn, 0, len(req.History))
		for _, t := range req.History {
			turns = append(turns, llm.Turn{Role: llm.Role(t.Role), Content: t.Content})
		}
		return turns
	}
	if req.SessionID == "" || s.store == nil {
		return nil
	}

	turns, err := s.store.History(ctx, req.SessionID)
	if err != nil {
		s.log.Warn("session history unavailable", "session_id", req.SessionID, "error", err)
		return nil
	}
	return turns
}

// appendSession records the answered exchange. Store failures are logged, not
// surfaced; the answer has already been produced.
func (s *Server) appendSession(ctx context.Context, sessionID, query, answer string) {
	if sessionID == "" || s.store == nil {
		return
	}
	err := s.store.Append(ctx, sessionID,
		llm.Turn{Role: llm.RoleUser, Content: query},
		llm.Turn{Role: llm.RoleAssistant, Content: answer},
	)
	if err != nil {
		s.log.Warn("session append failed", "session_id", sessionID, "error", err)
	}
}

func (s *Server) handleClearSession(c *gin.Context) {
	sessionID := c.Param("id")
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"cleared": sessionID})
		return
	}
	if err := s.store.Clear(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": sessionID})
}

func (s *Server) handleHealth(c *gin.Context) {
	overall := "healthy"
	graphStatus := "ok"
	status := http.StatusOK
	if err := s.pinger.Ping(c.Request.Context()); err != nil {
		overall = "degraded"
		graphStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": overall,
		"components": gin.H{
			"graph": graphStatus,
			"llm":   s.backend,
		},
	})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "kgchat",
		"message": "Cybersecurity knowledge graph chat API. POST /api/chat to ask a question.",
	})
}
