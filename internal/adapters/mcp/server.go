// Package mcp exposes the war council as an MCP server over stdio, so MCP
// clients can start deliberations and inspect sessions as tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ports"
)

// Version is reported in the MCP handshake.
const Version = "0.3.0"

// Deliberator is the slice of the council executor the MCP surface needs.
type Deliberator interface {
	Run(ctx context.Context, problem string, mode domain.Mode) (*domain.Session, error)
	RunDelphi(ctx context.Context, problem string) (*domain.Session, error)
}

// DeliberationResult is the structured output of the deliberate tool.
type DeliberationResult struct {
	SessionID string `json:"session_id" jsonschema_description:"Id of the persisted session"`
	Status    string `json:"status" jsonschema_description:"Terminal session status"`
	Mode      string `json:"mode" jsonschema_description:"Effective mode after any escalation"`
	Escalated bool   `json:"escalated" jsonschema_description:"Whether the session escalated to full council"`
	Decision  string `json:"decision" jsonschema_description:"The synthesized decision text"`
}

// SessionListResult wraps store listings for structured output.
type SessionListResult struct {
	Sessions []ports.SessionSummary `json:"sessions"`
}

// Server wraps the executor and store behind an MCP server.
type Server struct {
	deliberator Deliberator
	store       ports.SessionStore
	mcpServer   *server.MCPServer
}

// NewServer creates the MCP server and registers its tools.
func NewServer(deliberator Deliberator, store ports.SessionStore) *Server {
	s := &Server{
		deliberator: deliberator,
		store:       store,
		mcpServer:   server.NewMCPServer("warcouncil-mcp", Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	deliberateTool := mcp.NewTool("deliberate",
		mcp.WithDescription("Run a full multi-expert deliberation over a problem statement and return the decision."),
		mcp.WithString("problem", mcp.Required(), mcp.Description("The problem statement to deliberate")),
		mcp.WithString("mode", mcp.Description("\"lightweight\" (default) or \"full_council\"")),
		mcp.WithBoolean("delphi", mcp.Description("Run the iterative Delphi variant (always full council)")),
		mcp.WithOutputSchema[DeliberationResult](),
	)
	s.mcpServer.AddTool(deliberateTool, mcp.NewStructuredToolHandler(s.handleDeliberate))

	listTool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List all known sessions, active and archived."),
		mcp.WithOutputSchema[SessionListResult](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListSessions))

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Fetch the full persisted state of one session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[domain.Session](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetSession))
}

func (s *Server) handleDeliberate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DeliberationResult, error) {
	problem, _ := args["problem"].(string)
	if problem == "" {
		return DeliberationResult{}, fmt.Errorf("problem is required")
	}

	var (
		session *domain.Session
		err     error
	)
	if delphi, _ := args["delphi"].(bool); delphi {
		session, err = s.deliberator.RunDelphi(ctx, problem)
	} else {
		mode := domain.ModeLightweight
		if m, _ := args["mode"].(string); m != "" {
			mode = domain.Mode(m)
		}
		session, err = s.deliberator.Run(ctx, problem, mode)
	}
	if session == nil {
		return DeliberationResult{}, err
	}

	// A failed deliberation is still a persisted, reportable session.
	return DeliberationResult{
		SessionID: session.ID,
		Status:    session.Status,
		Mode:      string(session.Mode),
		Escalated: session.Escalated,
		Decision:  session.Artifacts[domain.ArtifactDecision],
	}, nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionListResult, error) {
	summaries, err := s.store.List(ctx)
	if err != nil {
		return SessionListResult{}, fmt.Errorf("list sessions: %w", err)
	}
	return SessionListResult{Sessions: summaries}, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Session, error) {
	sessionID, _ := args["session_id"].(string)
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return *session, nil
}
