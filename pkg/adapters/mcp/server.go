// Package mcp exposes the Espalier engine as an MCP server, so agent hosts
// can drive a support flow through tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// StepResponse is the structured result shared by the session tools.
type StepResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"The session the step applied to"`
	Renders   []domain.Render `json:"renders" jsonschema_description:"Ordered render descriptors for the step"`
	Terminal  bool            `json:"terminal" jsonschema_description:"True when the session reached a terminal block"`
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    ports.Engine
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the engine.
func NewServer(engine ports.Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("espalier-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start or reset a flow session at the entry block."),
		mcp.WithString("session_id", mcp.Description("Session id to start; generated when omitted")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	pressTool := mcp.NewTool("press_button",
		mcp.WithDescription("Advance the session by pressing one of the current block's buttons."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("selector", mcp.Required(), mcp.Description("Button id (or next block id for plain messages)")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the flow graph definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := graphJSON(s.engine)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("graph export failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	renders, err := s.engine.Start(ctx, sessionID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return stepResponse(sessionID, renders), nil
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)
	selector, _ := args["selector"].(string)

	renders, err := s.engine.Advance(ctx, sessionID, selector)
	if err != nil {
		return StepResponse{}, fmt.Errorf("advance failed: %w", err)
	}
	return stepResponse(sessionID, renders), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("espalier://graph", "Current Flow Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := graphJSON(s.engine)
		if err != nil {
			return nil, fmt.Errorf("failed to export graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func stepResponse(sessionID string, renders []domain.Render) StepResponse {
	terminal := len(renders) > 0 && renders[len(renders)-1].Terminal
	return StepResponse{SessionID: sessionID, Renders: renders, Terminal: terminal}
}

func graphJSON(engine ports.Engine) ([]byte, error) {
	f := engine.Flow()
	type edge struct {
		From     string `json:"from"`
		To       string `json:"to"`
		ButtonID string `json:"button_id,omitempty"`
	}
	var edges []edge
	for _, b := range f.Blocks() {
		switch blk := b.(type) {
		case *domain.Message:
			if blk.Next != "" {
				edges = append(edges, edge{From: blk.ID, To: blk.Next})
			}
		case *domain.Menu:
			for _, btn := range blk.Buttons {
				edges = append(edges, edge{From: blk.ID, To: btn.Next, ButtonID: btn.ID})
			}
		case *domain.MesMenu:
			edges = append(edges, edge{From: blk.ID, To: blk.Button.Next, ButtonID: blk.Button.ID})
		}
	}
	return json.Marshal(map[string]any{
		"flow_id": f.ID(),
		"entry":   f.Entry(),
		"blocks":  blockIDs(f),
		"edges":   edges,
	})
}

func blockIDs(f interface{ Blocks() []domain.Block }) []string {
	blocks := f.Blocks()
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.BlockID()
	}
	return ids
}
