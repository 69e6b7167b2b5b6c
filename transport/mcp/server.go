package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/command"
)

const (
	serverName    = "tictactoe"
	serverVersion = "1.0.0"
	maxBodySize   = 1 << 20
)

type commandDispatcher interface {
	Dispatch(ctx context.Context, sender string, cmd command.Command) (string, error)
	ErrorText(err error) string
	DefaultSize() int
}

// Server exposes the chat commands as MCP tools. Every tool acts on behalf of the
// "user" argument, the same way a chat message acts on behalf of its sender.
type Server struct {
	logger     *slog.Logger
	dispatcher commandDispatcher
	mcpServer  *server.MCPServer
}

func New(logger *slog.Logger, dispatcher commandDispatcher) *Server {
	that := &Server{
		logger:     logger.With("component", "mcp"),
		dispatcher: dispatcher,
	}

	that.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tic-tac-toe on an N×N board between two users.
Start with new_match, then alternate move calls; the creator moves first.
Rows and columns start at 1. A full row, column or diagonal wins.`),
	)

	that.registerTools()

	return that
}

// Handler serves JSON-RPC messages posted to the MCP endpoint.
func (that *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := that.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(response); err != nil {
			that.logger.Error("failed to write mcp response", "error", err)
		}
	})
}

func (that *Server) registerTools() {
	user := map[string]interface{}{
		"type":        "string",
		"description": "Handle of the user issuing the command",
	}

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "new_match",
		Description: "Start a match against an opponent. The user moves first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": user,
				"opponent": map[string]interface{}{
					"type":        "string",
					"description": "Handle of the opponent",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Board size, the configured default when omitted",
				},
			},
			Required: []string{"user", "opponent"},
		},
	}, that.handleNewMatch)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Place the user's marker at a 1-based row and column",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": user,
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row, starting at 1",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column, starting at 1",
				},
			},
			Required: []string{"user", "row", "col"},
		},
	}, that.handleMove)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "end_match",
		Description: "End the user's current match",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"user": user},
			Required:   []string{"user"},
		},
	}, that.handleEndMatch)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "state",
		Description: "Render the user's current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"user": user},
			Required:   []string{"user"},
		},
	}, that.handleState)
}

func (that *Server) handleNewMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	size := that.dispatcher.DefaultSize()
	if _, ok := args["size"]; ok {
		var valid bool
		if size, valid = intArg(args, "size"); !valid {
			return mcp.NewToolResultError("size must be an integer"), nil
		}
	}

	opponent, _ := args["opponent"].(string)

	return that.dispatch(ctx, args, command.NewMatch{Opponent: opponent, Size: size})
}

func (that *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	row, rowOK := intArg(args, "row")
	col, colOK := intArg(args, "col")
	if !rowOK || !colOK {
		return mcp.NewToolResultError("row and col must be integers"), nil
	}

	return that.dispatch(ctx, args, command.Move{Row: row, Col: col})
}

func (that *Server) handleEndMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return that.dispatch(ctx, arguments(request), command.EndMatch{})
}

func (that *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return that.dispatch(ctx, arguments(request), command.State{})
}

func (that *Server) dispatch(ctx context.Context, args map[string]interface{}, cmd command.Command) (*mcp.CallToolResult, error) {
	sender, _ := args["user"].(string)

	text, err := that.dispatcher.Dispatch(ctx, sender, cmd)
	if err != nil {
		that.logger.Info("tool call rejected", "tool", cmd.Name(), "user", sender, "error", err)
		return mcp.NewToolResultError(that.dispatcher.ErrorText(err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// intArg accepts JSON numbers that hold whole values.
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
