package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
)

func newTestServer() (*Server, repository.MatchRegistry) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	registry := repository.NewMatchRegistry()
	router := usecase.NewCommandRouter(logger, registry, usecase.DefaultSettings)

	return New(logger, router), registry
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	switch content := result.Content[0].(type) {
	case mcp.TextContent:
		return content.Text
	case *mcp.TextContent:
		return content.Text
	default:
		t.Fatalf("unexpected content type %T", content)
		return ""
	}
}

func TestServer_Tools(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays a match through tool calls", func(t *testing.T) {
		srv, registry := newTestServer()

		// When: alice starts a 3x3 match and places a marker
		result, err := srv.handleNewMatch(ctx, callRequest("new_match", map[string]interface{}{
			"user": "alice", "opponent": "bob", "size": float64(3),
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "🔴 = alice")

		result, err = srv.handleMove(ctx, callRequest("move", map[string]interface{}{
			"user": "alice", "row": float64(2), "col": float64(2),
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		// Then: state shows the move and bob's turn
		result, err = srv.handleState(ctx, callRequest("state", map[string]interface{}{"user": "bob"}))
		require.NoError(t, err)
		text := resultText(t, result)
		assert.Contains(t, text, "⚪️🔴⚪️")
		assert.True(t, strings.HasSuffix(text, "Turn: 🔵 bob"))

		// And: ending the match frees both users
		result, err = srv.handleEndMatch(ctx, callRequest("end_match", map[string]interface{}{"user": "bob"}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		_, err = registry.Find("alice")
		require.ErrorIs(t, err, apperror.ErrNoActiveMatch)
	})

	t.Run("Default size", func(t *testing.T) {
		srv, registry := newTestServer()

		_, err := srv.handleNewMatch(ctx, callRequest("new_match", map[string]interface{}{"user": "alice", "opponent": "bob"}))
		require.NoError(t, err)

		match, err := registry.Find("bob")
		require.NoError(t, err)
		assert.Equal(t, 3, match.Size())
	})

	t.Run("Engine errors become tool errors", func(t *testing.T) {
		srv, _ := newTestServer()

		result, err := srv.handleMove(ctx, callRequest("move", map[string]interface{}{
			"user": "alice", "row": float64(1), "col": float64(1),
		}))

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "You're not in a game!", resultText(t, result))
	})

	t.Run("Missing opponent is rejected", func(t *testing.T) {
		srv, registry := newTestServer()

		result, err := srv.handleNewMatch(ctx, callRequest("new_match", map[string]interface{}{"user": "alice"}))

		require.NoError(t, err)
		assert.True(t, result.IsError)
		_, err = registry.Find("alice")
		require.ErrorIs(t, err, apperror.ErrNoActiveMatch)
	})

	t.Run("Fractional coordinates are rejected", func(t *testing.T) {
		srv, _ := newTestServer()

		result, err := srv.handleMove(ctx, callRequest("move", map[string]interface{}{
			"user": "alice", "row": 1.5, "col": float64(1),
		}))

		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestServer_Handler(t *testing.T) {
	srv, _ := newTestServer()
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	t.Run("Initialize over HTTP", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

		resp, err := http.Post(httpSrv.URL, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	})

	t.Run("Rejects GET", func(t *testing.T) {
		resp, err := http.Get(httpSrv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
