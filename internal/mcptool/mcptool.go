// Package mcptool exposes the reachability checker to MCP clients as a single tool.
package mcptool

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mozilla-ai/urlprobe/internal/api"
	"github.com/mozilla-ai/urlprobe/internal/contracts"
)

const (
	// ToolName is the name MCP clients use to call the checker.
	ToolName = "check_url"

	// argURL is the only argument accepted by the tool.
	argURL = "url"
)

// NewCheckURLTool describes the check_url tool.
func NewCheckURLTool() mcp.Tool {
	return mcp.NewTool(
		ToolName,
		mcp.WithDescription("Check whether a website URL is reachable. "+
			"The scheme is optional, https is assumed when it is omitted."),
		mcp.WithString(
			argURL,
			mcp.Required(),
			mcp.Description("Website URL to check, e.g. example.com or https://example.com/path"),
		),
	)
}

// NewServer creates an MCP server offering the check_url tool.
func NewServer(logger hclog.Logger, checker contracts.ReachabilityChecker, name string, version string) (*server.MCPServer, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if checker == nil || reflect.ValueOf(checker).IsNil() {
		return nil, fmt.Errorf("checker cannot be nil")
	}

	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(NewCheckURLTool(), handleCheckURL(logger.Named("mcp"), checker))

	return s, nil
}

// NewHTTPHandler serves s over the MCP streamable HTTP transport.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

func handleCheckURL(logger hclog.Logger, checker contracts.ReachabilityChecker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawURL, err := req.RequireString(argURL)
		if err != nil || strings.TrimSpace(rawURL) == "" {
			return mcp.NewToolResultError(api.MessageMissingURL), nil
		}

		result := checker.Check(ctx, rawURL)
		logger.Debug("Tool call completed", "tool", ToolName, "url", result.URL, "verdict", result.Verdict)

		if result.Reachable() {
			return mcp.NewToolResultText(api.MessageReachable), nil
		}

		return mcp.NewToolResultText(api.MessageUnreachable), nil
	}
}
