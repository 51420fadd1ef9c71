// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Chartwire MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HostManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Chartwire Chart Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: validate_chart_config ---
	s.AddTool(mcp.NewTool("validate_chart_config",
		mcp.WithDescription("Validate a chart definition and return the configuration message shown instead of the chart, if any."),
		mcp.WithString("config", mcp.Description("Chart definition in YAML, either a full config file with a 'chart' key or the chart keys alone. Defaults to the configured chart.")),
	), h.handleValidateChartConfig)

	// --- 2. Tool: parse_style ---
	s.AddTool(mcp.NewTool("parse_style",
		mcp.WithDescription("Parse an inline CSS style string into camelCase style properties."),
		mcp.WithString("style", mcp.Description("Style text such as 'background-color: #fff; font-size: 12px'."), mcp.Required()),
	), h.handleParseStyle)

	// --- 3. Tool: get_chart_data ---
	s.AddTool(mcp.NewTool("get_chart_data",
		mcp.WithDescription("Run one pipeline cycle for a record and return the ordered chart dataset."),
		mcp.WithString("record_id", mcp.Description("The record the chart is bound to."), mcp.Required()),
		mcp.WithString("config", mcp.Description("Chart definition in YAML. Defaults to the configured chart.")),
		mcp.WithString("kind", mcp.Description("Override the chart kind."), mcp.Enum("bar", "line", "pie")),
	), h.handleGetChartData)

	// --- 4. Tool: get_host_status ---
	s.AddTool(mcp.NewTool("get_host_status",
		mcp.WithDescription("Report the host data source backend, schema version and active watches."),
	), h.handleGetHostStatus)

	return s
}

// StartMCPServer starts the Chartwire MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HostManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
