package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HostManager
}

// validationResult is the output of validate_chart_config.
type validationResult struct {
	Valid         bool             `json:"valid"`
	Message       string           `json:"message,omitempty"`
	Kind          schema.ChartKind `json:"kind"`
	StaticSeries  int              `json:"static_series"`
	DynamicSeries bool             `json:"dynamic_series"`
}

// chartDataResult is the output of get_chart_data.
type chartDataResult struct {
	RecordID string                `json:"record_id"`
	Kind     schema.ChartKind      `json:"kind"`
	Series   []schema.SeriesResult `json:"series"`
	Points   int                   `json:"points"`
}

// chartConfig clones the base config and applies the optional YAML chart definition.
func (h *toolHandler) chartConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if text := request.GetString("config", ""); text != "" {
		if err := contract.ProcessChartText(cfg, text); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (h *toolHandler) handleValidateChartConfig(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.chartConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid chart config: %v", err)), nil
	}

	message := core.ValidateChart(&cfg.Chart)
	result := validationResult{
		Valid:         message == "",
		Message:       message,
		Kind:          cfg.Chart.Kind,
		StaticSeries:  len(cfg.Chart.Series),
		DynamicSeries: cfg.Chart.Dynamic != nil,
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleParseStyle(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	style := request.GetString("style", "")
	if style == "" {
		return mcp.NewToolResultError("style is required"), nil
	}

	jsonData, _ := json.MarshalIndent(core.ParseStyle(style), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetChartData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordID := request.GetString("record_id", "")
	if recordID == "" {
		return mcp.NewToolResultError("record_id is required"), nil
	}
	cfg, err := h.chartConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid chart config: %v", err)), nil
	}
	if k := request.GetString("kind", ""); k != "" {
		cfg.Chart.Kind = schema.ChartKind(k)
	}
	if message := core.ValidateChart(&cfg.Chart); message != "" {
		return mcp.NewToolResultError(message), nil
	}
	if h.mgr == nil || h.mgr.GetHost() == nil {
		return mcp.NewToolResultError(core.ErrNoHost.Error()), nil
	}

	ds, err := core.NewPipeline(h.mgr.GetHost()).Collect(ctx, &cfg.Chart, recordID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("collection failed: %v", err)), nil
	}

	series := ds.Series
	if series == nil {
		series = []schema.SeriesResult{}
	}
	result := chartDataResult{RecordID: recordID, Kind: ds.Kind, Series: series, Points: ds.PointCount()}
	jsonData, _ := json.MarshalIndent(result, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetHostStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil {
		return mcp.NewToolResultError(core.ErrNoHost.Error()), nil
	}
	status, err := h.mgr.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
