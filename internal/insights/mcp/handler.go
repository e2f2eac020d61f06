package mcp

import (
	"context"
	"encoding/json"

	"github.com/2beens/zenith/internal/insights"
	"github.com/2beens/zenith/internal/training"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type insightsService interface {
	Dashboard(ctx context.Context, identity string) (insights.Dashboard, error)
	MuscleVolume(ctx context.Context, identity string, filter []training.MuscleGroup) (insights.VolumeReport, error)
	NutritionDay(ctx context.Context, identity, day string) (insights.NutritionDay, error)
}

// Handler answers tool calls for one identity.
type Handler struct {
	service  insightsService
	identity string
}

func NewHandler(service insightsService, identity string) *Handler {
	return &Handler{
		service:  service,
		identity: identity,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// GetPlanOverviewTool returns the MCP tool handler for get_plan_overview.
func (h *Handler) GetPlanOverviewTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		dashboard, err := h.service.Dashboard(ctx, h.identity)
		if err != nil {
			return errorResult("Error fetching plan overview: " + err.Error()), nil, nil
		}
		return jsonResult(dashboard), nil, nil
	}
}

// NutritionDayInput is the input for get_nutrition_day.
type NutritionDayInput struct {
	Day string `json:"day,omitempty" jsonschema:"Day as YYYY-MM-DD (UTC); empty or 'today' for the current day"`
}

// GetNutritionDayTool returns the MCP tool handler for get_nutrition_day.
func (h *Handler) GetNutritionDayTool() func(context.Context, *mcp.CallToolRequest, NutritionDayInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in NutritionDayInput) (*mcp.CallToolResult, any, error) {
		day, err := h.service.NutritionDay(ctx, h.identity, in.Day)
		if err != nil {
			return errorResult("Error fetching nutrition day: " + err.Error()), nil, nil
		}
		// images are served over HTTP, the links are noise here
		for i := range day.Logs {
			day.Logs[i].Image = ""
		}
		return jsonResult(day), nil, nil
	}
}

// MuscleVolumeInput is the input for get_muscle_volume.
type MuscleVolumeInput struct {
	MuscleGroups []string `json:"muscle_groups,omitempty" jsonschema:"Only these muscle groups (e.g. Chest, Legs); empty for all"`
}

// GetMuscleVolumeTool returns the MCP tool handler for get_muscle_volume.
func (h *Handler) GetMuscleVolumeTool() func(context.Context, *mcp.CallToolRequest, MuscleVolumeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MuscleVolumeInput) (*mcp.CallToolResult, any, error) {
		report, err := h.service.MuscleVolume(ctx, h.identity, insights.ParseGroupFilter(in.MuscleGroups))
		if err != nil {
			return errorResult("Error fetching muscle volume: " + err.Error()), nil, nil
		}
		return jsonResult(report), nil, nil
	}
}
