package mcp

import (
	"net/http"

	"github.com/2beens/zenith/internal/auth"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

// NewServer builds an MCP server whose tools read the training and nutrition data of identity.
func NewServer(service insightsService, identity string) *mcp.Server {
	h := NewHandler(service, identity)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "zenith-insights",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_plan_overview",
		Description: "Returns the weekly plan progress: completed and total sessions, the next pending workout with its exercises, today's nutrition totals and the daily macro targets.",
	}, h.GetPlanOverviewTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_nutrition_day",
		Description: "Returns the meals logged on one day (YYYY-MM-DD, UTC; default today) with calorie and macro totals and the daily targets.",
	}, h.GetNutritionDayTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_muscle_volume",
		Description: "Returns training volume (weight x reps of completed sets in completed sessions) per muscle group, largest first. Optional filter: muscle_groups.",
	}, h.GetMuscleVolumeTool())

	return s
}

// NewHTTPHandler serves MCP over streamable HTTP. Every request gets a server
// bound to the identity the auth middleware resolved.
func NewHTTPHandler(service insightsService) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			log.Warnf("mcp: request without identity [%s]", r.URL.Path)
			return nil
		}
		return NewServer(service, identity)
	}, &mcp.StreamableHTTPOptions{Stateless: true, JSONResponse: true})
}
