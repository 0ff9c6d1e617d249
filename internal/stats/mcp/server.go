package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds the cycling MCP server on top of the given stats service.
// Used by the main backend when mounting MCP at /mcp, and by cmd/cycling_mcp over stdio.
func NewServer(service statsService) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "cycling-coach",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "agg_cycling_summary",
		Description: "Returns totals for cycling activities in a window: distance (km), duration (s), elevation gain (m), ride count and average speed (km/h). Args: start_date_iso, end_date_iso; optional user_id.",
	}, h.AggCyclingSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "ts_cycling_daily",
		Description: "Returns per-day (UTC) cycling totals for days with rides in a window. Args: start_date, end_date; optional user_id.",
	}, h.TsCyclingDailyTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "wk_cycling_summary",
		Description: "Returns ISO-week cycling totals (Monday week start) for a window. Args: start_date, end_date; optional user_id.",
	}, h.WkCyclingSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "top_rides",
		Description: "Returns the top rides in a window ordered by distance, duration, elevation or speed. Args: start_date_iso, end_date_iso; optional user_id, order_by (default distance), limit (default 10).",
	}, h.TopRidesTool())

	return s
}
