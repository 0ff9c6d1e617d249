package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/cyclingcoach/internal/stats"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// statsService computes training load views for a time window.
type statsService interface {
	Summary(ctx context.Context, window stats.Window) (stats.Summary, error)
	Daily(ctx context.Context, window stats.Window) ([]stats.DailyBucket, error)
	Weekly(ctx context.Context, window stats.Window) ([]stats.WeeklyBucket, error)
	TopRides(ctx context.Context, window stats.Window, orderBy stats.OrderBy, limit int) ([]stats.Ride, error)
}

// Handler turns MCP tool calls into stats computations and formats the results.
type Handler struct {
	service statsService
}

func NewHandler(service statsService) *Handler {
	return &Handler{
		service: service,
	}
}

// SummaryInput is the input for agg_cycling_summary.
type SummaryInput struct {
	StartDateIso string `json:"start_date_iso" jsonschema:"Inclusive ISO-8601 start (e.g. 2025-06-01T00:00:00Z)"`
	EndDateIso   string `json:"end_date_iso" jsonschema:"Exclusive ISO-8601 end"`
	UserID       string `json:"user_id,omitempty" jsonschema:"Optional athlete UUID"`
}

// DateRangeInput is the input for ts_cycling_daily and wk_cycling_summary.
type DateRangeInput struct {
	StartDate string `json:"start_date" jsonschema:"Start date (YYYY-MM-DD or ISO-8601)"`
	EndDate   string `json:"end_date" jsonschema:"Exclusive end date (YYYY-MM-DD or ISO-8601)"`
	UserID    string `json:"user_id,omitempty" jsonschema:"Optional athlete UUID"`
}

// TopRidesInput is the input for top_rides.
type TopRidesInput struct {
	StartDateIso string `json:"start_date_iso" jsonschema:"Inclusive ISO-8601 start"`
	EndDateIso   string `json:"end_date_iso" jsonschema:"Exclusive ISO-8601 end"`
	UserID       string `json:"user_id,omitempty" jsonschema:"Optional athlete UUID"`
	OrderBy      string `json:"order_by,omitempty" jsonschema:"One of distance, duration, elevation, speed (default distance)"`
	Limit        *int   `json:"limit,omitempty" jsonschema:"Number of rides to return, 1-100 (default 10)"`
}

// AggCyclingSummaryTool returns the MCP tool handler for agg_cycling_summary.
func (h *Handler) AggCyclingSummaryTool() func(context.Context, *mcp.CallToolRequest, SummaryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SummaryInput) (*mcp.CallToolResult, any, error) {
		window, err := parseWindow(in.StartDateIso, in.EndDateIso, in.UserID)
		if err != nil {
			return errorResult("Invalid arguments: " + err.Error()), nil, nil
		}
		summary, err := h.service.Summary(ctx, window)
		if err != nil {
			return errorResult("Error computing summary: " + err.Error()), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

// TsCyclingDailyTool returns the MCP tool handler for ts_cycling_daily.
func (h *Handler) TsCyclingDailyTool() func(context.Context, *mcp.CallToolRequest, DateRangeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DateRangeInput) (*mcp.CallToolResult, any, error) {
		window, err := parseWindow(in.StartDate, in.EndDate, in.UserID)
		if err != nil {
			return errorResult("Invalid arguments: " + err.Error()), nil, nil
		}
		days, err := h.service.Daily(ctx, window)
		if err != nil {
			return errorResult("Error computing daily series: " + err.Error()), nil, nil
		}
		if days == nil {
			days = []stats.DailyBucket{}
		}
		return jsonResult(stats.DailyResponse{Days: days}), nil, nil
	}
}

// WkCyclingSummaryTool returns the MCP tool handler for wk_cycling_summary.
func (h *Handler) WkCyclingSummaryTool() func(context.Context, *mcp.CallToolRequest, DateRangeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DateRangeInput) (*mcp.CallToolResult, any, error) {
		window, err := parseWindow(in.StartDate, in.EndDate, in.UserID)
		if err != nil {
			return errorResult("Invalid arguments: " + err.Error()), nil, nil
		}
		weeks, err := h.service.Weekly(ctx, window)
		if err != nil {
			return errorResult("Error computing weekly summary: " + err.Error()), nil, nil
		}
		if weeks == nil {
			weeks = []stats.WeeklyBucket{}
		}
		return jsonResult(stats.WeeklyResponse{Weeks: weeks}), nil, nil
	}
}

// TopRidesTool returns the MCP tool handler for top_rides.
func (h *Handler) TopRidesTool() func(context.Context, *mcp.CallToolRequest, TopRidesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TopRidesInput) (*mcp.CallToolResult, any, error) {
		window, err := parseWindow(in.StartDateIso, in.EndDateIso, in.UserID)
		if err != nil {
			return errorResult("Invalid arguments: " + err.Error()), nil, nil
		}
		orderBy, err := stats.ParseOrderBy(in.OrderBy)
		if err != nil {
			return errorResult("Invalid order_by: use one of distance, duration, elevation, speed"), nil, nil
		}
		limit := stats.DefaultRankingLimit
		if in.Limit != nil {
			if *in.Limit < 1 || *in.Limit > 100 {
				return errorResult("Invalid limit: must be between 1 and 100"), nil, nil
			}
			limit = *in.Limit
		}

		rides, err := h.service.TopRides(ctx, window, orderBy, limit)
		if err != nil {
			return errorResult("Error ranking rides: " + err.Error()), nil, nil
		}
		if rides == nil {
			rides = []stats.Ride{}
		}
		return jsonResult(stats.TopRidesResponse{Rides: rides}), nil, nil
	}
}

func parseWindow(startRaw, endRaw, userIDRaw string) (stats.Window, error) {
	start, err := pkg.ParseISOTime(startRaw)
	if err != nil {
		return stats.Window{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := pkg.ParseISOTime(endRaw)
	if err != nil {
		return stats.Window{}, fmt.Errorf("invalid end date: %w", err)
	}

	window := stats.Window{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return stats.Window{}, err
	}
	if userIDRaw != "" {
		userID, err := uuid.Parse(userIDRaw)
		if err != nil {
			return stats.Window{}, errors.New("invalid user_id: must be a UUID")
		}
		window.UserID = &userID
	}
	return window, nil
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
