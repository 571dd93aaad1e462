package mcp

import (
	"context"
	"time"

	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// rangeFilter builds a session filter from optional start/end dates. Empty
// bounds stay open. A date-only end is extended to cover its whole day.
func rangeFilter(startStr, endStr string) (storage.Filter, error) {
	var f storage.Filter

	if startStr != "" {
		start, _, err := parseFlexTime(startStr)
		if err != nil {
			return f, err
		}
		f.Start = start
	}
	if endStr != "" {
		end, dateOnly, err := parseFlexTime(endStr)
		if err != nil {
			return f, err
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
		f.End = end
	}
	return f, nil
}

// parseFlexTime accepts RFC 3339 timestamps or bare dates, reporting which
// form was given.
func parseFlexTime(s string) (time.Time, bool, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List logged training sessions newest-first. Each session includes its date, time, title, and full exercise items with sets, reps, and weights."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to the beginning of the log.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD, inclusive for bare dates). Defaults to now.")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Retrieve one training session by id, including every exercise item."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Aggregate training stats over a date range: session count, total sets, total reps, and lifted volume in kg."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to the beginning of the log.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// requireOwner resolves the bound account or reports the binding error.
func requireOwner(ctx context.Context) (uuid.UUID, *mcp.CallToolResult) {
	ownerID := OwnerIDFromContext(ctx)
	if ownerID == uuid.Nil {
		return uuid.Nil, mcp.NewToolResultError("no account bound to this connection")
	}
	return ownerID, nil
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, errRes := requireOwner(ctx)
	if errRes != nil {
		return errRes, nil
	}

	f, err := rangeFilter(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.ListSessions(ctx, ownerID, f)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, errRes := requireOwner(ctx)
	if errRes != nil {
		return errRes, nil
	}

	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session id: " + err.Error()), nil
	}

	session, err := h.ds.GetSession(ctx, ownerID, id)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, errRes := requireOwner(ctx)
	if errRes != nil {
		return errRes, nil
	}

	f, err := rangeFilter(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.ListSessions(ctx, ownerID, f)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(storage.ComputeStats(sessions))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
