package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ownerID := OwnerIDFromContext(ctx)
	if ownerID == uuid.Nil {
		return nil, errors.New("no account bound to this connection")
	}

	end := time.Now()
	start := end.AddDate(0, 0, -14)

	sessions, err := h.ds.ListSessions(ctx, ownerID, storage.Filter{Start: start, End: end})
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
