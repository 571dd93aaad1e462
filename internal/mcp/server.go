// Package mcp exposes the training log to language-model tooling over the
// Model Context Protocol: query tools for sessions and aggregate stats, plus
// a recent-sessions resource.
package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const ownerIDKey contextKey = iota

// OwnerIDFromContext extracts the account id injected by the transport layer.
// The nil UUID means no account is bound.
func OwnerIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ownerIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithOwnerID returns a context with the given account id.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// DataSource is the read-only slice of the store the MCP surface needs.
type DataSource interface {
	ListSessions(ctx context.Context, ownerID uuid.UUID, f storage.Filter) ([]models.TrainingSession, error)
	GetSession(ctx context.Context, ownerID, id uuid.UUID) (*models.TrainingSession, error)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepLog training log server. Query logged training sessions, their exercises, and aggregate training stats. All data is scoped to the bound account."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resRecentSessions = mcp.NewResource(
	"replog://recent_sessions",
	"Recent Training Sessions",
	mcp.WithResourceDescription("Training sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
