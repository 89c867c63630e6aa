package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const athleteIDKey contextKey = iota

// AthleteIDFromContext returns the default athlete injected by the transport
// layer, if any.
func AthleteIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(athleteIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithAthleteID returns a context carrying a default athlete for tools that
// take an optional athlete_id.
func WithAthleteID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, athleteIDKey, id)
}

// New creates an MCP server with all tools and resources registered.
func New(b Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("WODCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("WODCoach workout analysis server. Parse free-text workouts into structured form with confidence scores and diagnostics, build athlete-specific pacing, volume and time strategies, and rank benchmark results against population percentiles."),
	)

	h := &handlers{b: b, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolParseWorkout, Handler: h.parseWorkout},
		server.ServerTool{Tool: toolWorkoutStrategy, Handler: h.workoutStrategy},
		server.ServerTool{Tool: toolListMovements, Handler: h.listMovements},
		server.ServerTool{Tool: toolCalculatePercentile, Handler: h.calculatePercentile},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resMovementCatalog, Handler: h.movementCatalog},
		server.ServerResource{Resource: resIssueCodes, Handler: h.issueCodes},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	b   Backend
	log *slog.Logger
}

// --- Resource definitions ---

var resMovementCatalog = mcp.NewResource(
	"wodcoach://movement_catalog",
	"Movement Catalog",
	mcp.WithResourceDescription("All catalog movements with aliases, categories and whether they take a load"),
	mcp.WithMIMEType("application/json"),
)

var resIssueCodes = mcp.NewResource(
	"wodcoach://issue_codes",
	"Parser Issue Codes",
	mcp.WithResourceDescription("Every diagnostic code the workout parser can report, with severity and group"),
	mcp.WithMIMEType("application/json"),
)
