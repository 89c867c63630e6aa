package mcp

import (
	"context"

	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/parser"
	"github.com/google/uuid"
)

// Backend abstracts the analysis layer for MCP tools. Both *coach.Service
// (local store) and HTTPClient (remote via REST API) satisfy this interface.
type Backend interface {
	Parse(ctx context.Context, text string) (parser.Result, error)
	Strategy(ctx context.Context, athleteID uuid.UUID, text string) (*coach.Report, error)
	Movements(ctx context.Context) ([]models.Movement, error)
	Percentile(ctx context.Context, code string, value float64, gender, experience string) (*coach.PercentileResult, error)
}

// Compile-time check: *coach.Service satisfies Backend.
var _ Backend = (*coach.Service)(nil)
