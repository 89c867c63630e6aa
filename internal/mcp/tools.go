package mcp

import (
	"context"
	"errors"

	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/strategy"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolParseWorkout = mcp.NewTool("parse_workout",
	mcp.WithDescription("Parse a free-text workout (e.g. '21-15-9 For Time\\nThrusters 95/65 lb\\nPull-ups') into structured form. Returns workout type, movements with reps/loads/distances, a 0-100 confidence score, and errors/warnings/infos with suggestions."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Workout text, one movement per line")),
)

var toolWorkoutStrategy = mcp.NewTool("workout_strategy",
	mcp.WithDescription("Build an athlete-specific strategy for a workout: per-movement pacing and set breakdowns, volume and load scaling, a finish time or rounds estimate, EMOM feasibility, difficulty, key focus movements and alerts."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Workout text, one movement per line")),
	mcp.WithString("athlete_id", mcp.Description("Athlete UUID. Defaults to the athlete configured for this server.")),
)

var toolListMovements = mcp.NewTool("list_movements",
	mcp.WithDescription("List catalog movements the parser recognizes, optionally filtered by category."),
	mcp.WithString("category", mcp.Description("Filter by category"), mcp.Enum("weightlifting", "gymnastics", "cardio", "bodyweight")),
)

var toolCalculatePercentile = mcp.NewTool("calculate_percentile",
	mcp.WithDescription("Rank a benchmark result (e.g. back_squat_1rm 140 kg, fran 290 s) against population percentile tables. Times are in seconds, weights in kg."),
	mcp.WithString("benchmark", mcp.Required(), mcp.Description("Benchmark code (e.g. back_squat_1rm, fran, row_2k, max_pullups)")),
	mcp.WithNumber("value", mcp.Required(), mcp.Description("Result value in the benchmark's unit")),
	mcp.WithString("gender", mcp.Description("Selects a gender-specific table when available"), mcp.Enum("male", "female")),
	mcp.WithString("experience", mcp.Description("Selects an experience-specific table when available"), mcp.Enum("beginner", "intermediate", "advanced", "elite")),
)

// --- Tool handlers ---

func (h *handlers) parseWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	res, err := h.b.Parse(ctx, text)
	if err != nil {
		h.log.Error("mcp parse_workout", "error", err)
		return mcp.NewToolResultError("parse failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) workoutStrategy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	id, ok := AthleteIDFromContext(ctx)
	if raw := req.GetString("athlete_id", ""); raw != "" {
		id, err = uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid athlete_id: " + err.Error()), nil
		}
		ok = true
	}
	if !ok {
		return mcp.NewToolResultError("athlete_id is required (no default athlete configured)"), nil
	}

	rep, err := h.b.Strategy(ctx, id, text)
	switch {
	case errors.Is(err, coach.ErrAthleteNotFound):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.Is(err, strategy.ErrInvalidWorkout):
		// The parse diagnostics explain what to fix.
		result, jerr := mcp.NewToolResultJSON(rep)
		if jerr != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		result.IsError = true
		return result, nil
	case err != nil:
		h.log.Error("mcp workout_strategy", "athlete_id", id, "error", err)
		return mcp.NewToolResultError("strategy failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rep)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listMovements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	movements, err := h.b.Movements(ctx)
	if err != nil {
		h.log.Error("mcp list_movements", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if category := req.GetString("category", ""); category != "" {
		filtered := movements[:0]
		for _, m := range movements {
			if string(m.Category) == category {
				filtered = append(filtered, m)
			}
		}
		movements = filtered
	}

	result, err := mcp.NewToolResultJSON(movements)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) calculatePercentile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("benchmark")
	if err != nil {
		return mcp.NewToolResultError("benchmark parameter is required"), nil
	}
	value, err := req.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError("value parameter is required"), nil
	}

	res, err := h.b.Percentile(ctx, code, value, req.GetString("gender", ""), req.GetString("experience", ""))
	switch {
	case errors.Is(err, coach.ErrUnknownBenchmark), errors.Is(err, coach.ErrNoPercentileTable):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		h.log.Error("mcp calculate_percentile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
