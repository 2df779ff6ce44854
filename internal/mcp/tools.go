package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/structure"
)

// --- Tool definitions ---

var toolListLibraries = mcp.NewTool("list_libraries",
	mcp.WithDescription("List all workout libraries with their metadata (name, owner, source id, timestamps)."),
)

var toolGetLibraryWorkouts = mcp.NewTool("get_library_workouts",
	mcp.WithDescription("List all workouts in a library, including type, intensity metric, planned TSS/duration, and the structured workout document."),
	mcp.WithString("library_id", mcp.Required(), mcp.Description("Library id as returned by list_libraries")),
)

var toolRenderWorkoutText = mcp.NewTool("render_workout_text",
	mcp.WithDescription("Render a raw nested workout structure as human-readable interval notation (one '- ' line per step, repetitions as 'Nx')."),
	mcp.WithString("structure", mcp.Required(), mcp.Description("Workout structure JSON (structure entries plus primaryIntensityMetric/primaryLengthMetric)")),
)

var toolBuildWorkoutDoc = mcp.NewTool("build_workout_doc",
	mcp.WithDescription("Convert a raw nested workout structure into a workout builder document: sections with repeat counts, typed intensity targets, and cadence targets."),
	mcp.WithString("structure", mcp.Required(), mcp.Description("Workout structure JSON")),
	mcp.WithString("sport", mcp.Description("Sport hint for the document (e.g. Ride, Run). Defaults to Other.")),
)

var toolComposeDescription = mcp.NewTool("compose_description",
	mcp.WithDescription("Compose a destination description from rendered interval text, a workout description, and coach comments (separated and labeled)."),
	mcp.WithString("structure", mcp.Description("Workout structure JSON to render as interval text")),
	mcp.WithString("description", mcp.Description("Workout description")),
	mcp.WithString("coach_comments", mcp.Description("Coach comments, appended behind a separator")),
)

// --- Tool handlers ---

func (h *handlers) listLibraries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	libs, err := h.ds.ListLibraries(ctx)
	if err != nil {
		h.log.Error("mcp list_libraries", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(libs)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getLibraryWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	libraryID, err := req.RequireString("library_id")
	if err != nil {
		return mcp.NewToolResultError("library_id parameter is required"), nil
	}

	if _, err := h.ds.GetLibrary(ctx, libraryID); err != nil {
		return mcp.NewToolResultError("library lookup failed: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, libraryID)
	if err != nil {
		h.log.Error("mcp get_library_workouts", "library_id", libraryID, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) renderWorkoutText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, errResult := parseStructureArg(req, true)
	if errResult != nil {
		return errResult, nil
	}

	text, ok := structure.RenderText(ws)
	if !ok {
		return mcp.NewToolResultError("no parsable workout structure"), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (h *handlers) buildWorkoutDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, errResult := parseStructureArg(req, true)
	if errResult != nil {
		return errResult, nil
	}

	sport := req.GetString("sport", "Other")
	doc, ok := structure.BuildWorkoutDoc(ws, sport)
	if !ok {
		return mcp.NewToolResultError("no parsable workout structure"), nil
	}

	result, err := mcp.NewToolResultJSON(doc)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) composeDescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, errResult := parseStructureArg(req, false)
	if errResult != nil {
		return errResult, nil
	}

	var rendered string
	if ws != nil {
		rendered, _ = structure.RenderText(ws)
	}

	composed := structure.ComposeDescription(rendered,
		req.GetString("description", ""),
		req.GetString("coach_comments", ""))
	return mcp.NewToolResultText(composed), nil
}

// parseStructureArg decodes the "structure" tool argument. When required is
// false a missing argument yields (nil, nil).
func parseStructureArg(req mcp.CallToolRequest, required bool) (*models.WorkoutStructure, *mcp.CallToolResult) {
	raw := req.GetString("structure", "")
	if raw == "" {
		if required {
			return nil, mcp.NewToolResultError("structure parameter is required")
		}
		return nil, nil
	}

	var ws models.WorkoutStructure
	if err := json.Unmarshal([]byte(raw), &ws); err != nil {
		return nil, mcp.NewToolResultError("invalid structure JSON: " + err.Error())
	}
	return &ws, nil
}
