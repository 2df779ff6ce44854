package mcp

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/storage"
)

// fakeSource is an in-memory DataSource for tool handler tests.
type fakeSource struct {
	libraries []models.PMPLibrary
	workouts  map[string][]models.PMPWorkout
}

func (f *fakeSource) ListLibraries(ctx context.Context) ([]models.PMPLibrary, error) {
	return f.libraries, nil
}

func (f *fakeSource) GetLibrary(ctx context.Context, id string) (*models.PMPLibrary, error) {
	for i := range f.libraries {
		if f.libraries[i].ID == id {
			return &f.libraries[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeSource) ListWorkouts(ctx context.Context, libraryID string) ([]models.PMPWorkout, error) {
	return f.workouts[libraryID], nil
}

func testHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

const structureJSON = `{
	"primaryIntensityMetric": "percentOfFtp",
	"structure": [
		{"type": "step", "steps": [
			{"name": "Warm up", "intensityClass": "warmUp",
			 "length": {"unit": "minute", "value": 10}}
		]},
		{"type": "repetition", "length": {"unit": "repetition", "value": 3}, "steps": [
			{"name": "Hard", "intensityClass": "active",
			 "length": {"unit": "second", "value": 120},
			 "targets": [{"minValue": 105, "maxValue": 120}]}
		]}
	]
}`

func TestRenderWorkoutTextTool(t *testing.T) {
	h := testHandlers(&fakeSource{})

	result, err := h.renderWorkoutText(context.Background(), callReq(map[string]any{
		"structure": structureJSON,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"- Warm up 10m intensity=warmup", "3x", "- Hard 2m 105-120%"} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered text missing %q:\n%s", want, text)
		}
	}
}

func TestRenderWorkoutTextToolErrors(t *testing.T) {
	h := testHandlers(&fakeSource{})

	result, _ := h.renderWorkoutText(context.Background(), callReq(map[string]any{}))
	if !result.IsError {
		t.Error("missing structure should be a tool error")
	}

	result, _ = h.renderWorkoutText(context.Background(), callReq(map[string]any{
		"structure": "{not json",
	}))
	if !result.IsError {
		t.Error("invalid JSON should be a tool error")
	}

	result, _ = h.renderWorkoutText(context.Background(), callReq(map[string]any{
		"structure": `{"structure": []}`,
	}))
	if !result.IsError {
		t.Error("empty structure should be a tool error")
	}
}

func TestBuildWorkoutDocTool(t *testing.T) {
	h := testHandlers(&fakeSource{})

	result, err := h.buildWorkoutDoc(context.Background(), callReq(map[string]any{
		"structure": structureJSON,
		"sport":     "Ride",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{`"sportHint":"Ride"`, `"repeatCount":3`, `"power_pct_ftp"`} {
		if !strings.Contains(text, want) {
			t.Errorf("doc JSON missing %q:\n%s", want, text)
		}
	}
}

func TestComposeDescriptionTool(t *testing.T) {
	h := testHandlers(&fakeSource{})

	result, err := h.composeDescription(context.Background(), callReq(map[string]any{
		"description":    "Steady effort.",
		"coach_comments": "Fuel early.",
	}))
	if err != nil {
		t.Fatal(err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Steady effort.") {
		t.Errorf("missing description: %q", text)
	}
	if !strings.Contains(text, "Coach Notes:\nFuel early.") {
		t.Errorf("missing coach notes: %q", text)
	}
}

func TestGetLibraryWorkoutsTool(t *testing.T) {
	ds := &fakeSource{
		libraries: []models.PMPLibrary{{ID: "lib-1", Name: "My Library"}},
		workouts: map[string][]models.PMPWorkout{
			"lib-1": {{ID: "w1", Name: "Sweet spot", Type: "Ride", SourceID: "src-1"}},
		},
	}
	h := testHandlers(ds)

	result, err := h.getLibraryWorkouts(context.Background(), callReq(map[string]any{
		"library_id": "lib-1",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, "Sweet spot") {
		t.Errorf("workout list missing entry: %s", text)
	}

	result, _ = h.getLibraryWorkouts(context.Background(), callReq(map[string]any{
		"library_id": "nope",
	}))
	if !result.IsError {
		t.Error("unknown library should be a tool error")
	}
}
