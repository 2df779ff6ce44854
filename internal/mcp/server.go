package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PlanPort", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PlanPort workout structure server. Browse exported workout libraries, render structured workouts as interval text, and build workout builder documents from raw structure JSON."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListLibraries, Handler: h.listLibraries},
		server.ServerTool{Tool: toolGetLibraryWorkouts, Handler: h.getLibraryWorkouts},
		server.ServerTool{Tool: toolRenderWorkoutText, Handler: h.renderWorkoutText},
		server.ServerTool{Tool: toolBuildWorkoutDoc, Handler: h.buildWorkoutDoc},
		server.ServerTool{Tool: toolComposeDescription, Handler: h.composeDescription},
	)

	s.AddResources(
		server.ServerResource{Resource: resLibraryCatalog, Handler: h.libraryCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resLibraryCatalog = mcp.NewResource(
	"planport://libraries",
	"Library Catalog",
	mcp.WithResourceDescription("All workout libraries with their metadata"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) libraryCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	libs, err := h.ds.ListLibraries(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(libs)
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
