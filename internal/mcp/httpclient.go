package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/planport/internal/models"
)

// HTTPClient implements DataSource by calling the PlanPort REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// libraries live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListLibraries(ctx context.Context) ([]models.PMPLibrary, error) {
	body, err := c.get(ctx, "/api/v1/libraries")
	if err != nil {
		return nil, err
	}
	var libs []models.PMPLibrary
	if err := json.Unmarshal(body, &libs); err != nil {
		return nil, fmt.Errorf("httpclient: decode libraries: %w", err)
	}
	return libs, nil
}

func (c *HTTPClient) GetLibrary(ctx context.Context, id string) (*models.PMPLibrary, error) {
	body, err := c.get(ctx, "/api/v1/libraries/"+id)
	if err != nil {
		return nil, err
	}
	var lib models.PMPLibrary
	if err := json.Unmarshal(body, &lib); err != nil {
		return nil, fmt.Errorf("httpclient: decode library: %w", err)
	}
	return &lib, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, libraryID string) ([]models.PMPWorkout, error) {
	body, err := c.get(ctx, "/api/v1/libraries/"+libraryID+"/workouts")
	if err != nil {
		return nil, err
	}
	var workouts []models.PMPWorkout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}
