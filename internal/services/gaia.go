package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/world"
)

const (
	generateWorldPath = "/api/generate-world"
	npcDialoguePath   = "/api/npc-dialogue"

	// World generation runs a large model end to end; dialogue turns are
	// a single completion.
	worldGenTimeout = 120 * time.Second
	dialogueTimeout = 30 * time.Second

	// Edge limits enforced by the backend; checked here to fail fast.
	MinStoryLength   = 10
	MinEndGoalLength = 5
)

// GaiaService is the HTTP client for the Open Gaia backend, which exposes
// world generation and NPC dialogue as JSON endpoints. The backend is a
// black box; this client validates nothing beyond transport-level success.
type GaiaService struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ WorldService    = (*GaiaService)(nil)
	_ DialogueService = (*GaiaService)(nil)
)

// NewGaiaService creates a backend client for the given base URL.
func NewGaiaService(baseURL string, logger *slog.Logger) *GaiaService {
	return &GaiaService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: worldGenTimeout,
		},
		logger: logger,
	}
}

type generateWorldRequest struct {
	Story   string `json:"story"`
	EndGoal string `json:"end_goal"`
}

type generateWorldResponse struct {
	GameBible *world.World `json:"game_bible"`
}

// GenerateWorld requests a new game bible from the backend.
func (g *GaiaService) GenerateWorld(ctx context.Context, story, endGoal string) (*world.World, error) {
	if len(story) < MinStoryLength {
		return nil, fmt.Errorf("story premise must be at least %d characters", MinStoryLength)
	}
	if len(endGoal) < MinEndGoalLength {
		return nil, fmt.Errorf("end goal must be at least %d characters", MinEndGoalLength)
	}

	ctx, cancel := context.WithTimeout(ctx, worldGenTimeout)
	defer cancel()

	var resp generateWorldResponse
	if err := g.post(ctx, generateWorldPath, generateWorldRequest{Story: story, EndGoal: endGoal}, &resp); err != nil {
		return nil, err
	}
	if resp.GameBible == nil {
		return nil, fmt.Errorf("backend returned no game bible")
	}
	return resp.GameBible, nil
}

// GenerateTurn sends one dialogue exchange to the backend.
func (g *GaiaService) GenerateTurn(ctx context.Context, req *dialogue.TurnRequest) (*dialogue.TurnResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, dialogueTimeout)
	defer cancel()

	var resp dialogue.TurnResponse
	if err := g.post(ctx, npcDialoguePath, req, &resp); err != nil {
		return nil, err
	}
	if resp.NPCResponse == "" {
		return nil, fmt.Errorf("backend returned empty npc response")
	}
	return &resp, nil
}

// post marshals body, issues the request, and unmarshals into out.
func (g *GaiaService) post(ctx context.Context, path string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	g.logger.Debug("backend request completed",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
