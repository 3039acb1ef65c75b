package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/opengaia/gaia-engine/internal/services"
	"github.com/opengaia/gaia-engine/pkg/state"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// CreateWorldRequest carries the player's story premise.
type CreateWorldRequest struct {
	Story   string `json:"story"`
	EndGoal string `json:"end_goal"`
}

// CreateWorldResponse returns the validated, loaded bible.
type CreateWorldResponse struct {
	SessionID string       `json:"session_id"`
	World     *world.World `json:"world"`
}

// SessionResponse is the GET view of the current playthrough.
type SessionResponse struct {
	SessionID      string                    `json:"session_id"`
	WorldTitle     string                    `json:"world_title,omitempty"`
	CompletedTasks []string                  `json:"completed_tasks"`
	NPCStates      map[string]state.NPCState `json:"npc_states"`
}

// WorldHandler generates and loads worlds (POST) and exposes the session
// snapshot (GET). One session per process; the engine is single-player.
type WorldHandler struct {
	session  *state.Session
	worldGen services.WorldService
	logger   *slog.Logger
}

func NewWorldHandler(session *state.Session, worldGen services.WorldService, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{
		session:  session,
		worldGen: worldGen,
		logger:   logger,
	}
}

func (h *WorldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use POST to create a world or GET to read the session.")
	}
}

func (h *WorldHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'story' and 'end_goal' fields.")
		return
	}
	if len(req.Story) < services.MinStoryLength {
		writeError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("Story premise must be at least %d characters.", services.MinStoryLength))
		return
	}
	if len(req.EndGoal) < services.MinEndGoalLength {
		writeError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("End goal must be at least %d characters.", services.MinEndGoalLength))
		return
	}

	generated, err := h.worldGen.GenerateWorld(r.Context(), req.Story, req.EndGoal)
	if err != nil {
		h.logger.Error("World generation failed", "error", err)
		writeError(w, h.logger, http.StatusBadGateway, "World generation failed. Please try again.")
		return
	}

	// Reject before loading: a malformed bible never partially loads.
	if err := h.session.LoadWorld(generated); err != nil {
		h.logger.Error("Generated world rejected", "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.logger.Info("World loaded",
		"session_id", h.session.ID().String(),
		"title", generated.Summary.Title,
		"characters", len(generated.Characters),
		"tasks", len(generated.Tasks))

	writeJSON(w, h.logger, http.StatusCreated, CreateWorldResponse{
		SessionID: h.session.ID().String(),
		World:     generated,
	})
}

func (h *WorldHandler) handleGet(w http.ResponseWriter, _ *http.Request) {
	snap := h.session.Snapshot()
	writeJSON(w, h.logger, http.StatusOK, SessionResponse{
		SessionID:      snap.ID.String(),
		WorldTitle:     snap.WorldTitle,
		CompletedTasks: snap.CompletedTasks,
		NPCStates:      snap.NPCStates,
	})
}
