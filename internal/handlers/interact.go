package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/opengaia/gaia-engine/internal/engine"
)

// InteractRequest is one player interaction attempt. choice_text is empty
// on the opening exchange with a character.
type InteractRequest struct {
	CharacterID string `json:"character_id"`
	ChoiceIndex int    `json:"choice_index"`
	ChoiceText  string `json:"choice_text"`
}

// InteractHandler runs one dialogue turn synchronously. The caller shows a
// loading affordance for the duration; results also fan out on the event
// bridge for canvas-side consumers.
type InteractHandler struct {
	controller *engine.Controller
	logger     *slog.Logger
}

func NewInteractHandler(controller *engine.Controller, logger *slog.Logger) *InteractHandler {
	return &InteractHandler{
		controller: controller,
		logger:     logger,
	}
}

func (h *InteractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported at /v1/interact.")
		return
	}

	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'character_id' field.")
		return
	}
	if req.CharacterID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "character_id is required.")
		return
	}

	result, err := h.controller.Take(r.Context(), engine.TurnInput{
		CharacterID: req.CharacterID,
		ChoiceIndex: req.ChoiceIndex,
		ChoiceText:  req.ChoiceText,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrBusy):
			writeError(w, h.logger, http.StatusConflict, "A dialogue turn is already in progress.")
		case errors.Is(err, engine.ErrNoWorld):
			writeError(w, h.logger, http.StatusConflict, "No world loaded. Create one at /v1/worlds first.")
		case errors.Is(err, engine.ErrCharacterNotFound):
			writeError(w, h.logger, http.StatusNotFound, "Character not found.")
		case errors.Is(err, engine.ErrStaleResponse):
			writeError(w, h.logger, http.StatusGone, "The world changed while the dialogue was in flight.")
		default:
			writeError(w, h.logger, http.StatusInternalServerError, "Dialogue failed. Please try again.")
		}
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
