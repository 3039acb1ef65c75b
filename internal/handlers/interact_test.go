package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opengaia/gaia-engine/internal/engine"
	"github.com/opengaia/gaia-engine/internal/services"
	"github.com/opengaia/gaia-engine/pkg/events"
	"github.com/opengaia/gaia-engine/pkg/state"
	"github.com/opengaia/gaia-engine/pkg/world"
)

func interactFixture(t *testing.T) (*InteractHandler, *state.Session, *services.MockDialogue) {
	t.Helper()
	session := state.NewSession()
	w := &world.World{
		Summary: world.Summary{Title: "Echoes", Setting: "s", EndGoal: "g"},
		Characters: []world.Character{
			{ID: "zara_diver", Name: "Zara", Role: world.RoleProtagonist},
			{ID: "wren_ai", Name: "WREN", Role: world.RoleNPC, TrustThreshold: 75,
				DialogueTree: world.DialogueTree{Greeting: "I do not trust humans."}},
		},
		Tasks: []world.Task{
			{ID: "task_convince_wren", Title: "Convince WREN", Type: world.TaskTypeAIPersuasion,
				AssignedNPC: "wren_ai"},
		},
	}
	if err := session.LoadWorld(w); err != nil {
		t.Fatalf("LoadWorld failed: %v", err)
	}

	svc := services.NewMockDialogue()
	bus := events.NewBus(testLogger())
	t.Cleanup(bus.Close)
	controller := engine.NewController(session, svc, bus, testLogger())
	return NewInteractHandler(controller, testLogger()), session, svc
}

func TestInteractHandler_Turn(t *testing.T) {
	handler, session, _ := interactFixture(t)

	body, _ := json.Marshal(InteractRequest{CharacterID: "wren_ai"})
	req := httptest.NewRequest(http.MethodPost, "/v1/interact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var result events.TurnResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.CharacterID != "wren_ai" {
		t.Errorf("CharacterID = %q", result.CharacterID)
	}
	if result.Response.NPCResponse != "I do not trust humans." {
		t.Errorf("NPCResponse = %q", result.Response.NPCResponse)
	}

	st, _ := session.NPCState("wren_ai")
	if len(st.ConversationHistory) != 1 {
		t.Errorf("History = %v", st.ConversationHistory)
	}
}

func TestInteractHandler_BadRequests(t *testing.T) {
	handler, _, _ := interactFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{broken`},
		{name: "missing character id", body: `{"choice_index": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/interact", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want 400", w.Code)
			}
		})
	}
}

func TestInteractHandler_CharacterNotFound(t *testing.T) {
	handler, _, _ := interactFixture(t)

	body, _ := json.Marshal(InteractRequest{CharacterID: "nobody"})
	req := httptest.NewRequest(http.MethodPost, "/v1/interact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", w.Code)
	}
}

func TestInteractHandler_NoWorld(t *testing.T) {
	session := state.NewSession()
	bus := events.NewBus(testLogger())
	t.Cleanup(bus.Close)
	controller := engine.NewController(session, services.NewMockDialogue(), bus, testLogger())
	handler := NewInteractHandler(controller, testLogger())

	body, _ := json.Marshal(InteractRequest{CharacterID: "wren_ai"})
	req := httptest.NewRequest(http.MethodPost, "/v1/interact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", w.Code)
	}
}

func TestInteractHandler_MethodNotAllowed(t *testing.T) {
	handler, _, _ := interactFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/interact", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want 405", w.Code)
	}
}
