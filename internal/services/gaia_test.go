package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGaiaService_GenerateWorld(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate-world" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Unexpected method: %s", r.Method)
		}

		var req struct {
			Story   string `json:"story"`
			EndGoal string `json:"end_goal"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Story == "" || req.EndGoal == "" {
			t.Error("Expected story and end_goal in request body")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"game_bible": {
			"world": {"title": "Generated World", "setting": "s", "end_goal": "g"},
			"characters": [], "tasks": [], "story_graph": {"acts": []}, "locations": []
		}}`))
	}))
	defer server.Close()

	svc := NewGaiaService(server.URL, testLogger())
	w, err := svc.GenerateWorld(context.Background(), "a diver uncovers a conspiracy", "expose the company")
	if err != nil {
		t.Fatalf("GenerateWorld failed: %v", err)
	}
	if w.Summary.Title != "Generated World" {
		t.Errorf("Title = %q, want 'Generated World'", w.Summary.Title)
	}
}

func TestGaiaService_GenerateWorld_InputValidation(t *testing.T) {
	svc := NewGaiaService("http://unused", testLogger())

	if _, err := svc.GenerateWorld(context.Background(), "short", "expose the company"); err == nil {
		t.Error("Expected error for too-short story")
	}
	if _, err := svc.GenerateWorld(context.Background(), "a diver uncovers a conspiracy", "no"); err == nil {
		t.Error("Expected error for too-short end goal")
	}
}

func TestGaiaService_GenerateWorld_MissingBible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	svc := NewGaiaService(server.URL, testLogger())
	_, err := svc.GenerateWorld(context.Background(), "a diver uncovers a conspiracy", "expose the company")
	if err == nil {
		t.Fatal("Expected error for missing game bible")
	}
	if !strings.Contains(err.Error(), "no game bible") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestGaiaService_GenerateTurn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/npc-dialogue" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		var req dialogue.TurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Character.ID != "keeper" {
			t.Errorf("Character.ID = %q, want keeper", req.Character.ID)
		}
		if req.TrustLevel != 40 {
			t.Errorf("TrustLevel = %d, want 40", req.TrustLevel)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"npc_response": "Hmm. Perhaps.",
			"emotion": "thoughtful",
			"trust_delta": 10,
			"new_trust_level": 50,
			"is_convinced": false,
			"player_choices": [{"index": 0, "text": "Press on.", "trust_hint": 5}]
		}`))
	}))
	defer server.Close()

	svc := NewGaiaService(server.URL, testLogger())
	resp, err := svc.GenerateTurn(context.Background(), &dialogue.TurnRequest{
		Character:  world.Character{ID: "keeper", Name: "Keeper"},
		TrustLevel: 40,
	})
	if err != nil {
		t.Fatalf("GenerateTurn failed: %v", err)
	}

	if resp.NPCResponse != "Hmm. Perhaps." {
		t.Errorf("NPCResponse = %q", resp.NPCResponse)
	}
	if resp.NewTrustLevel != 50 {
		t.Errorf("NewTrustLevel = %d, want 50", resp.NewTrustLevel)
	}
	if len(resp.PlayerChoices) != 1 || resp.PlayerChoices[0].Text != "Press on." {
		t.Errorf("PlayerChoices = %+v", resp.PlayerChoices)
	}
}

func TestGaiaService_GenerateTurn_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "backend error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error": "model overloaded"}`, http.StatusBadGateway)
			},
			wantErr: "status 502",
		},
		{
			name: "empty npc response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"npc_response": ""}`))
			},
			wantErr: "empty npc response",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
			wantErr: "failed to parse response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			svc := NewGaiaService(server.URL, testLogger())
			_, err := svc.GenerateTurn(context.Background(), &dialogue.TurnRequest{
				Character: world.Character{ID: "keeper"},
			})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestGaiaService_GenerateTurn_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	svc := NewGaiaService(server.URL, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.GenerateTurn(ctx, &dialogue.TurnRequest{Character: world.Character{ID: "x"}}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
