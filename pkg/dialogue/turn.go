// Package dialogue defines the wire contract with the NPC dialogue service
// and the builder that assembles a turn's context from world and
// progression state.
package dialogue

import (
	"github.com/opengaia/gaia-engine/pkg/chat"
	"github.com/opengaia/gaia-engine/pkg/quest"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// Choice is one follow-up option offered to the player. TrustHint colors
// the option in the UI; it never drives engine logic.
type Choice struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	TrustHint int    `json:"trust_hint,omitempty"`
}

// TaskContext is the slimmed task view sent to the dialogue service.
type TaskContext struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Type                string `json:"type"`
	CompletionCondition string `json:"completion_condition,omitempty"`
}

// BlockedTaskContext adds the missing prerequisite titles so the NPC can
// refuse with a reason the player can act on.
type BlockedTaskContext struct {
	TaskContext
	MissingTitles []string `json:"missing_titles"`
}

// TurnRequest is the payload for POST /api/npc-dialogue. The service gets
// the full character profile on every turn; it holds no state of its own.
type TurnRequest struct {
	Character    world.Character      `json:"character"`
	TrustLevel   int                  `json:"trust_level"`
	ChoiceIndex  int                  `json:"choice_index"`
	PlayerInput  string               `json:"player_input"`
	History      []chat.Message       `json:"history"`
	ActiveTasks  []TaskContext        `json:"active_tasks"`
	BlockedTasks []BlockedTaskContext `json:"blocked_tasks"`
}

// TurnResponse is what the dialogue service returns for one exchange.
// NewTrustLevel is authoritative; TrustDelta is informational only.
type TurnResponse struct {
	NPCResponse     string   `json:"npc_response"`
	Emotion         string   `json:"emotion"`
	TrustDelta      int      `json:"trust_delta"`
	NewTrustLevel   int      `json:"new_trust_level"`
	IsConvinced     bool     `json:"is_convinced"`
	PlayerChoices   []Choice `json:"player_choices,omitempty"`
	CompletedTaskID string   `json:"completed_task_id,omitempty"`
	Blocked         bool     `json:"blocked,omitempty"`
	BlockedReason   string   `json:"blocked_reason,omitempty"`
}

// NewTaskContext converts a resolved task for the wire.
func NewTaskContext(t world.Task) TaskContext {
	return TaskContext{
		ID:                  t.ID,
		Title:               t.Title,
		Type:                t.Type,
		CompletionCondition: t.CompletionCondition,
	}
}

// NewBlockedTaskContext converts a blocked task, carrying its missing
// prerequisite titles.
func NewBlockedTaskContext(b quest.BlockedTask) BlockedTaskContext {
	return BlockedTaskContext{
		TaskContext:   NewTaskContext(b.Task),
		MissingTitles: b.MissingTitles,
	}
}
