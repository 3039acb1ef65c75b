// Package events is the seam between the progression engine and the
// presentation layer: a typed publish/subscribe channel carrying player
// intents in and state updates out.
package events

import (
	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/quest"
)

// Type identifies an event variant.
type Type string

const (
	// Inbound, from the rendering layer.
	TypeNPCInteract  Type = "npc.interact"
	TypePlayerChoice Type = "player.choice"

	// Outbound, to the rendering layer.
	TypeDialogueTurn    Type = "dialogue.turn"
	TypeDialogueAborted Type = "dialogue.aborted"
	TypeTasksChanged    Type = "tasks.changed"
)

// Interact is the payload for TypeNPCInteract.
type Interact struct {
	CharacterID string `json:"character_id"`
}

// PlayerChoice is the payload for TypePlayerChoice.
type PlayerChoice struct {
	CharacterID string `json:"character_id"`
	ChoiceIndex int    `json:"choice_index"`
	ChoiceText  string `json:"choice_text"`
}

// TurnResult is the payload for TypeDialogueTurn: the full applied
// response, enriched with character identity and task context. Source
// distinguishes service-generated turns from canned dismissals/refusals.
type TurnResult struct {
	CharacterID   string                `json:"character_id"`
	CharacterName string                `json:"character_name"`
	Response      dialogue.TurnResponse `json:"response"`
	Resolution    quest.Resolution      `json:"resolution"`
	Source        string                `json:"source"` // "service", "dismissal", "refusal"
}

// TasksChanged is the payload for TypeTasksChanged. Completed carries the
// full set, in completion order, for act-gating by the presentation layer.
type TasksChanged struct {
	Completed []string `json:"completed"`
	Newly     []string `json:"newly"`
}

// Event is a tagged union over the payload variants. Exactly one payload
// field matching Type is non-nil.
type Event struct {
	Type         Type          `json:"type"`
	SessionID    string        `json:"session_id,omitempty"`
	Interact     *Interact     `json:"interact,omitempty"`
	PlayerChoice *PlayerChoice `json:"player_choice,omitempty"`
	TurnResult   *TurnResult   `json:"turn_result,omitempty"`
	TasksChanged *TasksChanged `json:"tasks_changed,omitempty"`
}

// Publisher is the outbound half of the bridge.
type Publisher interface {
	Publish(Event)
}
