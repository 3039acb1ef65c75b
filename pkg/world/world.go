package world

import (
	"encoding/json"
	"fmt"
	"io"
)

// Summary holds the free-text framing of a generated world. All fields are
// opaque to the engine and are passed through to the dialogue service and
// the presentation layer.
type Summary struct {
	Title     string `json:"title"`
	Setting   string `json:"setting"`
	EndGoal   string `json:"end_goal"`
	Tone      string `json:"tone,omitempty"`
	TimeOfDay string `json:"time_of_day,omitempty"`
	Weather   string `json:"weather,omitempty"`
}

// Act is a narrative grouping of tasks tied to one location. Acts gate
// story-intro presentation only; the engine does not enforce act order.
type Act struct {
	ActNumber   int      `json:"act_number"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	TasksInAct  []string `json:"tasks_in_act"`
	LocationID  string   `json:"location_id"`
}

// StoryGraph orders the narrative acts and bookends them with scene text.
type StoryGraph struct {
	OpeningScene string `json:"opening_scene,omitempty"`
	Acts         []Act  `json:"acts"`
	EndingScene  string `json:"ending_scene,omitempty"`
}

// World is a generated game bible: the immutable-per-session description of
// a playthrough's setting, characters, tasks, and locations. It is replaced
// wholesale when a new world is loaded, never mutated in place.
type World struct {
	Summary    Summary     `json:"world"`
	Characters []Character `json:"characters"`
	Tasks      []Task      `json:"tasks"`
	StoryGraph StoryGraph  `json:"story_graph"`
	Locations  []Location  `json:"locations"`
}

// generateWorldResponse matches the world-generation service envelope.
type generateWorldResponse struct {
	GameBible *World `json:"game_bible"`
}

// Decode reads a game bible from r. It accepts both the bare bible document
// and the service envelope that wraps it in a "game_bible" key.
func Decode(r io.Reader) (*World, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read world document: %w", err)
	}

	var envelope generateWorldResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.GameBible != nil {
		return envelope.GameBible, nil
	}

	var w World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse world document: %w", err)
	}
	return &w, nil
}

// Character returns the character with the given id.
func (w *World) Character(id string) (*Character, bool) {
	for i := range w.Characters {
		if w.Characters[i].ID == id {
			return &w.Characters[i], true
		}
	}
	return nil, false
}

// Task returns the task with the given id.
func (w *World) Task(id string) (*Task, bool) {
	for i := range w.Tasks {
		if w.Tasks[i].ID == id {
			return &w.Tasks[i], true
		}
	}
	return nil, false
}

// Location returns the location with the given id.
func (w *World) Location(id string) (*Location, bool) {
	for i := range w.Locations {
		if w.Locations[i].ID == id {
			return &w.Locations[i], true
		}
	}
	return nil, false
}
