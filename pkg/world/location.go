package world

// MovementProfile tunes player movement for a location. Presentation only.
type MovementProfile struct {
	Speed        int     `json:"speed,omitempty"`
	Friction     float64 `json:"friction,omitempty"`
	CameraShake  bool    `json:"camera_shake,omitempty"`
	AmbientSound string  `json:"ambient_sound,omitempty"`
	StepSound    string  `json:"step_sound,omitempty"`
}

// Location is a walkable area in the world. The engine validates its
// references; everything else is consumed by the rendering layer.
type Location struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	TerrainType      string            `json:"terrain_type,omitempty"`
	BackgroundPrompt string            `json:"background_prompt,omitempty"`
	TileMapPrompt    string            `json:"tile_map_prompt,omitempty"`
	MovementProfile  MovementProfile   `json:"movement_profile,omitempty"`
	NPCsPresent      []string          `json:"npcs_present,omitempty"`
	NPCSpawnSlots    map[string]string `json:"npc_spawn_slots,omitempty"`
	PlayerSpawn      string            `json:"player_spawn,omitempty"`
	ConnectedTo      []string          `json:"connected_to,omitempty"`
}
