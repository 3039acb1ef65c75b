package world

// Character roles as emitted by the world-generation service. The role is
// narrative framing only; every character takes the same code path.
const (
	RoleProtagonist = "protagonist"
	RoleNPC         = "npc"
	RoleAlly        = "ally"
)

// DialogueTree holds the static fallback lines for a character. These are
// used for canned dismissal/refusal responses when no service call is made;
// the dialogue service produces everything else.
type DialogueTree struct {
	Greeting    string `json:"greeting"`
	Cooperative string `json:"cooperative"`
	Resistant   string `json:"resistant"`
	Convinced   string `json:"convinced"`
}

// Character is a world inhabitant. Motivation, traits, and triggers are
// opaque strings forwarded to the dialogue service; the engine interprets
// only ID, Role, and TrustThreshold.
type Character struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description,omitempty"`
	Role                 string       `json:"role"`
	Motivation           string       `json:"motivation,omitempty"`
	PersonalityTraits    []string     `json:"personality_traits,omitempty"`
	RelationshipToPlayer string       `json:"relationship_to_player,omitempty"`
	ConvincingTriggers   []string     `json:"convincing_triggers,omitempty"`
	TrustThreshold       int          `json:"trust_threshold"`
	DialogueTree         DialogueTree `json:"dialogue_tree"`

	// Presentation passthrough. Consumed by the rendering layer only.
	VisualDescription string `json:"visual_description,omitempty"`
	MovementStyle     string `json:"movement_style,omitempty"`
	SpritePrompt      string `json:"sprite_prompt,omitempty"`
	PortraitPrompt    string `json:"portrait_prompt,omitempty"`
}

// IsProtagonist reports whether this character is the player character.
// The protagonist is never dismissed or refused by the turn controller.
func (c *Character) IsProtagonist() bool {
	return c.Role == RoleProtagonist
}
