package dialogue

import (
	"fmt"

	"github.com/opengaia/gaia-engine/pkg/chat"
	"github.com/opengaia/gaia-engine/pkg/quest"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// HistoryLimit caps the conversation history sent per turn. Older entries
// stay in the session but fall out of the service payload.
const HistoryLimit = 20

// Builder assembles a TurnRequest using a fluent interface. It separates
// context assembly from session state management: callers pass explicit
// values on every turn instead of holding a mutable snapshot.
type Builder struct {
	character    *world.Character
	trustLevel   int
	choiceIndex  int
	playerInput  string
	history      []chat.Message
	resolution   quest.Resolution
	historyLimit int
}

// NewTurnContext creates a builder with default settings.
func NewTurnContext() *Builder {
	return &Builder{historyLimit: HistoryLimit}
}

// WithCharacter sets the target character profile.
func (b *Builder) WithCharacter(c *world.Character) *Builder {
	b.character = c
	return b
}

// WithTrust sets the player's current trust level with the character.
func (b *Builder) WithTrust(level int) *Builder {
	b.trustLevel = level
	return b
}

// WithChoice sets the player's selected choice index and text. Text may be
// empty on the opening turn of an interaction.
func (b *Builder) WithChoice(index int, text string) *Builder {
	b.choiceIndex = index
	b.playerInput = text
	return b
}

// WithHistory sets the full conversation history; Build windows it.
func (b *Builder) WithHistory(history []chat.Message) *Builder {
	b.history = history
	return b
}

// WithResolution attaches the active/blocked task partition for the
// character.
func (b *Builder) WithResolution(res quest.Resolution) *Builder {
	b.resolution = res
	return b
}

// WithHistoryLimit overrides the history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final TurnRequest.
func (b *Builder) Build() (*TurnRequest, error) {
	if b.character == nil {
		return nil, fmt.Errorf("character is required")
	}
	if b.trustLevel < 0 || b.trustLevel > 100 {
		return nil, fmt.Errorf("trust level %d out of range 0-100", b.trustLevel)
	}

	req := &TurnRequest{
		Character:   *b.character,
		TrustLevel:  b.trustLevel,
		ChoiceIndex: b.choiceIndex,
		PlayerInput: b.playerInput,
		History:     chat.Tail(b.history, b.historyLimit),
	}
	for _, t := range b.resolution.Active {
		req.ActiveTasks = append(req.ActiveTasks, NewTaskContext(t))
	}
	for _, t := range b.resolution.Blocked {
		req.BlockedTasks = append(req.BlockedTasks, NewBlockedTaskContext(t))
	}
	return req, nil
}
