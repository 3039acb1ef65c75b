package chat

import "fmt"

// Conversation roles. These match what the dialogue service expects in the
// history payload.
const (
	RoleUser      = "user"      // the player
	RoleAssistant = "assistant" // the NPC
)

// Message is a single entry in a character's conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a player-authored history entry.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an NPC-authored history entry.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Validate rejects malformed history entries before they reach the
// dialogue service.
func (m Message) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return fmt.Errorf("invalid chat role %q", m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("chat message content cannot be empty")
	}
	return nil
}

// Tail returns the last n messages of a history, or the whole history when
// it is shorter than n.
func Tail(history []Message, n int) []Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
