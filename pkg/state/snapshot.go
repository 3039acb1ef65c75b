package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/opengaia/gaia-engine/pkg/chat"
)

// Snapshot is the JSON-serializable progression of one session, suitable
// for persistence between process runs. The world itself is not included;
// it is re-loaded from its bible document and matched by title.
type Snapshot struct {
	ID             uuid.UUID           `json:"id"`
	WorldTitle     string              `json:"world_title,omitempty"`
	Generation     uint64              `json:"generation"`
	CompletedTasks []string            `json:"completed_tasks"`
	NPCStates      map[string]NPCState `json:"npc_states"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Snapshot captures the current progression.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		ID:             s.id,
		Generation:     s.generation,
		CompletedTasks: make([]string, len(s.completedOrder)),
		NPCStates:      make(map[string]NPCState, len(s.npcs)),
		UpdatedAt:      time.Now(),
	}
	if s.world != nil {
		snap.WorldTitle = s.world.Summary.Title
	}
	copy(snap.CompletedTasks, s.completedOrder)
	for id, st := range s.npcs {
		cp := *st
		cp.ConversationHistory = make([]chat.Message, len(st.ConversationHistory))
		copy(cp.ConversationHistory, st.ConversationHistory)
		snap.NPCStates[id] = cp
	}
	return snap
}

// Restore applies a snapshot to a session whose world is already loaded.
// The snapshot's completed set is replayed through CompleteTask order, and
// NPC states are overwritten wholesale. Restore does not bump the
// generation: a restored session continues the same playthrough.
func (s *Session) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = snap.ID
	s.completed = make(map[string]bool, len(snap.CompletedTasks))
	s.completedOrder = make([]string, 0, len(snap.CompletedTasks))
	for _, id := range snap.CompletedTasks {
		if s.completed[id] {
			continue
		}
		s.completed[id] = true
		s.completedOrder = append(s.completedOrder, id)
	}
	for id, st := range snap.NPCStates {
		cp := st
		if cp.ConversationHistory == nil {
			cp.ConversationHistory = make([]chat.Message, 0)
		}
		s.npcs[id] = &cp
	}
}
