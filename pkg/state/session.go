// Package state holds the mutable per-playthrough progression: the
// completed-task set, per-character trust and memory, and the loaded world.
// A Session is an explicitly owned instance, injected into the resolver and
// turn controller, so multiple sessions and tests run in isolation.
package state

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/opengaia/gaia-engine/pkg/chat"
	"github.com/opengaia/gaia-engine/pkg/quest"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// NPCState is the mutable dialogue state for one character. Created zeroed
// for every character at world load; reset wholesale on the next load.
type NPCState struct {
	TrustLevel          int            `json:"trust_level"`
	IsConvinced         bool           `json:"is_convinced"`
	ConversationHistory []chat.Message `json:"conversation_history"`
}

// NPCStatePatch is a shallow-merge update to an NPCState. Nil fields are
// left untouched.
type NPCStatePatch struct {
	TrustLevel    *int
	IsConvinced   *bool
	AppendHistory []chat.Message
}

// Session is the sole mutable source of truth for one playthrough. The
// resolver and turn controller read it; only the turn controller writes,
// through CompleteTask and UpdateNPCState. Reads from a rendering layer may
// happen concurrently, so access is guarded by an RWMutex.
type Session struct {
	mu sync.RWMutex

	id         uuid.UUID
	generation uint64

	world     *world.World
	resolver  *quest.Resolver
	completed map[string]bool
	// completedOrder preserves insertion order for deterministic snapshots
	// and event payloads.
	completedOrder []string
	npcs           map[string]*NPCState
}

// NewSession creates an empty session with no world loaded.
func NewSession() *Session {
	return &Session{
		id:        uuid.New(),
		completed: make(map[string]bool),
		npcs:      make(map[string]*NPCState),
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Generation returns the current world generation. It increments on every
// LoadWorld; in-flight dialogue responses from a previous generation are
// discarded instead of applied.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// LoadWorld validates w, replaces the current world wholesale, and resets
// all progression. Every character gets a zeroed NPCState so later reads
// never need a per-field nil check. This is the only destructive operation
// on a session. On validation failure nothing is mutated.
func (s *Session) LoadWorld(w *world.World) error {
	if w == nil {
		return fmt.Errorf("cannot load nil world")
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("world rejected: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.world = w
	s.resolver = quest.NewResolver(w.Tasks)
	s.completed = make(map[string]bool, len(w.Tasks))
	s.completedOrder = nil
	s.npcs = make(map[string]*NPCState, len(w.Characters))
	for _, c := range w.Characters {
		s.npcs[c.ID] = &NPCState{ConversationHistory: make([]chat.Message, 0)}
	}
	s.generation++
	return nil
}

// World returns the loaded world, or nil before the first load.
func (s *Session) World() *world.World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world
}

// Resolver returns the resolver for the loaded world, or nil before the
// first load.
func (s *Session) Resolver() *quest.Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver
}

// CompleteTask marks a task completed and synchronously sweeps
// auto-completions to a fixed point within the same lock, so any observer
// reading the completed set afterward sees the fully cascaded result.
// Insertion is idempotent; tasks are never un-completed. The returned slice
// holds every id newly completed by this call, the explicit one first.
func (s *Session) CompleteTask(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed[id] {
		return nil
	}
	s.completed[id] = true
	newly := []string{id}

	if s.resolver != nil {
		swept := s.resolver.Sweep(s.completed)
		newly = append(newly, swept...)
	}
	s.completedOrder = append(s.completedOrder, newly...)
	return newly
}

// IsCompleted reports whether the task id is in the completed set.
func (s *Session) IsCompleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed[id]
}

// CompletedTasks returns the completed task ids in completion order.
func (s *Session) CompletedTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.completedOrder))
	copy(out, s.completedOrder)
	return out
}

// CompletedSet returns a copy of the completed set, safe to hand to the
// resolver without holding the session lock.
func (s *Session) CompletedSet() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.completed))
	for id := range s.completed {
		out[id] = true
	}
	return out
}

// NPCState returns a copy of the character's dialogue state and whether an
// entry exists. Entries exist for every world character after LoadWorld.
func (s *Session) NPCState(characterID string) (NPCState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.npcs[characterID]
	if !ok {
		return NPCState{}, false
	}
	cp := *st
	cp.ConversationHistory = make([]chat.Message, len(st.ConversationHistory))
	copy(cp.ConversationHistory, st.ConversationHistory)
	return cp, true
}

// UpdateNPCState shallow-merges patch into the character's state, creating
// a default entry first if none exists.
func (s *Session) UpdateNPCState(characterID string, patch NPCStatePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.npcs[characterID]
	if !ok {
		st = &NPCState{ConversationHistory: make([]chat.Message, 0)}
		s.npcs[characterID] = st
	}
	if patch.TrustLevel != nil {
		st.TrustLevel = *patch.TrustLevel
	}
	if patch.IsConvinced != nil {
		st.IsConvinced = *patch.IsConvinced
	}
	if len(patch.AppendHistory) > 0 {
		st.ConversationHistory = append(st.ConversationHistory, patch.AppendHistory...)
	}
}
