package services

import (
	"context"
	"sync"

	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// MockDialogue is a mock implementation of DialogueService for testing
type MockDialogue struct {
	GenerateTurnFunc func(ctx context.Context, req *dialogue.TurnRequest) (*dialogue.TurnResponse, error)

	// Track calls for testing
	GenerateTurnCalls []*dialogue.TurnRequest

	err error
	mu  sync.Mutex // protects all fields above
}

var _ DialogueService = (*MockDialogue)(nil)

// NewMockDialogue creates a new mock dialogue service
func NewMockDialogue() *MockDialogue {
	return &MockDialogue{
		GenerateTurnCalls: make([]*dialogue.TurnRequest, 0),
	}
}

// SetError makes every subsequent call fail with err.
func (m *MockDialogue) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CallCount returns how many turns have been requested.
func (m *MockDialogue) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateTurnCalls)
}

// GenerateTurn mocks a dialogue exchange. Without a GenerateTurnFunc it
// returns a neutral response echoing the character's greeting.
func (m *MockDialogue) GenerateTurn(ctx context.Context, req *dialogue.TurnRequest) (*dialogue.TurnResponse, error) {
	m.mu.Lock()
	m.GenerateTurnCalls = append(m.GenerateTurnCalls, req)
	err := m.err
	fn := m.GenerateTurnFunc
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, req)
	}
	return &dialogue.TurnResponse{
		NPCResponse:   req.Character.DialogueTree.Greeting,
		Emotion:       "neutral",
		NewTrustLevel: req.TrustLevel,
	}, nil
}

// MockWorldGen is a mock implementation of WorldService for testing
type MockWorldGen struct {
	GenerateWorldFunc func(ctx context.Context, story, endGoal string) (*world.World, error)

	GenerateWorldCalls []string

	world *world.World
	err   error
	mu    sync.Mutex
}

var _ WorldService = (*MockWorldGen)(nil)

// NewMockWorldGen creates a new mock world-generation service
func NewMockWorldGen() *MockWorldGen {
	return &MockWorldGen{
		GenerateWorldCalls: make([]string, 0),
	}
}

// SetWorld sets the world returned by every subsequent call.
func (m *MockWorldGen) SetWorld(w *world.World) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.world = w
}

// SetError makes every subsequent call fail with err.
func (m *MockWorldGen) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GenerateWorld mocks world generation.
func (m *MockWorldGen) GenerateWorld(ctx context.Context, story, endGoal string) (*world.World, error) {
	m.mu.Lock()
	m.GenerateWorldCalls = append(m.GenerateWorldCalls, story)
	w, err, fn := m.world, m.err, m.GenerateWorldFunc
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, story, endGoal)
	}
	if w != nil {
		return w, nil
	}
	return &world.World{Summary: world.Summary{Title: "Mock World", Setting: story, EndGoal: endGoal}}, nil
}
