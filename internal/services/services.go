package services

import (
	"context"

	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// WorldService generates a game bible from a free-text premise.
type WorldService interface {
	// GenerateWorld asks the backend to build a world from a story
	// premise and end goal. The returned world is not yet validated.
	GenerateWorld(ctx context.Context, story, endGoal string) (*world.World, error)
}

// DialogueService brokers one NPC dialogue exchange.
type DialogueService interface {
	// GenerateTurn sends the assembled turn context and returns the
	// NPC's response. This is the engine's only suspension point.
	GenerateTurn(ctx context.Context, req *dialogue.TurnRequest) (*dialogue.TurnResponse, error)
}
