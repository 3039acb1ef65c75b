// Package engine orchestrates dialogue turns: it routes a player
// interaction to a canned dismissal, a canned refusal, or one call to the
// external dialogue service, then applies the result to the session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/opengaia/gaia-engine/internal/services"
	"github.com/opengaia/gaia-engine/pkg/chat"
	"github.com/opengaia/gaia-engine/pkg/dialogue"
	"github.com/opengaia/gaia-engine/pkg/events"
	"github.com/opengaia/gaia-engine/pkg/quest"
	"github.com/opengaia/gaia-engine/pkg/state"
	"github.com/opengaia/gaia-engine/pkg/world"
)

// Turn result sources, carried on the emitted event.
const (
	SourceService   = "service"
	SourceDismissal = "dismissal"
	SourceRefusal   = "refusal"
)

var (
	// ErrBusy is returned when a turn is already in flight. Interactions
	// are rejected, not queued: this is a UI-paced, single-player system.
	ErrBusy = errors.New("dialogue turn already in progress")

	// ErrNoWorld is returned before the first LoadWorld.
	ErrNoWorld = errors.New("no world loaded")

	// ErrCharacterNotFound aborts an interaction with an unknown id.
	ErrCharacterNotFound = errors.New("character not found")

	// ErrStaleResponse marks a dialogue response that arrived after the
	// session moved to a new world. The response is discarded, nothing
	// is mutated, and nothing is emitted. Expected race, not a fault.
	ErrStaleResponse = errors.New("stale dialogue response discarded")
)

// TurnInput is one player interaction attempt. ChoiceText is empty on the
// opening exchange with a character.
type TurnInput struct {
	CharacterID string
	ChoiceIndex int
	ChoiceText  string
}

// Controller mediates dialogue turns for one session. Only the controller
// writes session state; the rendering layer reads it concurrently.
type Controller struct {
	session *state.Session
	svc     services.DialogueService
	bus     events.Publisher
	logger  *slog.Logger

	mu   sync.Mutex
	busy bool
}

// NewController wires a controller to its session, dialogue service, and
// presentation bridge.
func NewController(session *state.Session, svc services.DialogueService, bus events.Publisher, logger *slog.Logger) *Controller {
	return &Controller{
		session: session,
		svc:     svc,
		bus:     bus,
		logger:  logger,
	}
}

// Take runs one interaction attempt end to end and returns the applied
// result. The same result is published on the bridge; bus delivery is
// asynchronous relative to this call, which keeps canned responses from
// racing a presentation layer that is still mid-update.
//
// Exactly one turn may be in flight per session; concurrent calls get
// ErrBusy. On any error no session state is mutated.
func (c *Controller) Take(ctx context.Context, input TurnInput) (*events.TurnResult, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	result, err := c.takeTurn(ctx, input)
	if err != nil {
		if errors.Is(err, ErrStaleResponse) {
			// Not user-visible and not a fault; see session generation.
			c.logger.Debug("discarded stale dialogue response",
				"character_id", input.CharacterID)
			return nil, err
		}
		c.logger.Error("dialogue turn failed",
			"character_id", input.CharacterID,
			"error", err)
		c.publishAborted()
		return nil, err
	}
	return result, nil
}

// takeTurn is the routing + applying core. The caller holds the busy flag.
func (c *Controller) takeTurn(ctx context.Context, input TurnInput) (*events.TurnResult, error) {
	w := c.session.World()
	resolver := c.session.Resolver()
	if w == nil || resolver == nil {
		return nil, ErrNoWorld
	}

	character, ok := w.Character(input.CharacterID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, input.CharacterID)
	}

	// ROUTING. The cascade from any previous CompleteTask has already
	// converged inside the store, so this read sees a settled set.
	generation := c.session.Generation()
	done := c.session.CompletedSet()
	resolution := resolver.ForCharacter(character.ID, done)

	if !character.IsProtagonist() && resolver.AllDoneFor(character.ID, done) {
		return c.dismiss(character, resolution), nil
	}
	if !character.IsProtagonist() && len(resolution.Active) == 0 && len(resolution.Blocked) > 0 {
		return c.refuse(character, resolution), nil
	}

	// AWAITING_RESPONSE: the one genuine suspension point.
	npcState, _ := c.session.NPCState(character.ID)
	req, err := dialogue.NewTurnContext().
		WithCharacter(character).
		WithTrust(npcState.TrustLevel).
		WithChoice(input.ChoiceIndex, input.ChoiceText).
		WithHistory(npcState.ConversationHistory).
		WithResolution(resolution).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build turn context: %w", err)
	}

	resp, err := c.svc.GenerateTurn(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("dialogue service failed: %w", err)
	}

	// The world may have been replaced while the call was in flight.
	// A response keyed to a previous generation must not touch the new
	// progression state.
	if c.session.Generation() != generation {
		return nil, ErrStaleResponse
	}

	return c.apply(character, input, resp), nil
}

// apply is the APPLYING phase: history append, authoritative trust
// overwrite, optional task completion with its cascade, then emission.
func (c *Controller) apply(character *world.Character, input TurnInput, resp *dialogue.TurnResponse) *events.TurnResult {
	var history []chat.Message
	if input.ChoiceText != "" {
		history = append(history, chat.UserMessage(input.ChoiceText))
	}
	history = append(history, chat.AssistantMessage(resp.NPCResponse))

	trust := clampTrust(resp.NewTrustLevel)
	convinced := resp.IsConvinced
	c.session.UpdateNPCState(character.ID, state.NPCStatePatch{
		TrustLevel:    &trust,
		IsConvinced:   &convinced,
		AppendHistory: history,
	})

	if resp.CompletedTaskID != "" {
		c.completeAndAnnounce(resp.CompletedTaskID)
	}

	result := &events.TurnResult{
		CharacterID:   character.ID,
		CharacterName: character.Name,
		Response:      *resp,
		Resolution:    c.resolveAfterMutation(character.ID),
		Source:        SourceService,
	}
	c.publishTurn(result)
	return result
}

// dismiss synthesizes the canned all-tasks-done response. No service call,
// trust unchanged, convinced set, no choices.
func (c *Controller) dismiss(character *world.Character, resolution quest.Resolution) *events.TurnResult {
	convinced := true
	c.session.UpdateNPCState(character.ID, state.NPCStatePatch{IsConvinced: &convinced})

	npcState, _ := c.session.NPCState(character.ID)
	result := &events.TurnResult{
		CharacterID:   character.ID,
		CharacterName: character.Name,
		Response: dialogue.TurnResponse{
			NPCResponse:   dismissalLine(character),
			Emotion:       "friendly",
			NewTrustLevel: npcState.TrustLevel,
			IsConvinced:   true,
		},
		Resolution: resolution,
		Source:     SourceDismissal,
	}
	c.publishTurn(result)
	return result
}

// refuse synthesizes the canned prerequisites-unmet response. No service
// call, trust unchanged, blocked task list attached.
func (c *Controller) refuse(character *world.Character, resolution quest.Resolution) *events.TurnResult {
	npcState, _ := c.session.NPCState(character.ID)
	result := &events.TurnResult{
		CharacterID:   character.ID,
		CharacterName: character.Name,
		Response: dialogue.TurnResponse{
			NPCResponse:   refusalLine(character),
			Emotion:       "suspicious",
			NewTrustLevel: npcState.TrustLevel,
			IsConvinced:   npcState.IsConvinced,
			Blocked:       true,
			BlockedReason: blockedReason(resolution),
		},
		Resolution: resolution,
		Source:     SourceRefusal,
	}
	c.publishTurn(result)
	return result
}

// completeAndAnnounce completes the task, lets the cascade settle inside
// the store, and announces the grown set.
func (c *Controller) completeAndAnnounce(taskID string) {
	newly := c.session.CompleteTask(taskID)
	if len(newly) == 0 {
		return
	}
	c.bus.Publish(events.Event{
		Type:      events.TypeTasksChanged,
		SessionID: c.session.ID().String(),
		TasksChanged: &events.TasksChanged{
			Completed: c.session.CompletedTasks(),
			Newly:     newly,
		},
	})
}

// resolveAfterMutation re-partitions the character's tasks against the
// post-cascade completed set for the emitted result.
func (c *Controller) resolveAfterMutation(characterID string) quest.Resolution {
	resolver := c.session.Resolver()
	if resolver == nil {
		return quest.Resolution{}
	}
	return resolver.ForCharacter(characterID, c.session.CompletedSet())
}

func (c *Controller) publishTurn(result *events.TurnResult) {
	c.bus.Publish(events.Event{
		Type:       events.TypeDialogueTurn,
		SessionID:  c.session.ID().String(),
		TurnResult: result,
	})
}

func (c *Controller) publishAborted() {
	c.bus.Publish(events.Event{
		Type:      events.TypeDialogueAborted,
		SessionID: c.session.ID().String(),
	})
}

func dismissalLine(character *world.Character) string {
	if character.DialogueTree.Convinced != "" {
		return character.DialogueTree.Convinced
	}
	return fmt.Sprintf("%s has nothing more to ask of you.", character.Name)
}

func refusalLine(character *world.Character) string {
	if character.DialogueTree.Resistant != "" {
		return character.DialogueTree.Resistant
	}
	return fmt.Sprintf("%s is not ready to talk about this yet.", character.Name)
}

func blockedReason(resolution quest.Resolution) string {
	for _, b := range resolution.Blocked {
		if len(b.MissingTitles) > 0 {
			return fmt.Sprintf("first: %s", b.MissingTitles[0])
		}
	}
	return ""
}

func clampTrust(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
