package engine

import (
	"context"
	"errors"

	"github.com/opengaia/gaia-engine/pkg/events"
)

// Run consumes inbound intents from the presentation bridge and drives the
// controller until ctx is done or the subscription channel closes. Outbound
// results flow back through the same bus, so a rendering layer needs only
// the bus handle, not the controller.
//
// Busy rejections are expected while a turn is in flight and are logged at
// debug; everything else is already logged and signaled by Take.
func (c *Controller) Run(ctx context.Context, sub <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			c.dispatch(ctx, e)
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, e events.Event) {
	var input TurnInput
	switch e.Type {
	case events.TypeNPCInteract:
		if e.Interact == nil {
			return
		}
		input = TurnInput{CharacterID: e.Interact.CharacterID}
	case events.TypePlayerChoice:
		if e.PlayerChoice == nil {
			return
		}
		input = TurnInput{
			CharacterID: e.PlayerChoice.CharacterID,
			ChoiceIndex: e.PlayerChoice.ChoiceIndex,
			ChoiceText:  e.PlayerChoice.ChoiceText,
		}
	default:
		// Outbound event echoed back on a shared bus; not ours.
		return
	}

	if _, err := c.Take(ctx, input); err != nil {
		if errors.Is(err, ErrBusy) {
			c.logger.Debug("interaction ignored while turn in flight",
				"character_id", input.CharacterID)
		}
	}
}
