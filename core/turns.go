package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-avatar/core/events"
	"github.com/koscakluka/ema-avatar/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Turn is a single request/response exchange: the user's input and, once the
// completion succeeded, the reply the avatar was asked to speak.
type Turn struct {
	ID      string
	Trigger events.TurnTrigger
	Input   string
	Reply   *string
}

// Send runs a turn for typed text. It blocks until the avatar has accepted
// the reply or the turn failed. A second Send while a turn is in flight
// returns ErrTurnInFlight; it is never queued.
func (o *Orchestrator) Send(ctx context.Context, text string) (Turn, error) {
	return o.runTurn(ctx, text, events.TurnTriggerTyped)
}

func (o *Orchestrator) runTurn(ctx context.Context, text string, trigger events.TurnTrigger) (Turn, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return Turn{}, ErrEmptyInput
	}

	if !o.state.acquireControls() {
		return Turn{}, ErrTurnInFlight
	}

	turn := Turn{ID: uuid.NewString(), Trigger: trigger, Input: input}

	ctx, span := tracer.Start(ctx, "turn", trace.WithAttributes(
		attribute.String("turn.id", turn.ID),
		attribute.String("turn.trigger", string(trigger)),
	))
	defer span.End()

	defer func() {
		o.state.emit(events.NewTurnEnded(turn.ID))
		o.state.releaseControls()
		o.state.flush()
	}()

	o.state.emit(events.NewTurnStarted(turn.ID, trigger, input))
	o.state.appendLog("you: " + input)
	o.state.flush()

	if err := o.processTurn(ctx, &turn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		o.state.emit(events.NewTurnFailed(turn.ID, err))
		o.state.appendLog(fmt.Sprintf("turn failed: %v", err))
		return turn, err
	}

	return turn, nil
}

// processTurn completes and speaks strictly in that order.
func (o *Orchestrator) processTurn(ctx context.Context, turn *Turn) error {
	completeCtx, completeSpan := tracer.Start(ctx, "complete")
	reply, err := o.completion.Complete(completeCtx, turn.Input)
	if err != nil {
		completeSpan.RecordError(err)
		completeSpan.SetStatus(codes.Error, err.Error())
		completeSpan.End()
		return err
	}
	completeSpan.End()

	turn.Reply = utils.Ptr(reply)
	o.state.emit(events.NewTurnReplied(turn.ID, reply))
	o.state.appendLog("reply: " + reply)
	o.state.flush()

	return o.avatar.Speak(ctx, reply)
}
