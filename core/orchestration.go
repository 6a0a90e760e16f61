package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/koscakluka/ema-avatar/core/events"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Orchestrator ties the avatar session, speech capture and completion client
// together and runs one conversation turn at a time.
type Orchestrator struct {
	bus   *eventBus
	state *State

	avatar     *avatarSession
	capture    *transcriptCapture
	completion completion

	contextMu   sync.Mutex
	baseContext context.Context
	closeOnce   sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	bus := newEventBus()
	state := newState(bus)

	o := &Orchestrator{
		bus:         bus,
		state:       state,
		avatar:      newAvatarSession(state),
		capture:     newTranscriptCapture(state),
		baseContext: context.Background(),
	}
	o.capture.onCeiling = o.onCaptureCeiling

	for _, opt := range opts {
		opt(o)
	}

	if o.capture.Available() {
		state.setCaptureAvailable(true)
	} else {
		logger.Info(captureUnsupportedNotice)
		state.appendLog(captureUnsupportedNotice)
	}
	state.flush()

	return o
}

// Subscribe registers callback for every event emitted after this call.
// Callbacks are called in emission order and never concurrently. The
// returned function unsubscribes and may be called more than once.
func (o *Orchestrator) Subscribe(callback func(events.Event)) (unsubscribe func()) {
	return o.bus.subscribe(callback)
}

func (o *Orchestrator) Snapshot() Snapshot {
	return o.state.Snapshot()
}

// Connect establishes the avatar session. It may only be called once; a
// failure leaves the orchestrator degraded for the rest of its life.
//
// ctx is also used as the base context for turns triggered by the capture
// ceiling.
func (o *Orchestrator) Connect(ctx context.Context) error {
	o.contextMu.Lock()
	o.baseContext = ctx
	o.contextMu.Unlock()
	return o.avatar.Connect(ctx)
}

func (o *Orchestrator) context() context.Context {
	o.contextMu.Lock()
	defer o.contextMu.Unlock()
	return o.baseContext
}

// StartCapture starts a recording. It is refused while a turn is in flight.
func (o *Orchestrator) StartCapture(ctx context.Context) error {
	if !o.state.Snapshot().ControlsEnabled {
		return ErrTurnInFlight
	}
	return o.capture.Start(ctx)
}

// StopCapture stops the current recording and, if anything was recognised,
// runs a turn with the transcript before returning. Stopping when not
// recording does nothing.
func (o *Orchestrator) StopCapture(ctx context.Context) (*Turn, error) {
	transcript, err := o.capture.Stop()
	if errors.Is(err, ErrCaptureIdle) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return o.runCapturedTurn(ctx, transcript)
}

func (o *Orchestrator) onCaptureCeiling(transcript string) {
	ctx := o.context()
	if _, err := o.runCapturedTurn(ctx, transcript); err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
	}
}

func (o *Orchestrator) runCapturedTurn(ctx context.Context, transcript string) (*Turn, error) {
	turn, err := o.runTurn(ctx, transcript, events.TurnTriggerCaptured)
	switch {
	case errors.Is(err, ErrEmptyInput):
		o.state.appendLog("nothing recognised")
		o.state.flush()
		return nil, nil
	case errors.Is(err, ErrTurnInFlight):
		o.state.appendLog(fmt.Sprintf("transcript dropped: %v", err))
		o.state.flush()
		return nil, err
	case err != nil:
		return &turn, err
	}
	return &turn, nil
}

// Close stops any recording without running a turn and closes the avatar
// session if the avatar client supports it.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.capture.Close()

		ctx := context.WithoutCancel(o.context())
		if err := o.avatar.Close(ctx); err != nil {
			recordedErr := fmt.Errorf("failed to close avatar session: %w", err)
			span := trace.SpanFromContext(ctx)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			logger.Warn("failed to close avatar session", "error", err)
		}
	})
}
