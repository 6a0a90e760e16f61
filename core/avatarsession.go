package orchestration

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/koscakluka/ema-avatar/core/avatar"
	"github.com/koscakluka/ema-avatar/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// avatarSession owns the connection to the avatar service: it is the only
// component that changes the connection status or the session.
type avatarSession struct {
	state *State

	tokens  SessionTokenSource
	avatar  StreamingAvatar
	speaker AvatarSpeaker
	options []avatar.SessionOption

	mu          sync.Mutex
	connecting  bool
	established bool
	failed      bool
	pending     []events.Event
}

func newAvatarSession(state *State) *avatarSession {
	return &avatarSession{state: state}
}

func (a *avatarSession) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.connecting {
		a.mu.Unlock()
		return ErrAlreadyConnected
	}
	a.connecting = true
	a.mu.Unlock()

	ctx, span := tracer.Start(ctx, "connect avatar")
	defer span.End()

	err := a.connect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		a.mu.Lock()
		a.failed = true
		a.pending = nil
		a.mu.Unlock()

		a.state.setStatus(ConnectionStatusDegraded)
		a.state.appendLog(fmt.Sprintf("connect failed: %v", err))
		a.state.flush()
		return err
	}

	return nil
}

func (a *avatarSession) connect(ctx context.Context) error {
	if a.tokens == nil {
		return &CredentialError{Err: errNoTokenSource}
	}
	token, err := a.tokens.SessionToken(ctx)
	if err != nil {
		return &CredentialError{Err: err}
	}

	if a.avatar == nil {
		return &SessionError{Err: errNoStreamingAvatar}
	}
	opts := append(slices.Clone(a.options),
		avatar.WithStreamReadyCallback(func(media avatar.MediaHandle) {
			a.forward(events.NewStreamReady(media))
		}),
		avatar.WithAvatarStartTalkingCallback(func() {
			a.forward(events.NewAvatarStartTalking())
		}),
		avatar.WithAvatarStopTalkingCallback(func() {
			a.forward(events.NewAvatarStopTalking())
		}),
	)
	session, err := a.avatar.NewSession(ctx, token, opts...)
	if err != nil {
		return &SessionError{Err: err}
	}
	if session == nil || session.ID == "" {
		return &SessionError{Err: errEmptySessionID}
	}

	a.mu.Lock()
	a.established = true
	a.state.setSession(*session)
	a.state.setStatus(ConnectionStatusReady)
	a.state.appendLog("session: " + session.ID)
	for _, event := range a.pending {
		a.emitWithLog(event)
	}
	a.pending = nil
	a.mu.Unlock()
	a.state.flush()

	return nil
}

// forward passes an avatar callback on as an event. Callbacks that arrive
// before the session is established are held until it is.
func (a *avatarSession) forward(event events.Event) {
	a.mu.Lock()
	switch {
	case a.failed:
	case !a.established:
		a.pending = append(a.pending, event)
	default:
		a.emitWithLog(event)
	}
	a.mu.Unlock()
	a.state.flush()
}

func (a *avatarSession) emitWithLog(event events.Event) {
	a.state.emit(event)
	switch event.(type) {
	case events.StreamReady:
		a.state.appendLog("stream ready")
	case events.AvatarStartTalking:
		a.state.appendLog("avatar talking")
	case events.AvatarStopTalking:
		a.state.appendLog("avatar stopped talking")
	}
}

func (a *avatarSession) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return &SpeakError{Err: ErrEmptyText}
	}

	session := a.state.currentSession()
	if session == nil {
		return ErrNoSession
	}

	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()
	span.SetAttributes(attribute.String("avatar.session_id", session.ID))

	if a.speaker == nil {
		err := &SpeakError{Err: errNoSpeaker}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := a.speaker.Speak(ctx, session.ID, text); err != nil {
		speakErr := &SpeakError{Err: err}
		span.RecordError(speakErr)
		span.SetStatus(codes.Error, speakErr.Error())
		return speakErr
	}

	return nil
}

func (a *avatarSession) Close(ctx context.Context) error {
	session := a.state.currentSession()
	if session == nil {
		return nil
	}

	switch closer := a.avatar.(type) {
	case interface {
		CloseSession(ctx context.Context, sessionID string) error
	}:
		if err := closer.CloseSession(ctx, session.ID); err != nil {
			return fmt.Errorf("failed to close avatar session: %w", err)
		}
	}
	return nil
}
