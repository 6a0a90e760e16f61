package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/ema-avatar/core/avatar"
	"github.com/koscakluka/ema-avatar/core/speechtotext"
)

type OrchestratorOption func(*Orchestrator)

// SessionTokenSource hands out short-lived avatar session tokens, normally by
// asking the trusted backend.
type SessionTokenSource interface {
	SessionToken(ctx context.Context) (string, error)
}

func WithSessionTokenSource(source SessionTokenSource) OrchestratorOption {
	return func(o *Orchestrator) {
		o.avatar.tokens = source
	}
}

// StreamingAvatar opens the live avatar session. Implementations may also
// provide CloseSession(ctx, sessionID) error, which is used on Close.
type StreamingAvatar interface {
	NewSession(ctx context.Context, token string, opts ...avatar.SessionOption) (*avatar.Session, error)
}

func WithStreamingAvatar(client StreamingAvatar) OrchestratorOption {
	return func(o *Orchestrator) {
		o.avatar.avatar = client
	}
}

type AvatarSpeaker interface {
	Speak(ctx context.Context, sessionID string, text string) error
}

func WithAvatarSpeaker(speaker AvatarSpeaker) OrchestratorOption {
	return func(o *Orchestrator) {
		o.avatar.speaker = speaker
	}
}

func WithAvatarSessionOptions(opts ...avatar.SessionOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.avatar.options = append(o.avatar.options, opts...)
	}
}

type CompletionClient interface {
	Complete(ctx context.Context, text string) (string, error)
}

func WithCompletionClient(client CompletionClient) OrchestratorOption {
	return func(o *Orchestrator) {
		o.completion.client = client
	}
}

// SpeechRecognizer is a continuous recogniser. Implementations may also
// provide Supported() bool; a recogniser reporting false is treated as
// absent.
type SpeechRecognizer interface {
	Start(ctx context.Context, opts ...speechtotext.RecognitionOption) error
	Stop() error
}

func WithSpeechRecognizer(recognizer SpeechRecognizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.capture.recognizer = recognizer
	}
}

func WithSpeechLanguage(language string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.capture.language = language
	}
}

// WithCaptureCeiling overrides the maximum length of a single recording.
// Non-positive values are ignored.
func WithCaptureCeiling(ceiling time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if ceiling > 0 {
			o.capture.ceiling = ceiling
		}
	}
}
