package orchestration

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConnected = errors.New("avatar session already connecting or connected")
	ErrNoSession        = errors.New("no avatar session")
	ErrEmptyText        = errors.New("text to speak is empty")

	ErrEmptyInput   = errors.New("input is empty")
	ErrTurnInFlight = errors.New("a turn is already in progress")

	ErrCaptureUnavailable = errors.New("speech capture is not available")
	ErrCaptureActive      = errors.New("speech capture is already recording")
	ErrCaptureStopping    = errors.New("speech capture is still stopping")
	ErrCaptureIdle        = errors.New("speech capture is not recording")

	errNoTokenSource     = errors.New("no session token source configured")
	errNoStreamingAvatar = errors.New("no streaming avatar configured")
	errNoSpeaker         = errors.New("no avatar speaker configured")
	errEmptySessionID    = errors.New("avatar service returned an empty session id")
)

// CredentialError is returned by Connect when the session token could not be
// obtained.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("failed to obtain session token: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// SessionError is returned by Connect when the avatar service refused or
// failed to create a session.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("failed to create avatar session: %v", e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// SpeakError is returned when the avatar did not accept the text to speak.
type SpeakError struct {
	Err error
}

func (e *SpeakError) Error() string {
	return fmt.Sprintf("failed to speak: %v", e.Err)
}

func (e *SpeakError) Unwrap() error { return e.Err }

// CompletionError wraps every completion failure. Status is zero when no HTTP
// response was received.
type CompletionError struct {
	Status int
	Body   string
	Err    error
}

func (e *CompletionError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("completion failed: %s", e.Body)
	}
	return fmt.Sprintf("completion failed with status %d: %s", e.Status, e.Body)
}

func (e *CompletionError) Unwrap() error { return e.Err }
