package events

import "github.com/koscakluka/ema-avatar/core/avatar"

const (
	// KindStatusChanged identifies connection status transitions.
	KindStatusChanged Kind = "connection.status_changed"
	// KindSessionEstablished identifies a newly established avatar session.
	KindSessionEstablished Kind = "connection.session_established"
	// KindStreamReady identifies availability of the live media handle.
	KindStreamReady Kind = "connection.stream_ready"
	// KindAvatarStartTalking identifies the avatar starting to speak.
	KindAvatarStartTalking Kind = "connection.avatar_start_talking"
	// KindAvatarStopTalking identifies the avatar finishing speaking.
	KindAvatarStopTalking Kind = "connection.avatar_stop_talking"
)

// StatusChanged carries the new connection status.
type StatusChanged struct {
	Base
	Status avatar.ConnectionStatus
}

// NewStatusChanged creates a connection status change event.
func NewStatusChanged(status avatar.ConnectionStatus) StatusChanged {
	return StatusChanged{Base: NewBase(KindStatusChanged), Status: status}
}

// SessionEstablished carries the id of the established avatar session.
type SessionEstablished struct {
	Base
	SessionID string
}

// NewSessionEstablished creates a session established event.
func NewSessionEstablished(sessionID string) SessionEstablished {
	return SessionEstablished{Base: NewBase(KindSessionEstablished), SessionID: sessionID}
}

// StreamReady carries the live media handle of the avatar stream.
type StreamReady struct {
	Base
	Media avatar.MediaHandle
}

// NewStreamReady creates a stream ready event.
func NewStreamReady(media avatar.MediaHandle) StreamReady {
	return StreamReady{Base: NewBase(KindStreamReady), Media: media}
}

// AvatarStartTalking marks when the avatar starts speaking.
type AvatarStartTalking struct{ Base }

// NewAvatarStartTalking creates an avatar start talking event.
func NewAvatarStartTalking() AvatarStartTalking {
	return AvatarStartTalking{Base: NewBase(KindAvatarStartTalking)}
}

// AvatarStopTalking marks when the avatar stops speaking.
type AvatarStopTalking struct{ Base }

// NewAvatarStopTalking creates an avatar stop talking event.
func NewAvatarStopTalking() AvatarStopTalking {
	return AvatarStopTalking{Base: NewBase(KindAvatarStopTalking)}
}
