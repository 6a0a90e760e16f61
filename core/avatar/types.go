package avatar

// ConnectionStatus is the state of the connection to the avatar service.
type ConnectionStatus int

const (
	ConnectionStatusConnecting ConnectionStatus = iota
	ConnectionStatusReady
	ConnectionStatusDegraded
)

func (s ConnectionStatus) String() string {
	switch s {
	case ConnectionStatusConnecting:
		return "connecting"
	case ConnectionStatusReady:
		return "ready"
	case ConnectionStatusDegraded:
		return "degraded"
	}
	return "unknown"
}

// Session is the remote avatar service's handle for an open streaming
// connection.
type Session struct {
	ID string
	// Media is known at session creation for some providers; consumers must
	// still wait for the stream ready callback before attaching to it.
	Media MediaHandle
	// DurationLimitSeconds is the server-side session limit, zero if unknown.
	DurationLimitSeconds int
}

// MediaHandle is an opaque reference to the live audio/video stream of the
// avatar. For room-based providers this is the room URL and a join token.
type MediaHandle struct {
	URL         string
	AccessToken string
}

func (m MediaHandle) IsZero() bool {
	return m.URL == "" && m.AccessToken == ""
}
