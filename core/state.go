package orchestration

import (
	"slices"
	"sync"
	"time"

	"github.com/koscakluka/ema-avatar/core/avatar"
	"github.com/koscakluka/ema-avatar/core/events"
)

type ConnectionStatus = avatar.ConnectionStatus

const (
	ConnectionStatusConnecting = avatar.ConnectionStatusConnecting
	ConnectionStatusReady      = avatar.ConnectionStatusReady
	ConnectionStatusDegraded   = avatar.ConnectionStatusDegraded
)

type CaptureState int

const (
	CaptureStateIdle CaptureState = iota
	CaptureStateRecording
)

func (s CaptureState) String() string {
	switch s {
	case CaptureStateIdle:
		return "idle"
	case CaptureStateRecording:
		return "recording"
	}
	return "unknown"
}

// State is the single state object of an orchestrator. Every component reads
// and changes it through the methods below, and every change is announced on
// the event bus.
//
// Transitions only enqueue their events. Callers flush once they no longer
// hold any of their own locks.
type State struct {
	mu  sync.Mutex
	bus *eventBus
	now func() time.Time

	status           ConnectionStatus
	session          *avatar.Session
	controlsEnabled  bool
	captureState     CaptureState
	captureAvailable bool
	captureStopping  bool
	log              []events.LogEntry
}

func newState(bus *eventBus) *State {
	return &State{
		bus:             bus,
		now:             time.Now,
		status:          ConnectionStatusConnecting,
		controlsEnabled: true,
		captureState:    CaptureStateIdle,
	}
}

// Snapshot is a point-in-time copy of the orchestrator state.
type Snapshot struct {
	Status           ConnectionStatus
	Session          *avatar.Session
	ControlsEnabled  bool
	CaptureState     CaptureState
	CaptureAvailable bool
	CaptureStopping  bool
	Log              []events.LogEntry
}

// CanSend reports whether a typed turn would currently be accepted.
func (s Snapshot) CanSend() bool {
	return s.ControlsEnabled
}

// CanToggleCapture reports whether starting or stopping capture is currently
// allowed.
func (s Snapshot) CanToggleCapture() bool {
	return s.CaptureAvailable && s.ControlsEnabled && !s.CaptureStopping
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session *avatar.Session
	if s.session != nil {
		sessionCopy := *s.session
		session = &sessionCopy
	}

	return Snapshot{
		Status:           s.status,
		Session:          session,
		ControlsEnabled:  s.controlsEnabled,
		CaptureState:     s.captureState,
		CaptureAvailable: s.captureAvailable,
		CaptureStopping:  s.captureStopping,
		Log:              slices.Clone(s.log),
	}
}

func (s *State) flush() {
	s.bus.drain()
}

func (s *State) emit(event events.Event) {
	s.bus.enqueue(event)
}

func (s *State) currentSession() *avatar.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// setStatus moves the connection status. Degraded is final.
func (s *State) setStatus(status ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == status || s.status == ConnectionStatusDegraded {
		return
	}
	s.status = status
	s.bus.enqueue(events.NewStatusChanged(status))
}

func (s *State) setSession(session avatar.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &session
	s.bus.enqueue(events.NewSessionEstablished(session.ID))
}

// acquireControls disables the controls and reports whether they were enabled
// before, so only one caller can hold them.
func (s *State) acquireControls() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.controlsEnabled {
		return false
	}
	s.controlsEnabled = false
	s.bus.enqueue(events.NewControlsChanged(false))
	return true
}

func (s *State) releaseControls() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controlsEnabled {
		return
	}
	s.controlsEnabled = true
	s.bus.enqueue(events.NewControlsChanged(true))
}

func (s *State) setCaptureAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.captureAvailable == available {
		return
	}
	s.captureAvailable = available
	s.bus.enqueue(events.NewCaptureAvailabilityChanged(available))
}

func (s *State) setCaptureRecording() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captureState = CaptureStateRecording
	s.bus.enqueue(events.NewCaptureStarted())
}

func (s *State) setCaptureIdle(reason events.CaptureStopReason, transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captureState = CaptureStateIdle
	s.bus.enqueue(events.NewCaptureStopped(reason, transcript))
}

func (s *State) setCaptureStopping(stopping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureStopping = stopping
}

func (s *State) appendLog(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := events.LogEntry{Time: s.now(), Message: message}
	s.log = append(s.log, entry)
	s.bus.enqueue(events.NewLogAppended(entry))
}
