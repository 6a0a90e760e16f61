package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/koscakluka/ema-avatar/core/avatar"
	"github.com/koscakluka/ema-avatar/core/events"
	"github.com/koscakluka/ema-avatar/core/speechtotext"
)

type statusErrorStub struct {
	status int
	body   string
}

func (e statusErrorStub) Error() string        { return fmt.Sprintf("status %d: %s", e.status, e.body) }
func (e statusErrorStub) ResponseStatus() int  { return e.status }
func (e statusErrorStub) ResponseBody() string { return e.body }

type tokenSourceStub struct {
	token string
	err   error
	calls atomic.Int32
}

func (s *tokenSourceStub) SessionToken(context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, s.err
}

type streamingAvatarStub struct {
	session *avatar.Session
	err     error
	// beforeReturn is called with the session options before NewSession
	// returns, the way a provider may fire callbacks during setup.
	beforeReturn func(options avatar.SessionOptions)

	mu       sync.Mutex
	options  avatar.SessionOptions
	tokens   []string
	closedID string
}

func (s *streamingAvatarStub) NewSession(_ context.Context, token string, opts ...avatar.SessionOption) (*avatar.Session, error) {
	options := avatar.NewSessionOptions(opts...)

	s.mu.Lock()
	s.options = options
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()

	if s.beforeReturn != nil {
		s.beforeReturn(options)
	}
	return s.session, s.err
}

func (s *streamingAvatarStub) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closedID = sessionID
	return nil
}

func (s *streamingAvatarStub) sessionOptions() avatar.SessionOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

type spokenText struct {
	sessionID string
	text      string
}

type speakerStub struct {
	err error

	mu     sync.Mutex
	spoken []spokenText
}

func (s *speakerStub) Speak(_ context.Context, sessionID string, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, spokenText{sessionID: sessionID, text: text})
	s.mu.Unlock()
	return s.err
}

func (s *speakerStub) calls() []spokenText {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]spokenText(nil), s.spoken...)
}

type completionStub struct {
	reply string
	err   error
	// started is signalled, if set, when Complete is entered.
	started chan string
	// release blocks Complete, if set, until it is closed.
	release chan struct{}

	calls atomic.Int32
}

func (s *completionStub) Complete(_ context.Context, text string) (string, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- text
	}
	if s.release != nil {
		<-s.release
	}
	return s.reply, s.err
}

type recognizerStub struct {
	unsupported bool
	startErr    error
	// startRelease blocks Start, if set, until it is closed.
	startRelease chan struct{}
	startEntered chan struct{}
	// stopRelease blocks Stop, if set, until it is closed.
	stopRelease chan struct{}
	stopEntered chan struct{}

	mu         sync.Mutex
	options    speechtotext.RecognitionOptions
	startCalls int
	stopCalls  int
	starting   bool
	// stopsWhileStarting counts Stop calls made before Start returned.
	stopsWhileStarting int
}

func (r *recognizerStub) Supported() bool { return !r.unsupported }

func (r *recognizerStub) Start(_ context.Context, opts ...speechtotext.RecognitionOption) error {
	var options speechtotext.RecognitionOptions
	for _, opt := range opts {
		opt(&options)
	}

	r.mu.Lock()
	r.startCalls++
	r.options = options
	r.starting = true
	r.mu.Unlock()

	if r.startEntered != nil {
		r.startEntered <- struct{}{}
	}
	if r.startRelease != nil {
		<-r.startRelease
	}

	r.mu.Lock()
	r.starting = false
	r.mu.Unlock()
	return r.startErr
}

func (r *recognizerStub) Stop() error {
	r.mu.Lock()
	r.stopCalls++
	if r.starting {
		r.stopsWhileStarting++
	}
	r.mu.Unlock()

	if r.stopEntered != nil {
		r.stopEntered <- struct{}{}
	}
	if r.stopRelease != nil {
		<-r.stopRelease
	}
	return nil
}

func (r *recognizerStub) current() speechtotext.RecognitionOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options
}

func (r *recognizerStub) results(segments ...speechtotext.Segment) {
	if callback := r.current().ResultCallback; callback != nil {
		callback(segments)
	}
}

func (r *recognizerStub) counts() (start int, stop int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startCalls, r.stopCalls
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(o *Orchestrator) *eventRecorder {
	recorder := &eventRecorder{}
	o.Subscribe(func(event events.Event) {
		recorder.mu.Lock()
		recorder.events = append(recorder.events, event)
		recorder.mu.Unlock()
	})
	return recorder
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func logMessages(o *Orchestrator) []string {
	var messages []string
	for _, entry := range o.Snapshot().Log {
		messages = append(messages, entry.Message)
	}
	return messages
}

func countLogPrefix(o *Orchestrator, prefix string) int {
	count := 0
	for _, message := range logMessages(o) {
		if strings.HasPrefix(message, prefix) {
			count++
		}
	}
	return count
}

func requireLogPrefix(t *testing.T, o *Orchestrator, prefix string) {
	t.Helper()
	if countLogPrefix(o, prefix) == 0 {
		t.Fatalf("expected a log entry starting with %q, got %q", prefix, logMessages(o))
	}
}

// connectedOrchestrator returns an orchestrator with an established session
// "session-1".
func connectedOrchestrator(t *testing.T, opts ...OrchestratorOption) *Orchestrator {
	t.Helper()

	base := []OrchestratorOption{
		WithSessionTokenSource(&tokenSourceStub{token: "token"}),
		WithStreamingAvatar(&streamingAvatarStub{session: &avatar.Session{ID: "session-1"}}),
	}
	o := NewOrchestrator(append(base, opts...)...)
	t.Cleanup(o.Close)

	if err := o.Connect(context.Background()); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	return o
}
