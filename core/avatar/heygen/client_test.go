package heygen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-avatar/core/avatar"
)

type recordedRequest struct {
	path          string
	authorization string
	body          map[string]any
}

type fakeHeyGen struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	requests []recordedRequest
	// realtimeQuery is the query of the last realtime connection.
	realtimeQuery chan map[string]string
	realtimeConns chan *websocket.Conn
	failPath      string
}

func newFakeHeyGen(t *testing.T) *fakeHeyGen {
	t.Helper()

	fake := &fakeHeyGen{
		t:             t,
		realtimeQuery: make(chan map[string]string, 1),
		realtimeConns: make(chan *websocket.Conn, 1),
	}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeHeyGen) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == realtimePath {
		f.realtimeQuery <- map[string]string{
			"session_id":    r.URL.Query().Get("session_id"),
			"session_token": r.URL.Query().Get("session_token"),
		}
		conn, err := f.upgrader.Upgrade(w, r, nil)
		if err != nil {
			f.t.Errorf("failed to upgrade realtime connection: %v", err)
			return
		}
		f.realtimeConns <- conn
		return
	}

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		path:          r.URL.Path,
		authorization: r.Header.Get("Authorization"),
		body:          body,
	})
	failPath := f.failPath
	f.mu.Unlock()

	if r.URL.Path == failPath {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":401,"message":"invalid token"}`))
		return
	}

	switch r.URL.Path {
	case createTokenPath:
		_, _ = w.Write([]byte(`{"error":null,"data":{"token":"session-token"}}`))
	case newSessionPath:
		_, _ = w.Write([]byte(`{"code":100,"data":{"session_id":"session-1","url":"wss://room.example","access_token":"room-token","session_duration_limit":600}}`))
	default:
		_, _ = w.Write([]byte(`{"code":100,"data":{}}`))
	}
}

func (f *fakeHeyGen) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeHeyGen) client() *Client {
	return NewClient(
		WithAPIKey("api-key"),
		WithBaseURL(f.server.URL),
		WithHTTPClient(f.server.Client()),
	)
}

func TestCreateTokenUsesAPIKey(t *testing.T) {
	fake := newFakeHeyGen(t)

	token, err := fake.client().CreateToken(context.Background())
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if token != "session-token" {
		t.Fatalf("expected session-token, got %q", token)
	}

	requests := fake.recorded()
	if len(requests) != 1 || requests[0].authorization != "Bearer api-key" {
		t.Fatalf("expected one request authorised with the api key, got %+v", requests)
	}
}

func TestNonSuccessStatusIsAPIError(t *testing.T) {
	fake := newFakeHeyGen(t)
	fake.failPath = createTokenPath

	_, err := fake.client().CreateToken(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Body != `{"code":401,"message":"invalid token"}` {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestNewSessionCreatesStartsAndReportsStream(t *testing.T) {
	fake := newFakeHeyGen(t)
	client := fake.client()

	var media avatar.MediaHandle
	started := make(chan struct{}, 1)
	stopped := make(chan struct{}, 1)

	session, err := client.NewSession(context.Background(), "session-token",
		avatar.WithAvatarName("anna"),
		avatar.WithVoice("voice-1"),
		avatar.WithStreamReadyCallback(func(handle avatar.MediaHandle) { media = handle }),
		avatar.WithAvatarStartTalkingCallback(func() { started <- struct{}{} }),
		avatar.WithAvatarStopTalkingCallback(func() { stopped <- struct{}{} }),
	)
	if err != nil {
		t.Fatalf("expected session, got %v", err)
	}

	if session.ID != "session-1" || session.DurationLimitSeconds != 600 {
		t.Fatalf("unexpected session %+v", session)
	}
	expectedMedia := avatar.MediaHandle{URL: "wss://room.example", AccessToken: "room-token"}
	if session.Media != expectedMedia || media != expectedMedia {
		t.Fatalf("expected media %+v, got session %+v and callback %+v", expectedMedia, session.Media, media)
	}

	requests := fake.recorded()
	if len(requests) != 2 || requests[0].path != newSessionPath || requests[1].path != startPath {
		t.Fatalf("expected new then start, got %+v", requests)
	}
	newSession := requests[0]
	if newSession.authorization != "Bearer session-token" {
		t.Fatalf("expected session token authorisation, got %q", newSession.authorization)
	}
	if newSession.body["avatar_name"] != "anna" || newSession.body["quality"] != "high" || newSession.body["version"] != "v2" {
		t.Fatalf("unexpected new session body %+v", newSession.body)
	}
	if voice, ok := newSession.body["voice"].(map[string]any); !ok || voice["voice_id"] != "voice-1" {
		t.Fatalf("expected voice settings, got %+v", newSession.body["voice"])
	}
	if requests[1].body["session_id"] != "session-1" {
		t.Fatalf("expected start of session-1, got %+v", requests[1].body)
	}

	query := <-fake.realtimeQuery
	if query["session_id"] != "session-1" || query["session_token"] != "session-token" {
		t.Fatalf("unexpected realtime query %+v", query)
	}

	conn := <-fake.realtimeConns
	defer conn.Close()
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event_type":"avatar_start_talking"}`))
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event_type":"avatar_stop_talking"}`))

	for name, signal := range map[string]chan struct{}{"start talking": started, "stop talking": stopped} {
		select {
		case <-signal:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s callback", name)
		}
	}

	if err := client.CloseSession(context.Background(), "session-1"); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}
	requests = fake.recorded()
	last := requests[len(requests)-1]
	if last.path != stopPath || last.body["session_id"] != "session-1" || last.authorization != "Bearer session-token" {
		t.Fatalf("expected stop of session-1 with the session token, got %+v", last)
	}
}

func TestNewSessionFailsWhenStartFails(t *testing.T) {
	fake := newFakeHeyGen(t)
	fake.failPath = startPath

	readyCalled := false
	_, err := fake.client().NewSession(context.Background(), "session-token",
		avatar.WithStreamReadyCallback(func(avatar.MediaHandle) { readyCalled = true }),
	)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Path != startPath {
		t.Fatalf("expected start *APIError, got %v", err)
	}
	if readyCalled {
		t.Fatalf("expected no stream ready callback for a failed session")
	}

	requests := fake.recorded()
	if len(requests) != 3 {
		t.Fatalf("expected new, start and stop requests, got %d", len(requests))
	}
	last := requests[2]
	if last.path != stopPath || last.body["session_id"] != "session-1" || last.authorization != "Bearer session-token" {
		t.Fatalf("expected the created session to be stopped, got %+v", last)
	}
}

func TestSpeakSendsRepeatTask(t *testing.T) {
	fake := newFakeHeyGen(t)

	if err := fake.client().Speak(context.Background(), "session-1", "Hallo"); err != nil {
		t.Fatalf("expected speak to succeed, got %v", err)
	}

	requests := fake.recorded()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	request := requests[0]
	if request.path != taskPath || request.authorization != "Bearer api-key" {
		t.Fatalf("unexpected speak request %+v", request)
	}
	if request.body["session_id"] != "session-1" || request.body["text"] != "Hallo" || request.body["task_type"] != "repeat" {
		t.Fatalf("unexpected speak body %+v", request.body)
	}
}
