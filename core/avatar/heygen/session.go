package heygen

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-avatar/core/avatar"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type voiceSettings struct {
	VoiceID string `json:"voice_id"`
}

type newSessionRequest struct {
	AvatarName string         `json:"avatar_name"`
	Quality    string         `json:"quality"`
	Voice      *voiceSettings `json:"voice,omitempty"`
	Version    string         `json:"version"`
}

// sessionData is the wire shape of a new session. Its field and method names
// line up with avatar.Session for copier.
type sessionData struct {
	ID                   string `json:"session_id"`
	URL                  string `json:"url"`
	AccessToken          string `json:"access_token"`
	DurationLimitSeconds int    `json:"session_duration_limit"`
	RealtimeEndpoint     string `json:"realtime_endpoint"`
}

func (d sessionData) Media() avatar.MediaHandle {
	return avatar.MediaHandle{URL: d.URL, AccessToken: d.AccessToken}
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// liveSession is what the client keeps about a session it opened.
type liveSession struct {
	token    string
	realtime *realtimeConn
}

// NewSession creates and starts a streaming session authenticated by token.
// The stream ready callback fires once the session is started; talking
// callbacks are fed by the realtime event socket.
func (c *Client) NewSession(ctx context.Context, token string, opts ...avatar.SessionOption) (*avatar.Session, error) {
	ctx, span := tracer.Start(ctx, "new session")
	defer span.End()

	options := avatar.NewSessionOptions(opts...)
	span.SetAttributes(
		attribute.String("avatar.name", options.AvatarName),
		attribute.String("avatar.quality", string(options.Quality)),
	)

	request := newSessionRequest{
		AvatarName: options.AvatarName,
		Quality:    string(options.Quality),
		Version:    "v2",
	}
	if options.Voice != "" {
		request.Voice = &voiceSettings{VoiceID: options.Voice}
	}

	var response envelope[sessionData]
	if err := c.post(ctx, newSessionPath, token, request, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	data := response.Data
	if data.ID == "" {
		err := fmt.Errorf("heygen %s: response contained no session id", newSessionPath)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := c.post(ctx, startPath, token, sessionRequest{SessionID: data.ID}, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.stopAbandoned(ctx, token, data.ID)
		return nil, err
	}

	var session avatar.Session
	if err := copier.Copy(&session, data); err != nil {
		err = fmt.Errorf("failed to map session: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.stopAbandoned(ctx, token, data.ID)
		return nil, err
	}

	live := &liveSession{token: token}
	realtime, err := c.openRealtime(ctx, data, token, options)
	if err != nil {
		// Speaking still works without the event socket, only the talking
		// callbacks are lost.
		logger.WarnContext(ctx, "failed to open realtime events", "session_id", data.ID, "error", err)
	} else {
		live.realtime = realtime
	}

	c.mu.Lock()
	c.sessions[data.ID] = live
	c.mu.Unlock()

	if options.StreamReadyCallback != nil {
		options.StreamReadyCallback(session.Media)
	}

	return &session, nil
}

// stopAbandoned stops a session that was created but could not be set up.
func (c *Client) stopAbandoned(ctx context.Context, token string, sessionID string) {
	if err := c.post(context.WithoutCancel(ctx), stopPath, token, sessionRequest{SessionID: sessionID}, nil); err != nil {
		logger.WarnContext(ctx, "failed to stop abandoned session", "session_id", sessionID, "error", err)
	}
}

// CloseSession stops the session on the HeyGen side and closes its event
// socket.
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "close session")
	defer span.End()

	c.mu.Lock()
	live := c.sessions[sessionID]
	delete(c.sessions, sessionID)
	c.mu.Unlock()

	credential := c.apiKey
	if live != nil {
		credential = live.token
		if live.realtime != nil {
			live.realtime.Close()
		}
	}

	if err := c.post(ctx, stopPath, credential, sessionRequest{SessionID: sessionID}, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
