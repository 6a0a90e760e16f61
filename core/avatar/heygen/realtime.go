package heygen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-avatar/core/avatar"
)

const (
	eventAvatarStartTalking = "avatar_start_talking"
	eventAvatarStopTalking  = "avatar_stop_talking"
)

type realtimeEvent struct {
	EventType string `json:"event_type"`
}

type realtimeConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	done      chan struct{}
}

func (c *Client) realtimeURL(data sessionData, token string) (string, error) {
	endpoint := data.RealtimeEndpoint
	if endpoint == "" {
		base, err := url.Parse(c.baseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base url: %w", err)
		}
		switch base.Scheme {
		case "https":
			base.Scheme = "wss"
		default:
			base.Scheme = "ws"
		}
		base.Path = realtimePath
		endpoint = base.String()
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid realtime endpoint: %w", err)
	}
	query := parsed.Query()
	if query.Get("session_id") == "" {
		query.Set("session_id", data.ID)
	}
	if query.Get("session_token") == "" {
		query.Set("session_token", token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) openRealtime(ctx context.Context, data sessionData, token string, options avatar.SessionOptions) (*realtimeConn, error) {
	if options.AvatarStartTalkingCallback == nil && options.AvatarStopTalkingCallback == nil {
		return nil, nil
	}

	endpoint, err := c.realtimeURL(data, token)
	if err != nil {
		return nil, err
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	realtime := &realtimeConn{conn: conn, done: make(chan struct{})}
	go realtime.readEvents(data.ID, options)
	return realtime, nil
}

func (r *realtimeConn) readEvents(sessionID string, options avatar.SessionOptions) {
	defer close(r.done)

	for {
		_, message, err := r.conn.ReadMessage()
		if err != nil {
			if !isClosedConnError(err) {
				logger.Warn("realtime events ended", "session_id", sessionID, "error", err)
			}
			return
		}

		var event realtimeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			logger.Warn("malformed realtime event", "session_id", sessionID, "error", err)
			continue
		}

		switch event.EventType {
		case eventAvatarStartTalking:
			if options.AvatarStartTalkingCallback != nil {
				options.AvatarStartTalkingCallback()
			}
		case eventAvatarStopTalking:
			if options.AvatarStopTalkingCallback != nil {
				options.AvatarStopTalkingCallback()
			}
		}
	}
}

func (r *realtimeConn) Close() {
	r.closeOnce.Do(func() {
		_ = r.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = r.conn.Close()
		<-r.done
	})
}

func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		strings.Contains(err.Error(), "use of closed network connection")
}
