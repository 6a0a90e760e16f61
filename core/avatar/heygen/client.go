// Package heygen is a client for the HeyGen streaming avatar API.
//
// The API key is only needed for CreateToken and Speak, which are meant to run
// on a trusted backend. NewSession and CloseSession authenticate with the
// short-lived token returned by CreateToken.
package heygen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL = "https://api.heygen.com"

	createTokenPath = "/v1/streaming.create_token"
	newSessionPath  = "/v1/streaming.new"
	startPath       = "/v1/streaming.start"
	taskPath        = "/v1/streaming.task"
	stopPath        = "/v1/streaming.stop"
	realtimePath    = "/v1/ws/streaming.chat"

	defaultTimeout = 30 * time.Second
)

// APIError is returned for every non-2xx response of the HeyGen API.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("heygen %s: status %d: %s", e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *APIError) ResponseStatus() int  { return e.StatusCode }
func (e *APIError) ResponseBody() string { return e.Body }

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type ClientOption func(*Client)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a HeyGen client. The API key defaults to the
// HEYGEN_API_KEY environment variable.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  os.Getenv("HEYGEN_API_KEY"),
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, request *http.Request) string {
					return "heygen " + request.URL.Path
				}),
			),
		},
		dialer:   websocket.DefaultDialer,
		sessions: map[string]*liveSession{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type tokenData struct {
	Token string `json:"token"`
}

// CreateToken returns a short-lived session token for the configured API key.
func (c *Client) CreateToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "create token")
	defer span.End()

	var response envelope[tokenData]
	if err := c.post(ctx, createTokenPath, c.apiKey, struct{}{}, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if response.Data.Token == "" {
		return "", fmt.Errorf("heygen %s: response contained no token", createTokenPath)
	}

	return response.Data.Token, nil
}

type taskRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	TaskType  string `json:"task_type"`
}

// Speak makes the avatar of the session say text verbatim.
func (c *Client) Speak(ctx context.Context, sessionID string, text string) error {
	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()

	request := taskRequest{SessionID: sessionID, Text: text, TaskType: "repeat"}
	if err := c.post(ctx, taskPath, c.apiKey, request, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, credential string, payload any, response any) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if response == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("error unmarshalling %s response: %w", path, err)
	}
	return nil
}
