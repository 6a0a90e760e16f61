// Package backend is the client side of the trusted backend that holds the
// provider credentials. It exposes the three calls the orchestrator needs:
// a short-lived avatar token, a language model completion and an avatar speak
// command.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	SessionTokenPath = "/api/session-token"
	CompletionPath   = "/api/gpt"
	SpeakPath        = "/api/speak"

	defaultTimeout = 30 * time.Second
)

var (
	ErrMissingToken = errors.New("no token in session-token response")
	ErrSpeakNotOK   = errors.New("speak was not acknowledged")
)

// StatusError is returned for every non-2xx response. Body is the response
// body, verbatim.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Path, e.StatusCode, body)
}

func (e *StatusError) ResponseStatus() int  { return e.StatusCode }
func (e *StatusError) ResponseBody() string { return e.Body }

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, request *http.Request) string {
					return "backend " + request.URL.Path
				}),
			),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sessionTokenResponse struct {
	Token string `json:"token"`
	Data  *struct {
		Token string `json:"token"`
	} `json:"data"`
}

// SessionToken fetches a short-lived avatar token. The token may be at the top
// level of the response or nested one level under "data".
func (c *Client) SessionToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "fetch session token")
	defer span.End()

	body, err := c.post(ctx, SessionTokenPath, struct{}{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var response sessionTokenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error unmarshalling session token response: %w", err)
	}

	token := response.Token
	if token == "" && response.Data != nil {
		token = response.Data.Token
	}
	if token == "" {
		err := fmt.Errorf("%w: %s", ErrMissingToken, strings.TrimSpace(string(body)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return token, nil
}

type completionRequest struct {
	Text string `json:"text"`
}

type completionResponse struct {
	Reply string `json:"reply"`
}

// Complete sends one prompt and returns the reply. No retries are made.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "complete")
	defer span.End()
	span.SetAttributes(attribute.Int("completion.input_length", len(text)))

	body, err := c.post(ctx, CompletionPath, completionRequest{Text: text})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var response completionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error unmarshalling completion response: %w", err)
	}

	return response.Reply, nil
}

type speakRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type speakResponse struct {
	OK bool `json:"ok"`
}

// Speak asks the avatar of the given session to say text, unmodified.
func (c *Client) Speak(ctx context.Context, sessionID string, text string) error {
	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()
	span.SetAttributes(attribute.String("avatar.session_id", sessionID))

	body, err := c.post(ctx, SpeakPath, speakRequest{SessionID: sessionID, Text: text})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var response speakResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("error unmarshalling speak response: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("%w: %s", ErrSpeakNotOK, strings.TrimSpace(string(body)))
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WarnContext(ctx, "backend returned non-2xx status", "path", path, "status", resp.StatusCode)
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
