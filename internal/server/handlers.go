package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	SessionTokenPath = "/api/session-token"
	CompletionPath   = "/api/gpt"
	SpeakPath        = "/api/speak"
	HealthPath       = "/healthz"
)

type Handlers struct {
	Tokens    TokenIssuer
	Completer Completer
	Speaker   Speaker
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET(HealthPath, func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST(SessionTokenPath, h.sessionToken)
	e.POST(CompletionPath, h.completion)
	e.POST(SpeakPath, h.speak)
}

type errorResponse struct {
	Error string `json:"error"`
}

type tokenData struct {
	Token string `json:"token"`
}

type sessionTokenResponse struct {
	Data  tokenData `json:"data"`
	Error *string   `json:"error"`
}

func (h Handlers) sessionToken(c echo.Context) error {
	token, err := h.Tokens.CreateToken(c.Request().Context())
	if err != nil {
		return upstreamError(c, "session token", err)
	}
	return c.JSON(http.StatusOK, sessionTokenResponse{Data: tokenData{Token: token}})
}

type completionRequest struct {
	Text string `json:"text"`
}

type completionResponse struct {
	Reply string `json:"reply"`
}

func (h Handlers) completion(c echo.Context) error {
	var request completionRequest
	if err := c.Bind(&request); err != nil || strings.TrimSpace(request.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "text required"})
	}

	reply, err := h.Completer.Complete(c.Request().Context(), request.Text)
	if err != nil {
		return upstreamError(c, "completion", err)
	}
	return c.JSON(http.StatusOK, completionResponse{Reply: reply})
}

type speakRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type speakResponse struct {
	OK bool `json:"ok"`
}

func (h Handlers) speak(c echo.Context) error {
	var request speakRequest
	if err := c.Bind(&request); err != nil || request.SessionID == "" || request.Text == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "sessionId and text required"})
	}

	if err := h.Speaker.Speak(c.Request().Context(), request.SessionID, request.Text); err != nil {
		return upstreamError(c, "speak", err)
	}
	return c.JSON(http.StatusOK, speakResponse{OK: true})
}

// upstreamError relays a provider's status and body when there is one, and
// answers 500 otherwise.
func upstreamError(c echo.Context, operation string, err error) error {
	logger.WarnContext(c.Request().Context(), operation+" failed", "error", err)

	var response interface {
		ResponseStatus() int
		ResponseBody() string
	}
	if errors.As(err, &response) && response.ResponseStatus() != 0 {
		body := response.ResponseBody()
		if body == "" {
			return c.JSON(response.ResponseStatus(), errorResponse{Error: err.Error()})
		}
		return c.Blob(response.ResponseStatus(), echo.MIMEApplicationJSON, []byte(body))
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
