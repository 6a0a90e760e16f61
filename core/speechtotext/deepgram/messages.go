package deepgram

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/koscakluka/ema-avatar/core/speechtotext"
)

const (
	typeCloseStream = string(api.TypeCloseStreamResponse)
	typeError       = "Error"
)

type controlMessage struct {
	Type string `json:"type"`
}

type errorMessage struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

// hypotheses tracks the transcript of one recognition run: segments the
// service finalised, in order, plus the current interim tail.
type hypotheses struct {
	finals  []string
	interim string
}

func (h *hypotheses) apply(transcript string, isFinal bool) {
	transcript = strings.TrimSpace(transcript)
	if isFinal {
		if transcript != "" {
			h.finals = append(h.finals, transcript)
		}
		h.interim = ""
		return
	}
	h.interim = transcript
}

func (h hypotheses) segments() []speechtotext.Segment {
	segments := make([]speechtotext.Segment, 0, len(h.finals)+1)
	for _, final := range h.finals {
		segments = append(segments, speechtotext.Segment{Transcript: final, IsFinal: true})
	}
	if h.interim != "" {
		segments = append(segments, speechtotext.Segment{Transcript: h.interim})
	}
	return segments
}

func (r *Recognizer) resetHypotheses() {
	r.hypothesesMu.Lock()
	defer r.hypothesesMu.Unlock()
	r.hypotheses = hypotheses{}
}

func (r *Recognizer) processMessage(msg []byte, options speechtotext.RecognitionOptions) {
	var parsedMsg controlMessage
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", slog.Any("error", err))
		return
	}

	switch parsedMsg.Type {
	case string(api.TypeMessageResponse):
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", slog.Any("error", err))
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		r.hypothesesMu.Lock()
		r.hypotheses.apply(msgResp.Channel.Alternatives[0].Transcript, msgResp.IsFinal)
		segments := r.hypotheses.segments()
		r.hypothesesMu.Unlock()

		if options.ResultCallback != nil {
			options.ResultCallback(segments)
		}

	case typeError:
		var msgResp errorMessage
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram error", slog.Any("error", err))
			return
		}
		description := msgResp.Description
		if description == "" {
			description = msgResp.Message
		}
		if options.ErrorCallback != nil {
			options.ErrorCallback(fmt.Errorf("deepgram: %s", description))
		}

	case string(api.TypeSpeechStartedResponse), string(api.TypeUtteranceEndResponse):
		// Recording boundaries are decided by the caller, not by voice
		// activity.
	}
}

func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
