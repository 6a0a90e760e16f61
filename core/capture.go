package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/koscakluka/ema-avatar/core/events"
	"github.com/koscakluka/ema-avatar/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

const DefaultCaptureCeiling = 60 * time.Second

const captureUnsupportedNotice = "speech capture unsupported: use the text input"

// transcriptCapture turns a continuous recogniser into push-to-talk: it keeps
// the transcript of the current recording and stops it on request or when the
// ceiling expires, whichever comes first.
type transcriptCapture struct {
	state      *State
	recognizer SpeechRecognizer
	ceiling    time.Duration
	language   string

	// onCeiling receives the transcript of a recording stopped by the ceiling.
	onCeiling func(transcript string)

	mu         sync.Mutex
	recording  bool
	stopping   bool
	generation uint64
	buffer     string
	timer      *time.Timer
	// started is closed once the recognizer's Start for the current
	// generation has returned.
	started chan struct{}
}

func newTranscriptCapture(state *State) *transcriptCapture {
	return &transcriptCapture{state: state, ceiling: DefaultCaptureCeiling}
}

// Available reports whether a recogniser is configured and usable. It is
// checked once, when the orchestrator is created.
func (c *transcriptCapture) Available() bool {
	if c.recognizer == nil {
		return false
	}
	if supported, ok := c.recognizer.(interface{ Supported() bool }); ok {
		return supported.Supported()
	}
	return true
}

func (c *transcriptCapture) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case !c.state.Snapshot().CaptureAvailable:
		c.mu.Unlock()
		return ErrCaptureUnavailable
	case c.stopping:
		c.mu.Unlock()
		return ErrCaptureStopping
	case c.recording:
		c.mu.Unlock()
		return ErrCaptureActive
	}

	c.generation++
	generation := c.generation
	c.recording = true
	c.buffer = ""
	c.timer = time.AfterFunc(c.ceiling, func() { c.ceilingReached(generation) })
	started := make(chan struct{})
	c.started = started
	defer close(started)
	c.state.setCaptureRecording()
	c.state.appendLog(fmt.Sprintf("capture started (max. %s)", c.ceiling))
	c.mu.Unlock()
	c.state.flush()

	ctx, span := tracer.Start(ctx, "start capture")
	defer span.End()

	opts := []speechtotext.RecognitionOption{
		speechtotext.WithResultCallback(func(segments []speechtotext.Segment) {
			c.onResult(generation, segments)
		}),
		speechtotext.WithErrorCallback(func(err error) {
			c.onError(generation, err)
		}),
		speechtotext.WithEndCallback(func() {
			c.onEnd(generation)
		}),
	}
	if c.language != "" {
		opts = append(opts, speechtotext.WithLanguage(c.language))
	}

	if err := c.recognizer.Start(ctx, opts...); err != nil {
		err = fmt.Errorf("failed to start speech capture: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		c.mu.Lock()
		if c.recording && c.generation == generation {
			c.recording = false
			c.timer.Stop()
			c.state.setCaptureIdle(events.CaptureStopReasonFailed, "")
		}
		c.state.emit(events.NewCaptureError(err))
		c.state.appendLog(fmt.Sprintf("speech capture start failed: %v", err))
		c.mu.Unlock()
		c.state.flush()
		return err
	}

	return nil
}

// Stop ends the current recording and returns its transcript. Stopping when
// not recording returns ErrCaptureIdle and changes nothing.
func (c *transcriptCapture) Stop() (string, error) {
	return c.stop(events.CaptureStopReasonManual, 0)
}

// stop performs the Recording to Idle transition at most once per recording.
// A non-zero generation limits it to that recording.
func (c *transcriptCapture) stop(reason events.CaptureStopReason, generation uint64) (string, error) {
	c.mu.Lock()
	if !c.recording || (generation != 0 && generation != c.generation) {
		c.mu.Unlock()
		return "", ErrCaptureIdle
	}
	c.recording = false
	c.stopping = true
	c.timer.Stop()
	transcript := c.buffer
	started := c.started
	c.state.setCaptureStopping(true)
	c.state.setCaptureIdle(reason, transcript)
	c.mu.Unlock()
	c.state.flush()

	// A recognizer still starting would otherwise come up after its Stop.
	if started != nil {
		<-started
	}
	if err := c.recognizer.Stop(); err != nil {
		logger.Warn("failed to stop speech recognizer", "error", err)
	}

	c.mu.Lock()
	c.stopping = false
	c.state.setCaptureStopping(false)
	c.mu.Unlock()
	c.state.flush()

	return transcript, nil
}

func (c *transcriptCapture) ceilingReached(generation uint64) {
	transcript, err := c.stop(events.CaptureStopReasonCeiling, generation)
	if err != nil {
		return
	}

	c.state.appendLog("capture ceiling reached")
	c.state.flush()

	if c.onCeiling != nil {
		c.onCeiling(transcript)
	}
}

// onResult replaces the buffer with the full hypothesis list, since every
// result carries all segments recognised so far.
func (c *transcriptCapture) onResult(generation uint64, segments []speechtotext.Segment) {
	c.mu.Lock()
	if !c.recording || c.generation != generation {
		c.mu.Unlock()
		return
	}
	c.buffer = speechtotext.Join(segments)
	c.state.emit(events.NewCaptureTranscriptUpdated(c.buffer))
	c.mu.Unlock()
	c.state.flush()
}

func (c *transcriptCapture) onError(generation uint64, err error) {
	c.mu.Lock()
	current := c.generation == generation
	c.mu.Unlock()
	if !current {
		return
	}

	c.state.emit(events.NewCaptureError(err))
	c.state.appendLog(fmt.Sprintf("speech capture error: %v", err))
	c.state.flush()
}

func (c *transcriptCapture) onEnd(generation uint64) {
	c.mu.Lock()
	unexpected := c.recording && c.generation == generation
	c.mu.Unlock()
	if !unexpected {
		return
	}

	logger.Info("speech recognizer ended while recording")
	c.state.appendLog("speech capture ended by the recogniser")
	c.state.flush()
}

func (c *transcriptCapture) Close() {
	_, _ = c.Stop()
}
