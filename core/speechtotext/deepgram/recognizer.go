package deepgram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-avatar/core/audio"
	"github.com/koscakluka/ema-avatar/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
	defaultLanguage  = "en-US"

	closeTimeout = 2 * time.Second
)

var ErrAlreadyRunning = errors.New("recognition already running")

// Recognizer is a continuous speech recognizer backed by the Deepgram live
// transcription websocket. Audio comes from the configured capture source and
// is only streamed between Start and Stop.
type Recognizer struct {
	apiKey    string
	listenURL string
	model     string
	language  string
	source    audio.CaptureSource
	dialer    *websocket.Dialer

	connMu     sync.Mutex
	conn       *websocket.Conn
	readerDone chan struct{}
	starting   bool
	// run is bumped by every Stop so a Start still dialing can tell it was
	// stopped.
	run uint64

	hypothesesMu sync.Mutex
	hypotheses   hypotheses
}

type RecognizerOption func(*Recognizer)

// WithAPIKey sets the API key, by default it is read from DEEPGRAM_API_KEY.
func WithAPIKey(apiKey string) RecognizerOption {
	return func(r *Recognizer) { r.apiKey = apiKey }
}

func WithListenURL(listenURL string) RecognizerOption {
	return func(r *Recognizer) { r.listenURL = listenURL }
}

func WithModel(model string) RecognizerOption {
	return func(r *Recognizer) {
		if model != "" {
			r.model = model
		}
	}
}

func WithLanguage(language string) RecognizerOption {
	return func(r *Recognizer) {
		if language != "" {
			r.language = language
		}
	}
}

func NewRecognizer(source audio.CaptureSource, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		apiKey:    os.Getenv("DEEPGRAM_API_KEY"),
		listenURL: defaultListenURL,
		model:     defaultModel,
		language:  defaultLanguage,
		source:    source,
		dialer:    websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supported reports whether recognition can run at all on this host.
func (r *Recognizer) Supported() bool {
	return r != nil && r.source != nil && r.apiKey != ""
}

func (r *Recognizer) Start(ctx context.Context, opts ...speechtotext.RecognitionOption) error {
	ctx, span := tracer.Start(ctx, "start recognition")
	defer span.End()

	if !r.Supported() {
		err := fmt.Errorf("recognizer is missing an api key or an audio source")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	options := speechtotext.RecognitionOptions{
		Language:     r.language,
		EncodingInfo: r.source.EncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	r.connMu.Lock()
	if r.conn != nil || r.starting {
		r.connMu.Unlock()
		return ErrAlreadyRunning
	}
	r.starting = true
	run := r.run
	r.connMu.Unlock()

	conn, err := r.connect(ctx, *encoding, options.Language)

	r.connMu.Lock()
	r.starting = false
	if err != nil {
		r.connMu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to open websocket: %w", err)
	}
	if r.run != run {
		r.connMu.Unlock()
		logger.Debug("recognition stopped while connecting")
		_ = conn.Close()
		return nil
	}

	r.resetHypotheses()
	r.conn = conn
	r.readerDone = make(chan struct{})
	go r.readAndProcessMessages(conn, options, r.readerDone)
	r.connMu.Unlock()

	if err := r.source.StartCapture(ctx, r.sendAudio); err != nil {
		_ = r.Stop()
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	r.connMu.Lock()
	stopped := r.run != run
	r.connMu.Unlock()
	if stopped {
		// Stop ran while the source was starting and may have missed it.
		if err := r.source.StopCapture(); err != nil {
			logger.Warn("failed to stop audio capture", slog.Any("error", err))
		}
		return nil
	}

	if options.StartCallback != nil {
		options.StartCallback()
	}
	return nil
}

func (r *Recognizer) connect(ctx context.Context, encoding listenEncoding, language string) (*websocket.Conn, error) {
	listenURL, err := url.Parse(r.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", encoding.Format)
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", strconv.Itoa(encoding.Channels))
	queryParams.Set("model", r.model)
	queryParams.Set("language", language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("endpointing", "300")
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := r.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + r.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (r *Recognizer) sendAudio(audio []byte) {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return
	}
	if err := r.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		logger.Warn("failed to write audio to deepgram", slog.Any("error", err))
	}
}

// Stop stops audio capture, asks the service to flush what it has and waits
// for the connection to close. The end callback fires before Stop returns
// unless the service does not close the connection in time.
func (r *Recognizer) Stop() error {
	r.connMu.Lock()
	r.run++
	conn, readerDone := r.conn, r.readerDone
	r.conn = nil
	r.connMu.Unlock()

	var errs error
	if r.source != nil {
		if err := r.source.StopCapture(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to stop audio capture: %w", err))
		}
	}

	if conn == nil {
		return errs
	}

	if err := conn.WriteJSON(controlMessage{Type: typeCloseStream}); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to request stream close: %w", err))
	}

	select {
	case <-readerDone:
	case <-time.After(closeTimeout):
		logger.Warn("deepgram did not close the stream in time")
	}

	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = errors.Join(errs, err)
	}
	return errs
}

func (r *Recognizer) readAndProcessMessages(conn *websocket.Conn, options speechtotext.RecognitionOptions, done chan struct{}) {
	defer close(done)
	defer func() {
		if options.EndCallback != nil {
			options.EndCallback()
		}
	}()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !isClosedConnError(err) {
				logger.Warn("failed to read deepgram websocket message", slog.Any("error", err))
				if options.ErrorCallback != nil {
					options.ErrorCallback(fmt.Errorf("deepgram connection lost: %w", err))
				}
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			r.processMessage(msg, options)
		}
	}
}
