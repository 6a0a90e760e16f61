package portaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-avatar/core/audio"
)

var _ audio.CaptureSource = (*Client)(nil)

// Client captures mono linear16 audio from the default input device.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	in         []int16

	mu      sync.Mutex
	cancel  context.CancelFunc
	readers sync.WaitGroup
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	encoding := audio.GetDefaultEncodingInfo()
	stream, err := portaudio.OpenDefaultStream(encoding.ChannelCount(), 0, float64(encoding.SampleRate), bufferSize, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}, nil
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	readCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.readers.Add(1)
	go func() {
		defer c.readers.Done()
		c.read(readCtx, onAudio)
	}()
	return nil
}

func (c *Client) read(ctx context.Context, onAudio func(audio []byte)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			logger.Warn("failed to read from portaudio stream", slog.Any("error", err))
			continue
		}

		frame := make([]byte, 2*len(c.in))
		for i, sample := range c.in {
			binary.LittleEndian.PutUint16(frame[2*i:], uint16(sample))
		}
		onAudio(frame)
	}
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	c.readers.Wait()
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
