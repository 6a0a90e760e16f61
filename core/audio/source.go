package audio

import "context"

// CaptureSource is a microphone-like audio source that can be started and
// stopped repeatedly. onAudio receives raw frames in the source's encoding and
// must not block.
type CaptureSource interface {
	EncodingInfo() EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}
