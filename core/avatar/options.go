package avatar

const (
	DefaultAvatarName = "default"
	DefaultQuality    = QualityHigh
)

type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

type SessionOptions struct {
	AvatarName string
	Quality    Quality
	// Voice is the provider voice id, empty selects the avatar's default.
	Voice string

	StreamReadyCallback        func(media MediaHandle)
	AvatarStartTalkingCallback func()
	AvatarStopTalkingCallback  func()
}

type SessionOption func(*SessionOptions)

// NewSessionOptions applies opts on top of the default avatar name and
// quality.
func NewSessionOptions(opts ...SessionOption) SessionOptions {
	options := SessionOptions{AvatarName: DefaultAvatarName, Quality: DefaultQuality}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithAvatarName(name string) SessionOption {
	return func(o *SessionOptions) {
		if name != "" {
			o.AvatarName = name
		}
	}
}

func WithQuality(quality Quality) SessionOption {
	return func(o *SessionOptions) {
		if quality != "" {
			o.Quality = quality
		}
	}
}

func WithVoice(voice string) SessionOption {
	return func(o *SessionOptions) {
		o.Voice = voice
	}
}

// WithStreamReadyCallback registers the callback receiving the live media
// handle once the stream can be attached to.
func WithStreamReadyCallback(callback func(media MediaHandle)) SessionOption {
	return func(o *SessionOptions) {
		o.StreamReadyCallback = callback
	}
}

func WithAvatarStartTalkingCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.AvatarStartTalkingCallback = callback
	}
}

func WithAvatarStopTalkingCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.AvatarStopTalkingCallback = callback
	}
}
