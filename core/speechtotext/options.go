package speechtotext

import "github.com/koscakluka/ema-avatar/core/audio"

// RecognitionOptions configures a continuous recognition run. Every callback
// is optional.
type RecognitionOptions struct {
	// StartCallback is called once the engine is listening.
	StartCallback func()
	// EndCallback is called once the engine stopped listening, requested or
	// not.
	EndCallback func()
	// ResultCallback receives the complete, ordered hypothesis list on every
	// recognition event. It replaces whatever was received before.
	ResultCallback func(segments []Segment)
	// ErrorCallback receives engine errors. Errors do not end recognition.
	ErrorCallback func(err error)

	Language     string
	EncodingInfo audio.EncodingInfo
}

type RecognitionOption func(*RecognitionOptions)

func WithStartCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.StartCallback = callback
	}
}

func WithEndCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.EndCallback = callback
	}
}

func WithResultCallback(callback func(segments []Segment)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ResultCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ErrorCallback = callback
	}
}

func WithLanguage(language string) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.Language = language
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
