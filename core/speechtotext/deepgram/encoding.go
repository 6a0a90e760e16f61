package deepgram

import (
	"fmt"
	"slices"

	"github.com/koscakluka/ema-avatar/core/audio"
)

var supportedSampleRates = []int{8000, 16000, 24000, 32000, 48000}

// listenEncoding is the encoding as the listen endpoint expects it in its
// query parameters.
type listenEncoding struct {
	SampleRate int
	Channels   int
	Format     string
}

func convertEncoding(encoding audio.EncodingInfo) (*listenEncoding, error) {
	if !slices.Contains(supportedSampleRates, encoding.SampleRate) {
		return nil, fmt.Errorf("unsupported sample rate %d", encoding.SampleRate)
	}

	converted := listenEncoding{SampleRate: encoding.SampleRate, Channels: encoding.ChannelCount()}
	switch encoding.Format {
	case audio.EncodingLinear16:
		converted.Format = "linear16"
	case audio.EncodingALaw, audio.EncodingMulaw:
		if encoding.SampleRate != 8000 {
			return nil, fmt.Errorf("unsupported sample rate %d for %s encoding", encoding.SampleRate, encoding.Format.Name())
		}
		converted.Format = encoding.Format.Name()
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding.Format.Name())
	}

	return &converted, nil
}
