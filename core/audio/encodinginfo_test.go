package audio

import "testing"

func TestDefaultEncodingInfoIsValidMonoLinear16(t *testing.T) {
	info := GetDefaultEncodingInfo()

	if err := info.Validate(); err != nil {
		t.Fatalf("expected default encoding to be valid, got %v", err)
	}
	if got := info.FrameSize(); got != 2 {
		t.Fatalf("expected frame size 2, got %d", got)
	}
}

func TestEncodingInfoValidateRejectsUnknownFormat(t *testing.T) {
	info := EncodingInfo{SampleRate: 16000, Format: encodingFormat("opus")}

	if err := info.Validate(); err == nil {
		t.Fatalf("expected unknown format to be rejected")
	}
}

func TestEncodingInfoChannelCountDefaultsToMono(t *testing.T) {
	info := EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}

	if got := info.ChannelCount(); got != 1 {
		t.Fatalf("expected mono default, got %d channels", got)
	}
	if got := (EncodingInfo{SampleRate: 8000, Channels: 2, Format: EncodingLinear16}).FrameSize(); got != 4 {
		t.Fatalf("expected stereo linear16 frame size 4, got %d", got)
	}
}
