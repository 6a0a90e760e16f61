package avatar

import "testing"

func TestNewSessionOptionsDefaults(t *testing.T) {
	options := NewSessionOptions()

	if options.AvatarName != DefaultAvatarName {
		t.Fatalf("expected avatar name %q, got %q", DefaultAvatarName, options.AvatarName)
	}
	if options.Quality != QualityHigh {
		t.Fatalf("expected quality %q, got %q", QualityHigh, options.Quality)
	}
}

func TestNewSessionOptionsIgnoresEmptyOverrides(t *testing.T) {
	options := NewSessionOptions(WithAvatarName(""), WithQuality(""), WithAvatarName("lily"))

	if options.AvatarName != "lily" {
		t.Fatalf("expected avatar name %q, got %q", "lily", options.AvatarName)
	}
	if options.Quality != QualityHigh {
		t.Fatalf("expected quality %q, got %q", QualityHigh, options.Quality)
	}
}

func TestConnectionStatusString(t *testing.T) {
	testCases := map[ConnectionStatus]string{
		ConnectionStatusConnecting: "connecting",
		ConnectionStatusReady:      "ready",
		ConnectionStatusDegraded:   "degraded",
		ConnectionStatus(42):       "unknown",
	}
	for status, expected := range testCases {
		if got := status.String(); got != expected {
			t.Fatalf("expected %q, got %q", expected, got)
		}
	}
}
