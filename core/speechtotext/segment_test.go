package speechtotext

import "testing"

func TestJoin(t *testing.T) {
	testCases := []struct {
		name     string
		segments []Segment
		expected string
	}{
		{name: "empty", segments: nil, expected: ""},
		{name: "single", segments: []Segment{{Transcript: "hello"}}, expected: "hello"},
		{
			name: "keeps order and trims",
			segments: []Segment{
				{Transcript: " hello ", IsFinal: true},
				{Transcript: "there"},
			},
			expected: "hello there",
		},
		{
			name:     "skips blank segments",
			segments: []Segment{{Transcript: "a"}, {Transcript: "  "}, {Transcript: "b"}},
			expected: "a b",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := Join(testCase.segments); got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}
