package speechtotext

import "strings"

// Segment is one hypothesis segment of a recognition result.
type Segment struct {
	Transcript string
	// IsFinal is set once the engine will not revise the segment anymore. Not
	// every engine reports it.
	IsFinal bool
}

// Join concatenates segment transcripts in order, separated by single spaces.
// Empty segments are skipped.
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if transcript := strings.TrimSpace(segment.Transcript); transcript != "" {
			parts = append(parts, transcript)
		}
	}
	return strings.Join(parts, " ")
}
