package events

import "time"

// KindLogAppended identifies a new user-visible log entry.
const KindLogAppended Kind = "log.appended"

// LogEntry is a single line of the user-visible log.
type LogEntry struct {
	Time    time.Time
	Message string
}

func (e LogEntry) String() string {
	return e.Time.Format("15:04:05") + " " + e.Message
}

// LogAppended carries a new user-visible log entry.
type LogAppended struct {
	Base
	Entry LogEntry
}

// NewLogAppended creates a log appended event.
func NewLogAppended(entry LogEntry) LogAppended {
	return LogAppended{Base: NewBase(KindLogAppended), Entry: entry}
}
