package battle

import "time"

// maxLogEntries caps the battle log; older entries roll off.
const maxLogEntries = 50

// EntrySource attributes a battle log line.
type EntrySource string

const (
	SourcePlayer EntrySource = "player"
	SourceEnemy  EntrySource = "enemy"
	SourceSystem EntrySource = "system"
)

// Entry is one battle log line.
type Entry struct {
	Message string      `json:"message"`
	Source  EntrySource `json:"source"`
	At      time.Time   `json:"at"`
}

// Log is a bounded battle log. It is not safe for concurrent use.
type Log struct {
	entries []Entry
	now     func() time.Time
}

// NewLog returns an empty battle log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append adds a line, dropping the oldest once the cap is reached.
func (l *Log) Append(source EntrySource, message string) {
	l.entries = append(l.entries, Entry{Message: message, Source: source, At: l.now()})
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[len(l.entries)-maxLogEntries:]
	}
}

// Entries returns the logged lines, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Restore replaces the log contents, keeping at most the cap.
func (l *Log) Restore(entries []Entry) {
	if len(entries) > maxLogEntries {
		entries = entries[len(entries)-maxLogEntries:]
	}
	l.entries = append(l.entries[:0], entries...)
}
