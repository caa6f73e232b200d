// ABOUTME: ActivityLog is an append-only, time-ordered audit trail of board mutations.
// ABOUTME: Entries are immutable; All returns a copy, and subscribers see each new entry.
package core

import (
	"encoding/json"
	"slices"
	"time"
)

// Recorder accepts audit messages. Boards borrow one; nil disables logging.
type Recorder interface {
	Record(message string)
}

// ActivityEntry is a single audit event.
type ActivityEntry struct {
	Timestamp time.Time
	Message   string
}

// ActivityLog stores entries in insertion order. Nothing is ever removed.
type ActivityLog struct {
	entries     []ActivityEntry
	subscribers []func(ActivityEntry)
	clock       Clock
}

// NewActivityLog creates an empty log using the system clock.
func NewActivityLog() *ActivityLog {
	return NewActivityLogWithClock(SystemClock)
}

// NewActivityLogWithClock creates an empty log stamped by clock.
func NewActivityLogWithClock(clock Clock) *ActivityLog {
	return &ActivityLog{entries: []ActivityEntry{}, clock: clock}
}

// RestoreActivityLog rebuilds a log from previously recorded entries.
func RestoreActivityLog(entries []ActivityEntry) *ActivityLog {
	log := NewActivityLog()
	log.entries = append(log.entries, entries...)
	return log
}

// Record appends message with the current time. Safe on a nil log.
func (l *ActivityLog) Record(message string) {
	if l == nil {
		return
	}
	entry := ActivityEntry{Timestamp: stamp(l.clock), Message: message}
	l.entries = append(l.entries, entry)
	for _, fn := range l.subscribers {
		fn(entry)
	}
}

// Subscribe registers fn to be called with every entry recorded after this call.
func (l *ActivityLog) Subscribe(fn func(ActivityEntry)) {
	l.subscribers = append(l.subscribers, fn)
}

// All returns a copy of every entry. Later records are not reflected in it.
func (l *ActivityLog) All() []ActivityEntry {
	if l == nil {
		return nil
	}
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *ActivityLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

type activityEntryJSON struct {
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

type activityLogJSON struct {
	Entries []activityEntryJSON `json:"entries"`
}

// MarshalJSON encodes an entry as {timestamp, message}.
func (e ActivityEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(activityEntryJSON{Timestamp: millis(e.Timestamp), Message: e.Message})
}

// DecodeActivityEntry decodes {timestamp, message}; both fields are required.
func DecodeActivityEntry(data []byte) (ActivityEntry, error) {
	f, err := parseObject("activity entry", data)
	if err != nil {
		return ActivityEntry{}, err
	}
	ts, ok := f.optionalMillis("timestamp")
	if !ok {
		return ActivityEntry{}, missingField("activity entry", "timestamp")
	}
	raw, ok := f["message"]
	if !ok {
		return ActivityEntry{}, missingField("activity entry", "message")
	}
	var msg string
	if isNull(raw) || json.Unmarshal(raw, &msg) != nil {
		return ActivityEntry{}, &ValidationError{Entity: "activity entry", Field: "message", Reason: "must be a string"}
	}
	return ActivityEntry{Timestamp: ts, Message: msg}, nil
}

// MarshalJSON encodes the log as {entries:[...]}.
func (l *ActivityLog) MarshalJSON() ([]byte, error) {
	j := activityLogJSON{Entries: make([]activityEntryJSON, len(l.entries))}
	for i, e := range l.entries {
		j.Entries[i] = activityEntryJSON{Timestamp: millis(e.Timestamp), Message: e.Message}
	}
	return json.Marshal(j)
}

// DecodeActivityLog decodes a log. Malformed entries are skipped and recorded
// in report; they never abort the load.
func DecodeActivityLog(data []byte, report *DecodeReport) (*ActivityLog, error) {
	return DecodeActivityLogAt(data, "", report)
}

// DecodeActivityLogAt is DecodeActivityLog with a path prefix for report entries.
func DecodeActivityLogAt(data []byte, path string, report *DecodeReport) (*ActivityLog, error) {
	f, err := parseObject("activity log", data)
	if err != nil {
		return nil, err
	}
	log := NewActivityLog()
	for i, raw := range f.optionalArray("entries") {
		entry, err := DecodeActivityEntry(raw)
		if err != nil {
			report.Skip(indexPath(path, "entries", i), err)
			continue
		}
		log.entries = append(log.entries, entry)
	}
	return log, nil
}
