// ABOUTME: The persisted state document: boards, users, activity log, and free-form metadata.
// ABOUTME: Decoding is tolerant; bad users, boards, or log entries are skipped and reported.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2389-research/kanban-lite/kanban/core"
)

// FormatVersion is written to metadata.version on every save.
const FormatVersion = "1.0"

// Metadata keys this package reads or writes. Other keys pass through untouched.
const (
	MetaVersion       = "version"
	MetaCardIDCounter = "cardIdCounter"
	MetaSavedAt       = "savedAt"
)

// State is the full object graph stored in a state file.
type State struct {
	Boards      []*core.Board
	Users       []*core.User
	ActivityLog *core.ActivityLog
	Metadata    map[string]any
}

// NewState returns an empty state with a fresh activity log.
func NewState() *State {
	return &State{
		ActivityLog: core.NewActivityLog(),
		Metadata:    map[string]any{MetaVersion: FormatVersion},
	}
}

// CardIDCounter returns metadata.cardIdCounter, or 0 when absent or not a number.
func (s *State) CardIDCounter() int {
	switch v := s.Metadata[MetaCardIDCounter].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// SetCardIDCounter stores n as metadata.cardIdCounter.
func (s *State) SetCardIDCounter(n int) {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata[MetaCardIDCounter] = n
}

type stateJSON struct {
	Boards      []*core.Board     `json:"boards"`
	Users       []*core.User      `json:"users"`
	ActivityLog *core.ActivityLog `json:"activityLog"`
	Metadata    map[string]any    `json:"metadata"`
}

// EncodeState serializes s as JSON indented by two spaces. metadata.version is
// always set; savedAt is stamped when now is non-zero.
func EncodeState(s *State, now time.Time) ([]byte, error) {
	meta := make(map[string]any, len(s.Metadata)+2)
	for k, v := range s.Metadata {
		meta[k] = v
	}
	meta[MetaVersion] = FormatVersion
	if !now.IsZero() {
		meta[MetaSavedAt] = now.UnixMilli()
	}

	j := stateJSON{
		Boards:      s.Boards,
		Users:       s.Users,
		ActivityLog: s.ActivityLog,
		Metadata:    meta,
	}
	if j.Boards == nil {
		j.Boards = []*core.Board{}
	}
	if j.Users == nil {
		j.Users = []*core.User{}
	}
	if j.ActivityLog == nil {
		j.ActivityLog = core.NewActivityLog()
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeState parses a state document. Users are decoded first, then boards,
// then the activity log. Entities that fail validation, duplicate user ids,
// and duplicate board names are skipped and recorded in the returned report.
// An unreadable activity log is reported and replaced with an empty one.
// The only error is a document that is not a JSON object.
func DecodeState(data []byte) (*State, *core.DecodeReport, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, fmt.Errorf("parse state: %w", err)
	}
	if top == nil {
		return nil, nil, fmt.Errorf("parse state: expected JSON object")
	}

	report := &core.DecodeReport{}
	state := &State{Metadata: map[string]any{}}

	seenUsers := map[string]bool{}
	for i, raw := range rawArray(top["users"]) {
		path := fmt.Sprintf("users[%d]", i)
		u, err := core.DecodeUser(raw)
		if err != nil {
			report.Skip(path, err)
			continue
		}
		if seenUsers[u.ID()] {
			report.Skip(path, fmt.Errorf("duplicate user id %q", u.ID()))
			continue
		}
		seenUsers[u.ID()] = true
		state.Users = append(state.Users, u)
	}

	seenBoards := map[string]bool{}
	for i, raw := range rawArray(top["boards"]) {
		path := fmt.Sprintf("boards[%d]", i)
		b, err := core.DecodeBoardAt(raw, path, report)
		if err != nil {
			report.Skip(path, err)
			continue
		}
		if seenBoards[b.Name()] {
			report.Skip(path, fmt.Errorf("duplicate board name %q", b.Name()))
			continue
		}
		seenBoards[b.Name()] = true
		state.Boards = append(state.Boards, b)
	}

	state.ActivityLog = core.NewActivityLog()
	if raw, ok := top["activityLog"]; ok {
		log, err := core.DecodeActivityLogAt(raw, "activityLog", report)
		if err != nil {
			report.Skip("activityLog", err)
		} else {
			state.ActivityLog = log
		}
	}

	if raw, ok := top["metadata"]; ok {
		var meta map[string]any
		if err := json.Unmarshal(raw, &meta); err != nil {
			report.Skip("metadata", err)
		} else if meta != nil {
			state.Metadata = meta
		}
	}

	return state, report, nil
}

func rawArray(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
