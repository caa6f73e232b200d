// ABOUTME: Tolerant JSON field readers shared by the per-entity decoders.
// ABOUTME: Required strings fail validation; wrong-typed optional fields fall back to defaults.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// fields is a decoded JSON object whose values are parsed lazily per key.
type fields map[string]json.RawMessage

// parseObject decodes data as a JSON object. Anything else is an error.
func parseObject(entity string, data []byte) (fields, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%s: expected JSON object", entity)
	}
	var f fields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", entity, err)
	}
	return f, nil
}

// requiredString returns the non-empty string stored at key.
// A missing key, a non-string value, or an empty string are validation errors.
func (f fields) requiredString(entity, key string) (string, error) {
	raw, ok := f[key]
	if !ok {
		return "", missingField(entity, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) {
		return "", &ValidationError{Entity: entity, Field: key, Reason: "must be a string"}
	}
	if s == "" {
		return "", emptyField(entity, key)
	}
	return s, nil
}

func (f fields) optionalString(key, def string) string {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

func (f fields) optionalInt(key string, def int) int {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return def
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return def
	}
	return n
}

// optionalMillis reads an integer millisecond epoch timestamp.
func (f fields) optionalMillis(key string) (time.Time, bool) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return time.Time{}, false
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// optionalArray returns the raw elements of the array at key, or nil.
func (f fields) optionalArray(key string) []json.RawMessage {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// optionalStrings returns the string elements of the array at key.
// Non-string elements are dropped.
func (f fields) optionalStrings(key string) []string {
	items := f.optionalArray(key)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if isNull(item) || json.Unmarshal(item, &s) != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// millis converts t to integer milliseconds since the Unix epoch.
func millis(t time.Time) int64 {
	return t.UnixMilli()
}

// indexPath builds a path segment like "cards[3]".
func indexPath(parent, key string, i int) string {
	if parent == "" {
		return fmt.Sprintf("%s[%d]", key, i)
	}
	return fmt.Sprintf("%s.%s[%d]", parent, key, i)
}
