// Package jsonutil provides shared utilities for tolerant JSON parsing of API
// envelopes: error context, dotted-path lookup and loose number handling.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v interface{}, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// UnmarshalArrayAllowEmpty unmarshals JSON data into a slice.
// A JSON null yields an empty, non-nil slice.
func UnmarshalArrayAllowEmpty[T any](data []byte, context string) ([]T, error) {
	entries := []T{}
	if isNull(data) {
		return entries, nil
	}
	if err := UnmarshalWithContext(data, &entries, context); err != nil {
		return nil, err
	}
	return entries, nil
}

// Dig follows a dotted path ("data.categories") through nested objects.
// The empty path returns data itself. Missing keys, non-object parents and
// JSON null all report false.
func Dig(data []byte, path string) (json.RawMessage, bool) {
	cur := json.RawMessage(bytes.TrimSpace(data))
	if len(cur) == 0 || isNull(cur) {
		return nil, false
	}
	if path == "" {
		return cur, true
	}
	for _, key := range strings.Split(path, ".") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok || isNull(next) {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// FirstOf returns the value at the first path that resolves, and that path.
func FirstOf(data []byte, paths ...string) (json.RawMessage, string, bool) {
	for _, p := range paths {
		if v, ok := Dig(data, p); ok {
			return v, p, true
		}
	}
	return nil, "", false
}

// DecodeFirst decodes the value at the first resolving path into v.
func DecodeFirst(data []byte, v interface{}, context string, paths ...string) error {
	raw, _, ok := FirstOf(data, paths...)
	if !ok {
		return fmt.Errorf("%s: none of %s present", context, strings.Join(quoted(paths), ", "))
	}
	return UnmarshalWithContext(raw, v, context)
}

// IntAt reads an integer at path. Numbers encoded as strings ("3") are
// accepted since some endpoints send them that way.
func IntAt(data []byte, path string) (int, bool) {
	raw, ok := Dig(data, path)
	if !ok {
		return 0, false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch val := v.(type) {
	case json.Number:
		n = val
	case string:
		n = json.Number(strings.TrimSpace(val))
	default:
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// StringAt reads a string at path.
func StringAt(data []byte, path string) (string, bool) {
	raw, ok := Dig(data, path)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ToString converts an interface{} value to a string representation.
// Handles string, float64 (formatted as integer), bool, and other types.
func ToString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func quoted(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if p == "" {
			p = "<root>"
		}
		out[i] = strconv.Quote(p)
	}
	return out
}
