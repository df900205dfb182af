// Package chaintime collapses the chain's inconsistently-encoded timestamps
// (seconds, milliseconds, microseconds or nanoseconds since epoch, numeric
// strings, ISO strings) into canonical milliseconds.
//
// The unit is inferred from magnitude. The thresholds are a best-effort
// heuristic, not a documented contract of the chain runtime; values near a
// boundary can be misclassified and callers must treat results accordingly.
package chaintime

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	nanosFloor   = 1e17
	microsFloor  = 1e13
	millisFloor  = 1e11
	secondsFloor = 1e9
)

// Millis normalizes v to milliseconds since epoch. ok is false when v is
// nil, unparseable, or not a finite number; callers must never propagate a
// zero value from a failed conversion.
func Millis(v any) (ms int64, ok bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return fromMagnitude(t)
	case int64:
		return fromMagnitude(float64(t))
	case int:
		return fromMagnitude(float64(t))
	case json.Number:
		return fromString(t.String())
	case string:
		return fromString(t)
	default:
		return 0, false
	}
}

// Time is Millis with the result materialized as a UTC instant.
func Time(v any) (time.Time, bool) {
	ms, ok := Millis(v)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// TimePtr suits the nullable timestamptz columns of the mirror tables.
func TimePtr(v any) *time.Time {
	t, ok := Time(v)
	if !ok {
		return nil
	}
	return &t
}

func fromMagnitude(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	switch {
	case v >= nanosFloor:
		return int64(v / 1e6), true
	case v >= microsFloor:
		return int64(v / 1e3), true
	case v >= millisFloor:
		return int64(v), true
	case v >= secondsFloor:
		return int64(v) * 1000, true
	default:
		// Small or relative values pass through as milliseconds.
		return int64(v), true
	}
}

func fromString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// The chain occasionally emits "+1700000000000" style numbers.
	norm := strings.TrimPrefix(s, "+")
	if num, err := strconv.ParseFloat(norm, 64); err == nil {
		return fromMagnitude(num)
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, norm); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
