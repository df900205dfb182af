package chaintime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMillisMagnitudeRoundTrip(t *testing.T) {
	// The same instant in seconds, ms, µs and ns must normalize identically.
	const want = int64(1_700_000_000_000)
	tests := []struct {
		name string
		in   any
	}{
		{"seconds", float64(1_700_000_000)},
		{"millis", float64(1_700_000_000_000)},
		{"micros", float64(1_700_000_000_000_000)},
		{"nanos", float64(1_700_000_000_000_000_000)},
	}
	for _, tt := range tests {
		got, ok := Millis(tt.in)
		if !ok {
			t.Fatalf("%s: not ok", tt.name)
		}
		if got != want {
			t.Fatalf("%s: got %d want %d", tt.name, got, want)
		}
	}
}

func TestMillisStrings(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1700000000", 1_700_000_000_000},
		{"+1700000000000", 1_700_000_000_000},
		{"1700000000000000000", 1_700_000_000_000},
		{"2023-11-14T22:13:20Z", 1_700_000_000_000},
	}
	for _, tt := range tests {
		got, ok := Millis(tt.in)
		if !ok {
			t.Fatalf("Millis(%q): not ok", tt.in)
		}
		if got != tt.want {
			t.Fatalf("Millis(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMillisJSONNumber(t *testing.T) {
	got, ok := Millis(json.Number("1700000000000000"))
	if !ok || got != 1_700_000_000_000 {
		t.Fatalf("got %d ok=%v", got, ok)
	}
}

func TestMillisUnparseable(t *testing.T) {
	for _, in := range []any{nil, "", "not-a-date", struct{}{}, []int{1}} {
		if _, ok := Millis(in); ok {
			t.Fatalf("Millis(%#v): expected not ok", in)
		}
	}
}

func TestMillisSmallValuePassthrough(t *testing.T) {
	got, ok := Millis(float64(42))
	if !ok || got != 42 {
		t.Fatalf("got %d ok=%v", got, ok)
	}
}

func TestTime(t *testing.T) {
	got, ok := Time(float64(1_700_000_000))
	if !ok {
		t.Fatalf("not ok")
	}
	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestTimePtrNilOnFailure(t *testing.T) {
	if p := TimePtr("garbage"); p != nil {
		t.Fatalf("expected nil, got %v", *p)
	}
}
