package linera

import (
	"testing"
	"time"
)

func TestChainIDFromEndpoint(t *testing.T) {
	got, err := ChainIDFromEndpoint("http://localhost:8081/chains/8034b1b376dd64d049/applications/a41bebfc427a7b9d")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got != "8034b1b376dd64d049" {
		t.Fatalf("got %q", got)
	}
}

func TestChainIDFromEndpointMissing(t *testing.T) {
	if _, err := ChainIDFromEndpoint("http://localhost:8081/applications/a41b"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWSURLFromEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8081/chains/aa/applications/bb", "ws://localhost:8081/ws"},
		{"https://node.example.com/chains/aa/applications/bb", "wss://node.example.com/ws"},
	}
	for _, tt := range tests {
		got, err := WSURLFromEndpoint(tt.in)
		if err != nil {
			t.Fatalf("WSURLFromEndpoint(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("WSURLFromEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	const max = 30 * time.Second
	cur := time.Second
	var prev int64
	for i := 0; i < 10; i++ {
		if int64(cur) < prev {
			t.Fatalf("backoff regressed at step %d", i)
		}
		if cur > max {
			t.Fatalf("backoff %v exceeds cap", cur)
		}
		prev = int64(cur)
		cur = nextBackoff(cur, max)
	}
	if cur != max {
		t.Fatalf("backoff did not settle at cap: %v", cur)
	}
}
