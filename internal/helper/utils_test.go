package helper

import (
	"strings"
	"testing"
)

func TestDocID_StableAndShort(t *testing.T) {
	a := DocID("report.pdf")
	b := DocID("report.pdf")
	if a != b {
		t.Errorf("doc id not stable: %s vs %s", a, b)
	}
	if len(a) != 12 {
		t.Errorf("expected 12-char id, got %q", a)
	}
	if a == DocID("other.pdf") {
		t.Error("different names must produce different ids")
	}
}

func TestTextHash_Distinguishes(t *testing.T) {
	if TextHash("alpha") == TextHash("beta") {
		t.Error("different text must hash differently")
	}
	if TextHash("alpha") != TextHash("alpha") {
		t.Error("hash not stable")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "hello", 10, "hello"},
		{"exact unchanged", "hello", 5, "hello"},
		{"zero max unchanged", "hello", 0, "hello"},
		{"cuts at space", "hello world again", 12, "hello world..."},
		{"no space in window", "abcdefghijklmnop", 8, "abcdefgh..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncate_NeverMidWordWhenSpaceNearby(t *testing.T) {
	got := Truncate("the quick brown fox jumps", 20)
	body := strings.TrimSuffix(got, "...")
	if strings.HasSuffix(body, "fo") || strings.HasSuffix(body, "jum") {
		t.Errorf("truncated mid-word: %q", got)
	}
}

func TestClip(t *testing.T) {
	if got := Clip("hello world", 5); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if got := Clip("hi", 5); got != "hi" {
		t.Errorf("short input must pass through, got %q", got)
	}
	if got := Clip("héllo", 2); got != "hé" {
		t.Errorf("clip must be rune-safe, got %q", got)
	}
}
