package evaluator

import (
	"strings"
	"testing"
	"time"
)

func TestLikeMatch(t *testing.T) {
	tests := []struct {
		text     string
		pattern  string
		expected bool
	}{
		{"abc", "abc", true},
		{"ABC", "abc", true},
		{"abc", "a*", true},
		{"abc", "*c", true},
		{"abc", "a?c", true},
		{"ac", "a?c", false},
		{"", "*", true},
		{"", "", true},
		{"a", "", false},
		{"abc123", "???###", true},
		{"abc12", "???###", false},
		{"abcxyz", "???###", false},
		{"a1", "a#", true},
		{"aX", "a#", false},
		{"b", "[abc]", true},
		{"d", "[abc]", false},
		{"d", "[!abc]", true},
		{"a", "[!abc]", false},
		{"m", "[a-z]", true},
		{"M", "[a-z]", false},
		{"-", "[a-]", true},
		{"[x", "[x", true},
		{"x", "[x", false},
		{"hello world", "h*o w*d", true},
		{"hello world", "h*o w*x", false},
		{"aaa", "a**a", true},
		{"é", "?", true},
		{"Smith", "S[n-z]ith", false},
		{"Smith", "S[a-z]ith", true},
	}

	for _, tt := range tests {
		if got := LikeMatch(tt.text, tt.pattern); got != tt.expected {
			t.Errorf("LikeMatch(%q, %q) = %v, want %v", tt.text, tt.pattern, got, tt.expected)
		}
	}
}

func TestLikeMatchPathological(t *testing.T) {
	text := strings.Repeat("a", 200)
	pattern := strings.Repeat("*a", 30) + "*b"

	done := make(chan bool, 1)
	go func() { done <- LikeMatch(text, pattern) }()

	select {
	case got := <-done:
		if got {
			t.Error("expected no match")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("LikeMatch did not finish on a backtracking-heavy pattern")
	}
}
