package contextwindow

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 1},
		{"whitespace only", "   \n\t ", 1},
		{"single rune", "a", 1},
		{"exactly four", "abcd", 1},
		{"five rounds up", "abcde", 2},
		{"trims before counting", "  abcd  ", 1},
		{"longer text", strings.Repeat("x", 401), 101},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateTokens(tc.text); got != tc.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestDetectExplicitPage(t *testing.T) {
	cases := []struct {
		name     string
		question string
		want     int
		found    bool
	}{
		{"plain reference", "What happens on page 334?", 334, true},
		{"case insensitive", "WHAT IS ON PAGE 12", 12, true},
		{"first mention wins", "compare page 5 and page 80", 5, true},
		{"no reference", "Who is the captain?", 0, false},
		{"page zero rejected", "what about page 0", 0, false},
		{"needs whitespace", "see page42", 0, false},
		{"multiline", "I stopped reading.\nExplain page 7 please", 7, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := DetectExplicitPage(tc.question)
			if got != tc.want || found != tc.found {
				t.Errorf("DetectExplicitPage(%q) = (%d, %v), want (%d, %v)",
					tc.question, got, found, tc.want, tc.found)
			}
		})
	}
}
