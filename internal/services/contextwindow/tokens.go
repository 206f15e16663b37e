// File: internal/services/contextwindow/tokens.go
package contextwindow

import "strings"

// EstimateTokens approximates the token count of a text blob as
// ceil(len/4) of the trimmed text, never less than 1. Packing only
// depends on relative order, so a real tokenizer is not needed here.
func EstimateTokens(text string) int {
	n := len(strings.TrimSpace(text))
	estimate := (n + 3) / 4
	if estimate < 1 {
		return 1
	}
	return estimate
}
