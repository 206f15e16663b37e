// File: internal/services/contextwindow/config.go
package contextwindow

import "fmt"

// maxParagraphUpperBound caps how many ranked paragraphs a single
// request may include regardless of the caller's desired range.
const maxParagraphUpperBound = 8

// responseHeadroomTokens is the flat allowance added on top of the
// system prompt when estimating a request's total token cost.
const responseHeadroomTokens = 200

type Config struct {
	// MaxContextTokens is the packing budget for the full-window path.
	MaxContextTokens int
	// PageFocusedMaxTokens is the smaller budget for the page-focused path.
	PageFocusedMaxTokens int
	// DesiredK bounds how many ranked paragraphs to include.
	DesiredK KRange
}

func (c *Config) Validate() error {
	if c.MaxContextTokens <= 0 {
		return fmt.Errorf("max_context_tokens must be positive")
	}
	if c.PageFocusedMaxTokens <= 0 {
		return fmt.Errorf("page_focused_max_tokens must be positive")
	}
	if c.DesiredK.Min <= 0 {
		return fmt.Errorf("desired_k.min must be positive")
	}
	if c.DesiredK.Max < c.DesiredK.Min {
		return fmt.Errorf("desired_k.max must be >= desired_k.min")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		MaxContextTokens:     1800,
		PageFocusedMaxTokens: 900,
		DesiredK:             KRange{Min: 4, Max: 8},
	}
}
