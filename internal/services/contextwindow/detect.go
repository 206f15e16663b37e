// File: internal/services/contextwindow/detect.go
package contextwindow

import (
	"regexp"
	"strconv"
)

// pagePattern matches "page 334" case-insensitively, up to five digits.
var pagePattern = regexp.MustCompile(`(?i)page\s+(\d{1,5})`)

// DetectExplicitPage scans a question for an explicit page reference
// and returns the first match. Later mentions are ignored, so
// "compare page 5 and page 80" honors only page 5.
func DetectExplicitPage(question string) (int, bool) {
	match := pagePattern.FindStringSubmatch(question)
	if match == nil {
		return 0, false
	}
	page, err := strconv.Atoi(match[1])
	if err != nil || page <= 0 {
		return 0, false
	}
	return page, true
}
