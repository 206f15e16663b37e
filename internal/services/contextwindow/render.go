// File: internal/services/contextwindow/render.go
package contextwindow

import (
	"fmt"
	"strings"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// List caps for the rendered summary lines. Rendering is a lossy,
// budget-aware compression: list order is preserved, nothing is
// scored or sorted.
const (
	maxRenderedEntities      = 5
	maxRenderedEvents        = 4
	maxRenderedFacts         = 4
	maxRenderedOpenQuestions = 2
)

// RenderSummary turns a structured summary record into compact prose
// lines. A nil record renders to the empty string, as does a record
// whose lists are all empty; empty lists produce no line at all.
func RenderSummary(summary *domain.SummaryRecord) string {
	if summary == nil {
		return ""
	}

	var lines []string
	if line := renderEntities(summary.Entities); line != "" {
		lines = append(lines, line)
	}
	if line := renderEvents(summary.Events); line != "" {
		lines = append(lines, line)
	}
	if line := renderFacts(summary.Facts); line != "" {
		lines = append(lines, line)
	}
	if line := renderOpenQuestions(summary.OpenQuestions); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderEntities(entities []domain.SummaryEntity) string {
	if len(entities) == 0 {
		return ""
	}
	if len(entities) > maxRenderedEntities {
		entities = entities[:maxRenderedEntities]
	}
	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		if e.Type != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", e.Name, e.Type))
		} else {
			parts = append(parts, e.Name)
		}
	}
	return "Entities: " + strings.Join(parts, "; ")
}

func renderEvents(events []domain.SummaryEvent) string {
	if len(events) == 0 {
		return ""
	}
	if len(events) > maxRenderedEvents {
		events = events[:maxRenderedEvents]
	}
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		item := ev.What
		if len(ev.Who) > 0 {
			item += " [" + strings.Join(ev.Who, ", ") + "]"
		}
		if ev.Page > 0 {
			item += fmt.Sprintf(" (p%d)", ev.Page)
		}
		parts = append(parts, item)
	}
	return "Events: " + strings.Join(parts, " | ")
}

func renderFacts(facts []string) string {
	if len(facts) == 0 {
		return ""
	}
	if len(facts) > maxRenderedFacts {
		facts = facts[:maxRenderedFacts]
	}
	return "Facts: " + strings.Join(facts, " | ")
}

func renderOpenQuestions(questions []string) string {
	if len(questions) == 0 {
		return ""
	}
	if len(questions) > maxRenderedOpenQuestions {
		questions = questions[:maxRenderedOpenQuestions]
	}
	return "Open questions: " + strings.Join(questions, " | ")
}
