// File: internal/services/contextwindow/pagefocus.go
package contextwindow

import (
	"context"
	"fmt"
	"strings"
)

// pageFocusedChunkLimit caps the raw paragraphs fetched for the target page.
const pageFocusedChunkLimit = 2

// BuildPageFocusedContextWindowResult is the cheaper assembly path for
// a question about one explicit page already confirmed in-window. It
// fetches only the target page's and immediate neighbors' summaries
// plus a couple of raw chunks for the page itself: no chapter-level
// material and no lexical ranking across the whole window.
func (s *Service) BuildPageFocusedContextWindowResult(ctx context.Context, bookID uint, page int, question string, maxContextTokens int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if maxContextTokens <= 0 {
		maxContextTokens = s.config.PageFocusedMaxTokens
	}

	startPage := page - 1
	if startPage < 1 {
		startPage = 1
	}
	pageSummaries, err := s.store.PageSummaries(ctx, bookID, startPage, page+1)
	if err != nil {
		return nil, NewStoreError("page_summaries", bookID, err)
	}

	chunks, err := s.store.ChunksForPage(ctx, bookID, page, pageFocusedChunkLimit)
	if err != nil {
		return nil, NewStoreError("chunks_for_page", bookID, err)
	}

	var parts []ContextPart
	for i := range pageSummaries {
		summary := &pageSummaries[i]
		text := RenderSummary(summary)
		if text == "" {
			continue
		}
		parts = append(parts, ContextPart{
			Label:           PartPageSummary,
			Page:            summary.PageNumber,
			Text:            text,
			Citations:       []Citation{{Page: summary.PageNumber}},
			EstimatedTokens: EstimateTokens(text),
		})
	}
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.RawText) == "" {
			continue
		}
		parts = append(parts, chunkPart(chunk))
	}

	if len(parts) == 0 {
		s.logger.Warn("no evidence for focused page", "book_id", bookID, "page", page)
		return nil, NewDataMissingError("assemble_page_focused", bookID)
	}

	included := packParts(parts, maxContextTokens)
	contextText := renderContextText(included)
	systemPrompt := pageFocusedSystemPrompt(page, contextText)
	resolved := ResolvedWindow{Start: page, End: page, ChapterIndices: []int{}}

	s.logger.Debug("page-focused context assembled",
		"book_id", bookID, "page", page,
		"parts_included", len(included),
		"context_tokens", sumTokens(included))

	return &Result{
		Ready:          true,
		ContextText:    contextText,
		ResolvedWindow: resolved,
		Result: &RetrievalResult{
			SystemPrompt:    systemPrompt,
			UserPrompt:      question,
			Parts:           included,
			Citations:       flattenCitations(included),
			EstimatedTokens: EstimateTokens(systemPrompt) + responseHeadroomTokens,
			TokenEstimate:   sumTokens(included),
		},
	}, nil
}

// pageFocusedSystemPrompt narrows the assistant to a single page. The
// reader has reached this page, so the assistant may never claim
// otherwise; thin evidence means "the excerpts don't cover it".
func pageFocusedSystemPrompt(page int, contextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are TaleLeaf, a reading companion. The reader is asking about page %d of this book, which they have already reached.\n", page)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Focus strictly on page %d, using only the summaries and excerpts below.\n", page)
	fmt.Fprintf(&b, "- Never tell the reader they have not reached page %d. If the excerpts below do not cover it, say you do not have enough detail from that page.\n", page)
	b.WriteString("- Cite a page number for every factual statement, like (p. 42).\n")
	b.WriteString("\nContext:\n\n")
	b.WriteString(contextText)
	return b.String()
}
