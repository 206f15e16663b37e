// File: internal/services/contextwindow/assemble.go
package contextwindow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// Service assembles spoiler-safe, budget-bounded context windows from
// precomputed evidence. It holds no per-request state: every call
// builds its own transient part list and result.
type Service struct {
	config *Config
	store  EvidenceStore
	logger Logger
}

func NewService(store EvidenceStore, config *Config, logger Logger) (*Service, error) {
	if store == nil {
		return nil, NewValidationError("constructor", "evidence store is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("config", err.Error())
	}
	if logger == nil {
		return nil, NewValidationError("constructor", "logger is required")
	}
	return &Service{config: config, store: store, logger: logger}, nil
}

// BuildOptions overrides the service defaults for one request.
type BuildOptions struct {
	MaxContextTokens     int
	DesiredK             KRange
	IncludeRawParagraphs bool
}

func (s *Service) defaultOptions() BuildOptions {
	return BuildOptions{
		MaxContextTokens:     s.config.MaxContextTokens,
		DesiredK:             s.config.DesiredK,
		IncludeRawParagraphs: true,
	}
}

// BuildContextWindowResult assembles the full-window context for a
// question. The explicit-page guard runs first against the raw
// requested selection and can short-circuit the whole request with the
// deterministic refusal before any evidence is fetched.
func (s *Service) BuildContextWindowResult(ctx context.Context, bookID uint, window WindowSelection, question string, opts *BuildOptions) (*Result, error) {
	options := s.defaultOptions()
	if opts != nil {
		options = *opts
		if options.MaxContextTokens <= 0 {
			options.MaxContextTokens = s.config.MaxContextTokens
		}
		if options.DesiredK.Min <= 0 || options.DesiredK.Max < options.DesiredK.Min {
			options.DesiredK = s.config.DesiredK
		}
	}

	explicitPage, hasExplicitPage := DetectExplicitPage(question)

	// Out-of-window guard: checked against the caller-supplied range
	// before resolution, pages-kind selections only. No assembly work
	// happens on this branch.
	if hasExplicitPage && window.Kind == WindowKindPages &&
		(explicitPage < window.Start || explicitPage > window.End) {
		s.logger.Info("out-of-window question refused",
			"book_id", bookID, "page", explicitPage,
			"window_start", window.Start, "window_end", window.End)
		return refusalResult(explicitPage, window.Start, window.End), nil
	}

	boundaries, err := s.store.ChapterBoundaries(ctx, bookID)
	if err != nil {
		return nil, NewStoreError("chapter_boundaries", bookID, err)
	}
	resolved := ResolveWindow(window, boundaries)

	chapterSummaries, pageSummaries, err := s.fetchSummaries(ctx, bookID, resolved)
	if err != nil {
		return nil, err
	}

	queryTokens := QueryTokens(question)
	var ranked []ScoredChunk
	if options.IncludeRawParagraphs {
		chunks, err := s.store.ChunksInRange(ctx, bookID, resolved.Start, resolved.End)
		if err != nil {
			return nil, NewStoreError("chunks_in_range", bookID, err)
		}
		ranked = RankChunks(chunks, queryTokens)
		maxParagraphs := options.DesiredK.Min
		if upper := min(options.DesiredK.Max, maxParagraphUpperBound); upper > maxParagraphs {
			maxParagraphs = upper
		}
		if len(ranked) > maxParagraphs {
			ranked = ranked[:maxParagraphs]
		}
	}

	// Explicit in-window page questions are always grounded: fetch a
	// chunk for that exact page even when lexical ranking would have
	// left it out.
	var forced []domain.RawChunk
	if hasExplicitPage && resolved.Contains(explicitPage) {
		forced, err = s.store.ChunksForPage(ctx, bookID, explicitPage, 1)
		if err != nil {
			return nil, NewStoreError("chunks_for_page", bookID, err)
		}
	}

	parts := assembleParts(resolved, boundaries, chapterSummaries, pageSummaries, forced, ranked)
	if len(parts) == 0 {
		s.logger.Warn("no evidence for resolved window",
			"book_id", bookID, "start", resolved.Start, "end", resolved.End)
		return nil, NewDataMissingError("assemble", bookID)
	}

	included := packParts(parts, options.MaxContextTokens)
	contextText := renderContextText(included)
	systemPrompt := fullWindowSystemPrompt(resolved, contextText)

	s.logger.Debug("context window assembled",
		"book_id", bookID,
		"parts_total", len(parts),
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

// fetchSummaries issues the chapter- and page-summary lookups
// concurrently; neither depends on the other.
func (s *Service) fetchSummaries(ctx context.Context, bookID uint, resolved ResolvedWindow) ([]domain.SummaryRecord, []domain.SummaryRecord, error) {
	var (
		wg               sync.WaitGroup
		chapterSummaries []domain.SummaryRecord
		pageSummaries    []domain.SummaryRecord
		chapterErr       error
		pageErr          error
	)

	if len(resolved.ChapterIndices) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chapterSummaries, chapterErr = s.store.ChapterSummaries(ctx, bookID, resolved.ChapterIndices)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		pageSummaries, pageErr = s.store.PageSummaries(ctx, bookID, resolved.Start, resolved.End)
	}()

	wg.Wait()
	if chapterErr != nil {
		return nil, nil, NewStoreError("chapter_summaries", bookID, chapterErr)
	}
	if pageErr != nil {
		return nil, nil, NewStoreError("page_summaries", bookID, pageErr)
	}
	return chapterSummaries, pageSummaries, nil
}

// assembleParts renders evidence into ordered context parts:
// chapter summaries, page summaries, the forced explicit-page
// paragraph, then ranked paragraphs. Parts that render empty are
// dropped; forced chunks are not repeated in the ranked tail.
func assembleParts(resolved ResolvedWindow, boundaries []domain.ChapterBoundary, chapterSummaries, pageSummaries []domain.SummaryRecord, forced []domain.RawChunk, ranked []ScoredChunk) []ContextPart {
	startPages := make(map[int]int, len(boundaries))
	for _, b := range boundaries {
		startPages[b.ChapterIndex] = b.StartPage
	}

	var parts []ContextPart
	for i := range chapterSummaries {
		summary := &chapterSummaries[i]
		text := RenderSummary(summary)
		if text == "" {
			continue
		}
		parts = append(parts, ContextPart{
			Label:           PartChapterSummary,
			ChapterIndex:    summary.ChapterIndex,
			Text:            text,
			Citations:       []Citation{{Page: startPages[summary.ChapterIndex]}},
			EstimatedTokens: EstimateTokens(text),
		})
	}

	for i := range pageSummaries {
		summary := &pageSummaries[i]
		text := RenderSummary(summary)
		if text == "" {
			continue
		}
		parts = append(parts, ContextPart{
			Label:           PartPageSummary,
			Page:            summary.PageNumber,
			Citations:       []Citation{{Page: summary.PageNumber}},
			Text:            text,
			EstimatedTokens: EstimateTokens(text),
		})
	}

	forcedIDs := make(map[string]bool, len(forced))
	for _, chunk := range forced {
		if strings.TrimSpace(chunk.RawText) == "" {
			continue
		}
		forcedIDs[chunk.ID] = true
		parts = append(parts, chunkPart(chunk))
	}

	for _, sc := range ranked {
		if forcedIDs[sc.Chunk.ID] || strings.TrimSpace(sc.Chunk.RawText) == "" {
			continue
		}
		parts = append(parts, chunkPart(sc.Chunk))
	}
	return parts
}

func chunkPart(chunk domain.RawChunk) ContextPart {
	return ContextPart{
		Label:           PartParagraph,
		Page:            chunk.PageNumber,
		Text:            chunk.RawText,
		Citations:       []Citation{{Page: chunk.PageNumber, ChunkID: chunk.ID}},
		EstimatedTokens: EstimateTokens(chunk.RawText),
	}
}

// packParts greedily fills the token budget in part order. The first
// part is always included so even an oversized lead item yields a
// non-empty context; packing stops outright at the first part that
// does not fit, because parts are ordered most-significant-first.
func packParts(parts []ContextPart, maxContextTokens int) []ContextPart {
	if len(parts) == 0 {
		return nil
	}
	included := []ContextPart{parts[0]}
	remaining := maxContextTokens - parts[0].EstimatedTokens
	for _, part := range parts[1:] {
		if remaining < part.EstimatedTokens {
			break
		}
		included = append(included, part)
		remaining -= part.EstimatedTokens
	}
	return included
}

// renderContextText concatenates included parts under markdown-style
// headers separated by blank lines.
func renderContextText(parts []ContextPart) string {
	sections := make([]string, 0, len(parts))
	for _, part := range parts {
		sections = append(sections, "### "+partHeader(part)+"\n"+part.Text)
	}
	return strings.Join(sections, "\n\n")
}

func partHeader(part ContextPart) string {
	switch part.Label {
	case PartChapterSummary:
		return fmt.Sprintf("Chapter %d summary", part.ChapterIndex)
	case PartPageSummary:
		return fmt.Sprintf("Page %d summary", part.Page)
	default:
		return fmt.Sprintf("Excerpt (page %d)", part.Page)
	}
}

func flattenCitations(parts []ContextPart) []Citation {
	var citations []Citation
	for _, part := range parts {
		citations = append(citations, part.Citations...)
	}
	return citations
}

func sumTokens(parts []ContextPart) int {
	total := 0
	for _, part := range parts {
		total += part.EstimatedTokens
	}
	return total
}

// refusalResult is the fixed, deterministic out-of-window response.
// It is a successful outcome, not an error, and it leaks nothing about
// pages beyond the reader's window.
func refusalResult(page, start, end int) *Result {
	return &Result{
		Ready:          true,
		Result:         nil,
		ContextText:    "",
		ResolvedWindow: ResolvedWindow{Start: start, End: end, ChapterIndices: []int{}},
		Message: fmt.Sprintf(
			"Page %d is outside your current reading window (%d–%d), so I can't answer that yet. Keep reading and ask me again once you get there.",
			page, start, end),
	}
}

// fullWindowSystemPrompt states the hard page-range boundary and the
// anti-false-gating rule: the assistant may never claim an in-window
// page is unreached, even when its evidence is sparse.
func fullWindowSystemPrompt(resolved ResolvedWindow, contextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are TaleLeaf, a reading companion. The reader has read pages %d through %d of this book and nothing beyond.\n", resolved.Start, resolved.End)
	b.WriteString("Rules:\n")
	b.WriteString("- Answer only from the summaries and excerpts below. Never use outside knowledge of this book or invent details.\n")
	fmt.Fprintf(&b, "- If the reader asks about a page outside pages %d-%d, tell them they have not reached it yet and say nothing about its content.\n", resolved.Start, resolved.End)
	fmt.Fprintf(&b, "- Never tell the reader they have not reached a page between %d and %d. If the excerpts below do not cover such a page, say the excerpts do not cover it.\n", resolved.Start, resolved.End)
	b.WriteString("- Cite a page number for every factual statement, like (p. 42).\n")
	b.WriteString("\nContext:\n\n")
	b.WriteString(contextText)
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
