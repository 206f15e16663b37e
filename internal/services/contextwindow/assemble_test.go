package contextwindow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Warn(string, ...interface{})  {}

// fakeEvidenceStore is an in-memory EvidenceStore that counts reads so
// tests can assert which paths touched storage.
type fakeEvidenceStore struct {
	boundaries       []domain.ChapterBoundary
	chapterSummaries []domain.SummaryRecord
	pageSummaries    []domain.SummaryRecord
	chunks           []domain.RawChunk

	boundaryCalls   int
	rangeChunkCalls int
	pageChunkCalls  int
	summaryCalls    int
}

func (f *fakeEvidenceStore) ChapterBoundaries(_ context.Context, _ uint) ([]domain.ChapterBoundary, error) {
	f.boundaryCalls++
	return f.boundaries, nil
}

func (f *fakeEvidenceStore) ChapterSummaries(_ context.Context, _ uint, indices []int) ([]domain.SummaryRecord, error) {
	f.summaryCalls++
	wanted := make(map[int]bool, len(indices))
	for _, idx := range indices {
		wanted[idx] = true
	}
	var out []domain.SummaryRecord
	for _, s := range f.chapterSummaries {
		if wanted[s.ChapterIndex] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeEvidenceStore) PageSummaries(_ context.Context, _ uint, startPage, endPage int) ([]domain.SummaryRecord, error) {
	f.summaryCalls++
	var out []domain.SummaryRecord
	for _, s := range f.pageSummaries {
		if s.PageNumber >= startPage && s.PageNumber <= endPage {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeEvidenceStore) ChunksInRange(_ context.Context, _ uint, startPage, endPage int) ([]domain.RawChunk, error) {
	f.rangeChunkCalls++
	var out []domain.RawChunk
	for _, c := range f.chunks {
		if c.PageNumber >= startPage && c.PageNumber <= endPage {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEvidenceStore) ChunksForPage(_ context.Context, _ uint, page, limit int) ([]domain.RawChunk, error) {
	f.pageChunkCalls++
	var out []domain.RawChunk
	for _, c := range f.chunks {
		if c.PageNumber == page && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func pageFact(page int, fact string) domain.SummaryRecord {
	return domain.SummaryRecord{
		Scope:      domain.SummaryScopePage,
		PageNumber: page,
		Facts:      []string{fact},
	}
}

func newTestService(t *testing.T, store EvidenceStore) *Service {
	t.Helper()
	svc, err := NewService(store, nil, testLogger{})
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc
}

func TestBuildContextWindowResult_RefusesOutOfWindowPage(t *testing.T) {
	store := &fakeEvidenceStore{}
	svc := newTestService(t, store)

	result, err := svc.BuildContextWindowResult(context.Background(),
		1, PagesWindow(1, 120), "What happens on page 334?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Refused() {
		t.Fatal("expected a refusal result")
	}
	if result.Result != nil {
		t.Error("refusal must carry no retrieval result")
	}
	if !strings.Contains(result.Message, "334") || !strings.Contains(result.Message, "120") {
		t.Errorf("refusal message missing page or window bound: %q", result.Message)
	}
	if store.boundaryCalls+store.summaryCalls+store.rangeChunkCalls+store.pageChunkCalls != 0 {
		t.Error("refusal path must not touch the evidence store")
	}
}

func TestBuildContextWindowResult_ChapterWindowsNeverRefuse(t *testing.T) {
	store := &fakeEvidenceStore{
		boundaries: []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 20},
		},
		pageSummaries: []domain.SummaryRecord{pageFact(5, "the ship sails")},
	}
	svc := newTestService(t, store)

	// Page 334 is far beyond the book, but the guard only applies to
	// pages-kind selections.
	result, err := svc.BuildContextWindowResult(context.Background(),
		1, ChaptersWindow(0), "What happens on page 334?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Refused() {
		t.Fatal("chapter-kind selections must never trigger the refusal")
	}
}

func TestBuildContextWindowResult_ForcesExplicitPageChunk(t *testing.T) {
	store := &fakeEvidenceStore{
		boundaries: []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 50},
		},
		pageSummaries: []domain.SummaryRecord{pageFact(10, "a storm gathers")},
		chunks: []domain.RawChunk{
			{ID: "match", PageNumber: 5, IntraPageIndex: 0, RawText: "The lighthouse storm raged all night."},
			{ID: "target", PageNumber: 30, IntraPageIndex: 0, RawText: "An unrelated quiet morning."},
		},
	}
	svc := newTestService(t, store)

	result, err := svc.BuildContextWindowResult(context.Background(),
		1, PagesWindow(1, 40), "What does the storm mean on page 30?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Refused() {
		t.Fatal("in-window explicit page must not be refused")
	}

	var sawTarget bool
	for _, part := range result.Result.Parts {
		if part.Label == PartParagraph && part.Page == 30 {
			sawTarget = true
		}
	}
	if !sawTarget {
		t.Error("expected a forced paragraph from page 30 despite its weak lexical score")
	}
	if store.pageChunkCalls != 1 {
		t.Errorf("expected one exact-page chunk fetch, got %d", store.pageChunkCalls)
	}
}

func TestBuildContextWindowResult_ForcedChunkNotDuplicated(t *testing.T) {
	store := &fakeEvidenceStore{
		boundaries: []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 50},
		},
		chunks: []domain.RawChunk{
			{ID: "only", PageNumber: 30, IntraPageIndex: 0, RawText: "The storm broke over page thirty."},
		},
	}
	svc := newTestService(t, store)

	result, err := svc.BuildContextWindowResult(context.Background(),
		1, PagesWindow(1, 40), "Tell me about the storm on page 30", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0
	for _, part := range result.Result.Parts {
		for _, c := range part.Citations {
			if c.ChunkID == "only" {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("chunk appeared %d times, want exactly once", count)
	}
}

func TestBuildContextWindowResult_DataMissing(t *testing.T) {
	svc := newTestService(t, &fakeEvidenceStore{})

	_, err := svc.BuildContextWindowResult(context.Background(),
		1, PagesWindow(1, 10), "Who is the captain?", nil)
	if !errors.Is(err, ErrDataMissing) {
		t.Fatalf("expected ErrDataMissing, got %v", err)
	}
}

func TestBuildContextWindowResult_OrdersSummariesBeforeParagraphs(t *testing.T) {
	store := &fakeEvidenceStore{
		boundaries: []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 20},
		},
		chapterSummaries: []domain.SummaryRecord{{
			Scope:        domain.SummaryScopeChapter,
			ChapterIndex: 0,
			Facts:        []string{"chapter opens at sea"},
		}},
		pageSummaries: []domain.SummaryRecord{pageFact(2, "Mira boards the ship")},
		chunks: []domain.RawChunk{
			{ID: "x", PageNumber: 2, IntraPageIndex: 0, RawText: "Mira boarded at dawn."},
		},
	}
	svc := newTestService(t, store)

	result, err := svc.BuildContextWindowResult(context.Background(),
		1, PagesWindow(1, 10), "What is Mira doing?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labels := make([]PartLabel, len(result.Result.Parts))
	for i, p := range result.Result.Parts {
		labels[i] = p.Label
	}
	want := []PartLabel{PartChapterSummary, PartPageSummary, PartParagraph}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("part order = %v, want %v", labels, want)
		}
	}

	if !strings.Contains(result.ContextText, "### Chapter 0 summary") {
		t.Errorf("context text missing chapter header:\n%s", result.ContextText)
	}
	if !strings.Contains(result.Result.SystemPrompt, "pages 1 through 10") {
		t.Errorf("system prompt missing window bounds")
	}
}

func TestBuildContextWindowResult_TokenAccounting(t *testing.T) {
	store := &fakeEvidenceStore{
		boundaries:    []domain.ChapterBoundary{{ChapterIndex: 0, StartPage: 1, EndPage: 10}},
		pageSummaries: []domain.SummaryRecord{pageFact(3, "a fact worth keeping around")},
	}
	svc := newTestService(t, store)

	result, err := svc.BuildContextWindowResult(context.Background(),
		1, PagesWindow(1, 10), "anything", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := 0
	for _, p := range result.Result.Parts {
		sum += p.EstimatedTokens
	}
	if result.Result.TokenEstimate != sum {
		t.Errorf("TokenEstimate = %d, want sum of parts %d", result.Result.TokenEstimate, sum)
	}
	wantPrompt := EstimateTokens(result.Result.SystemPrompt) + responseHeadroomTokens
	if result.Result.EstimatedTokens != wantPrompt {
		t.Errorf("EstimatedTokens = %d, want %d", result.Result.EstimatedTokens, wantPrompt)
	}
}

func TestPackParts(t *testing.T) {
	parts := []ContextPart{
		{Text: "a", EstimatedTokens: 500},
		{Text: "b", EstimatedTokens: 300},
		{Text: "c", EstimatedTokens: 400},
		{Text: "d", EstimatedTokens: 10},
	}

	t.Run("first part always included even oversized", func(t *testing.T) {
		included := packParts(parts, 100)
		if len(included) != 1 || included[0].Text != "a" {
			t.Errorf("included = %+v, want just the lead part", included)
		}
	})

	t.Run("stops at first misfit", func(t *testing.T) {
		// 500+300 fit in 900; c (400) does not; d would fit but
		// packing never skips ahead.
		included := packParts(parts, 900)
		if len(included) != 2 || included[1].Text != "b" {
			t.Errorf("included %d parts, want 2 ending at b: %+v", len(included), included)
		}
	})

	t.Run("everything fits", func(t *testing.T) {
		included := packParts(parts, 5000)
		if len(included) != 4 {
			t.Errorf("included %d parts, want all 4", len(included))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := packParts(nil, 100); got != nil {
			t.Errorf("packParts(nil) = %+v, want nil", got)
		}
	})
}

func TestBuildPageFocusedContextWindowResult(t *testing.T) {
	store := &fakeEvidenceStore{
		pageSummaries: []domain.SummaryRecord{
			pageFact(29, "the night before"),
			pageFact(30, "the storm peaks"),
			pageFact(31, "the morning after"),
			pageFact(50, "far away"),
		},
		chunks: []domain.RawChunk{
			{ID: "c1", PageNumber: 30, IntraPageIndex: 0, RawText: "Rain hammered the windows."},
			{ID: "c2", PageNumber: 30, IntraPageIndex: 1, RawText: "Mira counted the seconds between flashes."},
			{ID: "c3", PageNumber: 30, IntraPageIndex: 2, RawText: "Dawn never seemed to come."},
		},
	}
	svc := newTestService(t, store)

	result, err := svc.BuildPageFocusedContextWindowResult(context.Background(),
		1, 30, "What is happening on page 30?", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var summaryPages []int
	chunkCount := 0
	for _, part := range result.Result.Parts {
		switch part.Label {
		case PartPageSummary:
			summaryPages = append(summaryPages, part.Page)
		case PartParagraph:
			chunkCount++
		}
	}
	for _, p := range summaryPages {
		if p < 29 || p > 31 {
			t.Errorf("summary for page %d outside the 29-31 neighborhood", p)
		}
	}
	if chunkCount > 2 {
		t.Errorf("included %d raw chunks, cap is 2", chunkCount)
	}
	if result.ResolvedWindow.Start != 30 || result.ResolvedWindow.End != 30 {
		t.Errorf("resolved window = %+v, want [30,30]", result.ResolvedWindow)
	}
	if !strings.Contains(result.Result.SystemPrompt, "page 30") {
		t.Error("system prompt must name the focused page")
	}
}

func TestBuildPageFocusedContextWindowResult_DataMissing(t *testing.T) {
	svc := newTestService(t, &fakeEvidenceStore{})

	_, err := svc.BuildPageFocusedContextWindowResult(context.Background(), 1, 3, "page 3?", 0)
	if !errors.Is(err, ErrDataMissing) {
		t.Fatalf("expected ErrDataMissing, got %v", err)
	}
}

func TestBuildPageFocusedContextWindowResult_ClampsPageOne(t *testing.T) {
	store := &fakeEvidenceStore{
		pageSummaries: []domain.SummaryRecord{pageFact(1, "the opening scene")},
	}
	svc := newTestService(t, store)

	result, err := svc.BuildPageFocusedContextWindowResult(context.Background(),
		1, 1, "What happens on page 1?", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResolvedWindow.Start != 1 {
		t.Errorf("resolved start = %d, want 1", result.ResolvedWindow.Start)
	}
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(nil, nil, testLogger{}); err == nil {
		t.Error("nil store must be rejected")
	}
	if _, err := NewService(&fakeEvidenceStore{}, nil, nil); err == nil {
		t.Error("nil logger must be rejected")
	}
	if _, err := NewService(&fakeEvidenceStore{}, &Config{MaxContextTokens: -1}, testLogger{}); err == nil {
		t.Error("invalid config must be rejected")
	}
}
