// File: internal/services/library/chunker_test.go
package library

import (
	"strings"
	"testing"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

func TestChunkPlainText(t *testing.T) {
	t.Run("pages and paragraphs", func(t *testing.T) {
		text := "First paragraph.\n\nSecond paragraph.\fLone paragraph on page two."
		chunks := chunkPlainText(text)

		if len(chunks) != 3 {
			t.Fatalf("got %d chunks, want 3", len(chunks))
		}
		want := []struct {
			page  int
			intra int
			text  string
		}{
			{1, 0, "First paragraph."},
			{1, 1, "Second paragraph."},
			{2, 0, "Lone paragraph on page two."},
		}
		for i, w := range want {
			if chunks[i].PageNumber != w.page || chunks[i].IntraPageIndex != w.intra {
				t.Errorf("chunk %d: position (%d,%d), want (%d,%d)",
					i, chunks[i].PageNumber, chunks[i].IntraPageIndex, w.page, w.intra)
			}
			if chunks[i].RawText != w.text {
				t.Errorf("chunk %d: text %q, want %q", i, chunks[i].RawText, w.text)
			}
		}
	})

	t.Run("assigns unique ids", func(t *testing.T) {
		chunks := chunkPlainText("a.\n\nb.\n\nc.")
		seen := make(map[string]bool)
		for _, c := range chunks {
			if c.ID == "" {
				t.Fatal("chunk without an ID")
			}
			if seen[c.ID] {
				t.Fatalf("duplicate chunk ID %q", c.ID)
			}
			seen[c.ID] = true
		}
	})

	t.Run("blank pages yield no chunks", func(t *testing.T) {
		chunks := chunkPlainText("page one.\f\fpage three.")
		for _, c := range chunks {
			if c.PageNumber == 2 {
				t.Errorf("empty page produced chunk %+v", c)
			}
		}
		if chunks[len(chunks)-1].PageNumber != 3 {
			t.Errorf("last chunk on page %d, want 3", chunks[len(chunks)-1].PageNumber)
		}
	})

	t.Run("whitespace only input", func(t *testing.T) {
		if chunks := chunkPlainText("  \n\n  \f \n "); len(chunks) != 0 {
			t.Errorf("got %d chunks, want 0", len(chunks))
		}
	})
}

func TestSplitLong(t *testing.T) {
	t.Run("short paragraph untouched", func(t *testing.T) {
		pieces := splitLong("short.")
		if len(pieces) != 1 || pieces[0] != "short." {
			t.Errorf("got %v, want the input unchanged", pieces)
		}
	})

	t.Run("cuts at sentence boundary", func(t *testing.T) {
		sentence := strings.Repeat("x", 800) + ". "
		para := sentence + strings.Repeat("y", 700)
		pieces := splitLong(para)
		if len(pieces) != 2 {
			t.Fatalf("got %d pieces, want 2", len(pieces))
		}
		if !strings.HasSuffix(pieces[0], ".") {
			t.Errorf("first piece should end at the sentence boundary, got suffix %q", pieces[0][len(pieces[0])-5:])
		}
	})

	t.Run("hard cut without sentence boundary", func(t *testing.T) {
		para := strings.Repeat("z", 3000)
		pieces := splitLong(para)
		total := 0
		for i, p := range pieces {
			if len([]rune(p)) > maxChunkRunes {
				t.Errorf("piece %d has %d runes, over the limit", i, len([]rune(p)))
			}
			total += len(p)
		}
		if total != 3000 {
			t.Errorf("pieces hold %d runes total, want 3000", total)
		}
	})

	t.Run("intra index continues across split pieces", func(t *testing.T) {
		para := strings.Repeat("w", 2500)
		chunks := chunkPlainText("lead.\n\n" + para)
		if len(chunks) < 3 {
			t.Fatalf("got %d chunks, want at least 3", len(chunks))
		}
		for i, c := range chunks {
			if c.IntraPageIndex != i {
				t.Errorf("chunk %d has intra index %d", i, c.IntraPageIndex)
			}
		}
	})
}

func TestValidateBoundaries(t *testing.T) {
	valid := []domain.ChapterBoundary{
		{ChapterIndex: 0, StartPage: 1, EndPage: 10},
		{ChapterIndex: 1, StartPage: 11, EndPage: 25},
	}

	t.Run("accepts contiguous chapters", func(t *testing.T) {
		if err := validateBoundaries(valid, 30); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("accepts empty", func(t *testing.T) {
		if err := validateBoundaries(nil, 30); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects non contiguous indices", func(t *testing.T) {
		bad := []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 10},
			{ChapterIndex: 2, StartPage: 11, EndPage: 25},
		}
		if err := validateBoundaries(bad, 30); err == nil {
			t.Error("expected error for skipped chapter index")
		}
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		bad := []domain.ChapterBoundary{{ChapterIndex: 0, StartPage: 10, EndPage: 5}}
		if err := validateBoundaries(bad, 30); err == nil {
			t.Error("expected error for inverted page range")
		}
	})

	t.Run("rejects overlap", func(t *testing.T) {
		bad := []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 10},
			{ChapterIndex: 1, StartPage: 10, EndPage: 20},
		}
		if err := validateBoundaries(bad, 30); err == nil {
			t.Error("expected error for overlapping chapters")
		}
	})

	t.Run("rejects range past total pages", func(t *testing.T) {
		if err := validateBoundaries(valid, 20); err == nil {
			t.Error("expected error for chapter past last page")
		}
	})

	t.Run("skips page cap when total unknown", func(t *testing.T) {
		if err := validateBoundaries(valid, 0); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
