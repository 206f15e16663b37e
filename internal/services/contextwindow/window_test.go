package contextwindow

import (
	"reflect"
	"testing"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

func testBoundaries() []domain.ChapterBoundary {
	return []domain.ChapterBoundary{
		{ChapterIndex: 0, StartPage: 1, EndPage: 10},
		{ChapterIndex: 1, StartPage: 11, EndPage: 25},
		{ChapterIndex: 2, StartPage: 26, EndPage: 40},
	}
}

func TestResolveWindow_PagesClampsInvertedRange(t *testing.T) {
	resolved := ResolveWindow(PagesWindow(10, 5), testBoundaries())

	if resolved.Start != 10 || resolved.End != 10 {
		t.Errorf("resolved range = [%d,%d], want [10,10]", resolved.Start, resolved.End)
	}
}

func TestResolveWindow_PagesClampsStartBelowOne(t *testing.T) {
	resolved := ResolveWindow(PagesWindow(0, 5), testBoundaries())

	if resolved.Start != 1 || resolved.End != 5 {
		t.Errorf("resolved range = [%d,%d], want [1,5]", resolved.Start, resolved.End)
	}
}

func TestResolveWindow_ChapterCoverage(t *testing.T) {
	boundaries := testBoundaries()
	cases := []struct {
		name string
		sel  WindowSelection
		want []int
	}{
		{"single chapter span", PagesWindow(3, 8), []int{0}},
		{"straddles two chapters", PagesWindow(8, 12), []int{0, 1}},
		{"covers everything", PagesWindow(1, 40), []int{0, 1, 2}},
		{"beyond the book", PagesWindow(100, 200), []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolved := ResolveWindow(tc.sel, boundaries)
			if !reflect.DeepEqual(resolved.ChapterIndices, tc.want) {
				t.Errorf("chapter indices = %v, want %v", resolved.ChapterIndices, tc.want)
			}
			// Every reported chapter must actually overlap the range.
			for _, idx := range resolved.ChapterIndices {
				b := boundaries[idx]
				if b.StartPage > resolved.End || b.EndPage < resolved.Start {
					t.Errorf("chapter %d does not overlap [%d,%d]", idx, resolved.Start, resolved.End)
				}
			}
		})
	}
}

func TestResolveWindow_ChapterSelection(t *testing.T) {
	boundaries := []domain.ChapterBoundary{
		{ChapterIndex: 0, StartPage: 1, EndPage: 10},
		{ChapterIndex: 1, StartPage: 11, EndPage: 25},
	}

	resolved := ResolveWindow(ChaptersWindow(1), boundaries)

	want := ResolvedWindow{Start: 11, End: 25, ChapterIndices: []int{1}}
	if !reflect.DeepEqual(resolved, want) {
		t.Errorf("resolved = %+v, want %+v", resolved, want)
	}
}

func TestResolveWindow_ChapterSelectionSpansMultiple(t *testing.T) {
	resolved := ResolveWindow(ChaptersWindow(0, 2), testBoundaries())

	if resolved.Start != 1 || resolved.End != 40 {
		t.Errorf("resolved range = [%d,%d], want [1,40]", resolved.Start, resolved.End)
	}
	if !reflect.DeepEqual(resolved.ChapterIndices, []int{0, 2}) {
		t.Errorf("chapter indices = %v, want [0 2]", resolved.ChapterIndices)
	}
}

func TestResolveWindow_EmptyChapterSelectionFallsBack(t *testing.T) {
	cases := []struct {
		name string
		sel  WindowSelection
	}{
		{"no indices", ChaptersWindow()},
		{"unknown indices", ChaptersWindow(7, 9)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolved := ResolveWindow(tc.sel, testBoundaries())
			want := ResolvedWindow{Start: 1, End: 1, ChapterIndices: []int{}}
			if !reflect.DeepEqual(resolved, want) {
				t.Errorf("resolved = %+v, want degenerate %+v", resolved, want)
			}
		})
	}
}
