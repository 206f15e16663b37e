// File: internal/services/contextwindow/window.go
package contextwindow

import "github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"

// ResolveWindow turns a window selection into a concrete page range
// plus the chapters overlapping it. It never fails: inverted page
// ranges are clamped (end pulled up to start) and an empty or unknown
// chapter selection resolves to the degenerate single-page window
// {1,1} with no chapters, which callers treat as "nothing resolved".
func ResolveWindow(selection WindowSelection, boundaries []domain.ChapterBoundary) ResolvedWindow {
	switch selection.Kind {
	case WindowKindChapters:
		return resolveChapters(selection.ChapterIndices, boundaries)
	default:
		return resolvePages(selection.Start, selection.End, boundaries)
	}
}

func resolvePages(start, end int, boundaries []domain.ChapterBoundary) ResolvedWindow {
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	return ResolvedWindow{
		Start:          start,
		End:            end,
		ChapterIndices: overlappingChapters(start, end, boundaries),
	}
}

func resolveChapters(indices []int, boundaries []domain.ChapterBoundary) ResolvedWindow {
	requested := make(map[int]bool, len(indices))
	for _, idx := range indices {
		requested[idx] = true
	}

	start, end := 0, 0
	matched := []int{}
	for _, b := range boundaries {
		if !requested[b.ChapterIndex] {
			continue
		}
		if len(matched) == 0 || b.StartPage < start {
			start = b.StartPage
		}
		if b.EndPage > end {
			end = b.EndPage
		}
		matched = append(matched, b.ChapterIndex)
	}

	if len(matched) == 0 {
		return ResolvedWindow{Start: 1, End: 1, ChapterIndices: []int{}}
	}
	return ResolvedWindow{Start: start, End: end, ChapterIndices: matched}
}

// overlappingChapters returns the indices of every chapter whose page
// span intersects [start,end], in boundary order.
func overlappingChapters(start, end int, boundaries []domain.ChapterBoundary) []int {
	indices := []int{}
	for _, b := range boundaries {
		if b.StartPage <= end && b.EndPage >= start {
			indices = append(indices, b.ChapterIndex)
		}
	}
	return indices
}
