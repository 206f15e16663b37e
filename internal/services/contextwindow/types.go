// File: internal/services/contextwindow/types.go
package contextwindow

// Logger defines the logging interface used across the context window service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// WindowKind discriminates the two window selection shapes.
type WindowKind string

const (
	WindowKindPages    WindowKind = "pages"
	WindowKindChapters WindowKind = "chapters"
)

// WindowSelection is the caller's reading window: either an explicit
// 1-indexed inclusive page range or a set of chapter indices. Exactly
// one kind is active per request.
type WindowSelection struct {
	Kind           WindowKind `json:"kind"`
	Start          int        `json:"start,omitempty"`
	End            int        `json:"end,omitempty"`
	ChapterIndices []int      `json:"chapter_indices,omitempty"`
}

// PagesWindow builds a pages-kind selection.
func PagesWindow(start, end int) WindowSelection {
	return WindowSelection{Kind: WindowKindPages, Start: start, End: end}
}

// ChaptersWindow builds a chapters-kind selection.
func ChaptersWindow(indices ...int) WindowSelection {
	return WindowSelection{Kind: WindowKindChapters, ChapterIndices: indices}
}

// ResolvedWindow is a concrete page range plus exactly the chapters
// whose page spans overlap it.
type ResolvedWindow struct {
	Start          int   `json:"start"`
	End            int   `json:"end"`
	ChapterIndices []int `json:"chapter_indices"`
}

// Contains reports whether a page lies inside the resolved range.
func (w ResolvedWindow) Contains(page int) bool {
	return page >= w.Start && page <= w.End
}

// PartLabel says what kind of evidence a context part carries.
type PartLabel string

const (
	PartChapterSummary PartLabel = "chapter-summary"
	PartPageSummary    PartLabel = "page-summary"
	PartParagraph      PartLabel = "paragraph"
)

// Citation points a statement back at a page, and for raw paragraphs
// at the exact chunk.
type Citation struct {
	Page    int    `json:"page"`
	ChunkID string `json:"chunk_id,omitempty"`
}

// ContextPart is one renderable piece of evidence, ordered
// most-general-first before budget packing.
type ContextPart struct {
	Label           PartLabel  `json:"label"`
	Page            int        `json:"page,omitempty"`
	ChapterIndex    int        `json:"chapter_index,omitempty"`
	Text            string     `json:"text"`
	Citations       []Citation `json:"citations"`
	EstimatedTokens int        `json:"estimated_tokens"`
}

// KRange bounds how many raw paragraphs the caller wants included.
type KRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RetrievalResult is the prompt pair plus the evidence that survived
// budget packing, handed to the chat completion collaborator.
type RetrievalResult struct {
	SystemPrompt string        `json:"system_prompt"`
	UserPrompt   string        `json:"user_prompt"`
	Parts        []ContextPart `json:"parts"`
	Citations    []Citation    `json:"citations"`

	// EstimatedTokens approximates the full prompt cost including
	// response headroom; TokenEstimate is the packed context alone.
	EstimatedTokens int `json:"estimated_tokens"`
	TokenEstimate   int `json:"token_estimate"`
}

// Result is the outcome of a build call. The out-of-window refusal is
// a successful Result with a nil RetrievalResult and the fixed Message
// set; it is not an error.
type Result struct {
	Ready          bool             `json:"ready"`
	Result         *RetrievalResult `json:"result"`
	ContextText    string           `json:"context_text"`
	ResolvedWindow ResolvedWindow   `json:"resolved_window"`
	Message        string           `json:"message,omitempty"`
}

// Refused reports whether this result is the deterministic
// out-of-window refusal.
func (r *Result) Refused() bool {
	return r.Result == nil && r.Message != ""
}
