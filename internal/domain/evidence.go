// File: internal/domain/evidence.go
package domain

import "time"

// The types in this file are the read-only evidence records behind the
// spoiler-safe retrieval engine. They are produced by the external
// preprocessing step and ingested verbatim; nothing in this codebase
// mutates them after ingest.

// ChapterBoundary maps one chapter index onto its inclusive page range.
// Boundaries for a book are sorted by ChapterIndex, non-overlapping,
// and cover the book's page range.
type ChapterBoundary struct {
	ID           uint `json:"-" gorm:"primarykey"`
	BookID       uint `json:"-" gorm:"index:idx_boundary_book;not null"`
	ChapterIndex int  `json:"chapter_index" gorm:"not null"`
	StartPage    int  `json:"start_page" gorm:"not null"`
	EndPage      int  `json:"end_page" gorm:"not null"`
}

// SummaryEntity is one named entity inside a summary record.
type SummaryEntity struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Mentions  int    `json:"mentions,omitempty"`
	PageSpans []int  `json:"page_spans,omitempty"`
}

// SummaryEvent is one event inside a summary record.
type SummaryEvent struct {
	Who   []string `json:"who,omitempty"`
	What  string   `json:"what"`
	Where string   `json:"where,omitempty"`
	When  string   `json:"when,omitempty"`
	Page  int      `json:"page,omitempty"`
}

// SummaryRelationship links two entities inside a summary record.
type SummaryRelationship struct {
	A             string `json:"a"`
	B             string `json:"b"`
	Relation      string `json:"relation"`
	EvidencePages []int  `json:"evidence_pages,omitempty"`
}

// SummaryScope says whether a summary covers a chapter or a single page.
type SummaryScope string

const (
	SummaryScopeChapter SummaryScope = "chapter"
	SummaryScopePage    SummaryScope = "page"
)

// SummaryRecord is the structured evidence for one chapter or page.
// Any of its lists may be empty; a record that renders to nothing is
// simply skipped by the retrieval engine.
type SummaryRecord struct {
	ID           uint         `json:"-" gorm:"primarykey"`
	BookID       uint         `json:"-" gorm:"index:idx_summary_book_scope;not null"`
	Scope        SummaryScope `json:"scope" gorm:"index:idx_summary_book_scope;not null;size:10"`
	ChapterIndex int          `json:"chapter_index,omitempty"`
	PageNumber   int          `json:"page_number,omitempty"`

	Entities      []SummaryEntity       `json:"entities" gorm:"serializer:json"`
	Events        []SummaryEvent        `json:"events" gorm:"serializer:json"`
	Relationships []SummaryRelationship `json:"relationships" gorm:"serializer:json"`
	Facts         []string              `json:"facts" gorm:"serializer:json"`
	OpenQuestions []string              `json:"open_questions" gorm:"serializer:json"`

	CreatedAt time.Time `json:"-"`
}

// RawChunk is one paragraph-sized slice of extracted book text.
// Chunks within a page are ordered by IntraPageIndex.
type RawChunk struct {
	ID             string `json:"id" gorm:"primarykey;size:36"`
	BookID         uint   `json:"-" gorm:"index:idx_chunk_book_page;not null"`
	PageNumber     int    `json:"page_number" gorm:"index:idx_chunk_book_page;not null"`
	IntraPageIndex int    `json:"intra_page_index" gorm:"not null"`
	RawText        string `json:"raw_text" gorm:"not null"`
}
