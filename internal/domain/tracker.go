// File: internal/domain/tracker.go
package domain

import "time"

// Character is a reader-maintained character tracker row.
type Character struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	BookID      uint      `json:"book_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null;size:120"`
	Aliases     string    `json:"aliases" gorm:"size:300"`
	Description string    `json:"description"`
	FirstPage   int       `json:"first_page"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Location is a reader-maintained place tracker row.
type Location struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	BookID      uint      `json:"book_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null;size:120"`
	Description string    `json:"description"`
	FirstPage   int       `json:"first_page"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chapter is the reader-facing chapter list entry, including the
// reader's own recap text. Distinct from ChapterBoundary, which is the
// preprocessing-generated page map the retrieval engine reads.
type Chapter struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	BookID    uint      `json:"book_id" gorm:"index;not null"`
	Index     int       `json:"index" gorm:"not null"`
	Title     string    `json:"title" gorm:"size:200"`
	StartPage int       `json:"start_page"`
	EndPage   int       `json:"end_page"`
	Recap     string    `json:"recap"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a page-anchored reader note. Content is markdown; Tags is a
// comma-joined list.
type Note struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	BookID    uint      `json:"book_id" gorm:"index;not null"`
	Page      int       `json:"page"`
	Content   string    `json:"content" gorm:"not null"`
	Tags      string    `json:"tags" gorm:"size:300"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
