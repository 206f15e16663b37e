// File: internal/domain/book.go
package domain

import "time"

// BookStatus tracks where a book is in the upload/preprocessing pipeline.
type BookStatus string

const (
	BookStatusPending    BookStatus = "pending"    // uploaded, chunks not extracted yet
	BookStatusProcessing BookStatus = "processing" // chunks stored, awaiting summaries
	BookStatusReady      BookStatus = "ready"      // summaries and boundaries ingested
)

// Book is one uploaded title on a user's shelf.
type Book struct {
	ID     uint   `json:"id" gorm:"primarykey"`
	UserID uint   `json:"user_id" gorm:"index;not null"`
	Title  string `json:"title" gorm:"not null;size:200"`
	Author string `json:"author" gorm:"size:200"`

	TotalPages  int        `json:"total_pages"`
	CurrentPage int        `json:"current_page" gorm:"not null;default:1"`
	Status      BookStatus `json:"status" gorm:"not null;default:pending;size:20"`

	// SourceFile is the stored upload filename, not the original name.
	SourceFile string `json:"-" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClampCurrentPage keeps reading progress inside the book's page range.
func (b *Book) ClampCurrentPage(page int) int {
	if page < 1 {
		return 1
	}
	if b.TotalPages > 0 && page > b.TotalPages {
		return b.TotalPages
	}
	return page
}
