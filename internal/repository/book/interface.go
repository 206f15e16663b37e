// File: internal/repository/book/interface.go
package book

import (
	"context"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// BookRepository handles shelf data operations. Ownership checks
// happen in the service layer; FindByID returns any user's book.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id uint) (*domain.Book, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Book, error)
	UpdateStatus(ctx context.Context, id uint, status domain.BookStatus) error
	UpdateCurrentPage(ctx context.Context, id uint, page int) error
	Delete(ctx context.Context, id uint, userID uint) error
}
