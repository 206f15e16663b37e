// File: internal/repository/book/gorm_book_repository.go
package book

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

var ErrBookNotFound = errors.New("book not found")

type gormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) BookRepository {
	return &gormBookRepository{db: db}
}

func (r *gormBookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		log.Printf("[BookRepository] Create error for title %q: %v", book.Title, err)
		return nil, errors.New("database error creating book")
	}
	return book, nil
}

func (r *gormBookRepository) Update(ctx context.Context, book *domain.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		log.Printf("[BookRepository] Update error for book ID %d: %v", book.ID, err)
		return errors.New("database error updating book")
	}
	return nil
}

func (r *gormBookRepository) FindByID(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		log.Printf("[BookRepository] FindByID error for book ID %d: %v", id, err)
		return nil, errors.New("database error finding book")
	}
	return &book, nil
}

// FindByUserID lists a user's shelf, most recently updated first.
func (r *gormBookRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Book, error) {
	var books []domain.Book
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at desc").Find(&books).Error; err != nil {
		log.Printf("[BookRepository] FindByUserID error for user ID %d: %v", userID, err)
		return nil, errors.New("database error listing books")
	}
	return books, nil
}

func (r *gormBookRepository) UpdateStatus(ctx context.Context, id uint, status domain.BookStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		log.Printf("[BookRepository] UpdateStatus error for book ID %d: %v", id, result.Error)
		return errors.New("database error updating book status")
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *gormBookRepository) UpdateCurrentPage(ctx context.Context, id uint, page int) error {
	result := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Update("current_page", page)
	if result.Error != nil {
		log.Printf("[BookRepository] UpdateCurrentPage error for book ID %d: %v", id, result.Error)
		return errors.New("database error updating reading progress")
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Delete removes a book only when it belongs to the given user.
func (r *gormBookRepository) Delete(ctx context.Context, id uint, userID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Book{})
	if result.Error != nil {
		log.Printf("[BookRepository] Delete error for book ID %d: %v", id, result.Error)
		return errors.New("database error deleting book")
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}
