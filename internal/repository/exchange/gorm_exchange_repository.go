// File: internal/repository/exchange/gorm_exchange_repository.go
package exchange

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

type gormExchangeRepository struct {
	db *gorm.DB
}

func NewGormExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &gormExchangeRepository{db: db}
}

func (r *gormExchangeRepository) Create(ctx context.Context, ex *domain.AskExchange) (*domain.AskExchange, error) {
	if err := r.db.WithContext(ctx).Create(ex).Error; err != nil {
		log.Printf("[ExchangeRepository] Create error for book ID %d: %v", ex.BookID, err)
		return nil, errors.New("database error saving exchange")
	}
	return ex, nil
}

// FindByBookID returns the most recent exchanges, newest first. A
// non-positive limit means no limit.
func (r *gormExchangeRepository) FindByBookID(ctx context.Context, bookID uint, limit int) ([]domain.AskExchange, error) {
	var exchanges []domain.AskExchange
	query := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&exchanges).Error; err != nil {
		log.Printf("[ExchangeRepository] FindByBookID error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error listing exchanges")
	}
	return exchanges, nil
}

func (r *gormExchangeRepository) DeleteByBookID(ctx context.Context, bookID uint) error {
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&domain.AskExchange{}).Error; err != nil {
		log.Printf("[ExchangeRepository] DeleteByBookID error for book ID %d: %v", bookID, err)
		return errors.New("database error clearing exchanges")
	}
	return nil
}
