// File: internal/repository/exchange/interface.go
package exchange

import (
	"context"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// ExchangeRepository persists ask history per book.
type ExchangeRepository interface {
	Create(ctx context.Context, ex *domain.AskExchange) (*domain.AskExchange, error)
	FindByBookID(ctx context.Context, bookID uint, limit int) ([]domain.AskExchange, error)
	DeleteByBookID(ctx context.Context, bookID uint) error
}
