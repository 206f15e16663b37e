// File: internal/repository/user/interface.go
package user

import (
	"context"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	ResetFailedAttempts(ctx context.Context, id uint) error
	GetCreditBalance(ctx context.Context, userID uint) (int, error)
	UpdateCreditBalance(ctx context.Context, userID uint, newBalance int) error
}
