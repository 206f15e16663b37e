// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

// ErrUserNotFound lets services distinguish a missing user from a
// database failure.
var ErrUserNotFound = errors.New("user not found")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts a new user record.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Printf("[UserRepository] Create error for username %s: %v", user.Username, err)
		return nil, errors.New("database error creating user")
	}
	return user, nil
}

// Update saves changes to an existing user record.
func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		log.Printf("[UserRepository] Update error for user ID %d: %v", user.ID, err)
		return errors.New("database error updating user")
	}
	return nil
}

// FindByID finds a user by their ID.
func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user, "FindByID", id)
}

// FindByUsername finds a user by their username.
func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user, "FindByUsername", username)
}

// FindAll retrieves all users, ordered by ID for a predictable listing.
func (r *gormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		log.Printf("[UserRepository] FindAll error: %v", err)
		return nil, errors.New("database error retrieving all users")
	}
	return users, nil
}

// ResetFailedAttempts clears lockout state after a successful login.
func (r *gormUserRepository) ResetFailedAttempts(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          time.Time{},
	}).Error
	if err != nil {
		log.Printf("[UserRepository] ResetFailedAttempts error for user ID %d: %v", id, err)
		return errors.New("database error resetting failed attempts")
	}
	return nil
}

// GetCreditBalance retrieves a user's current credit balance.
func (r *gormUserRepository) GetCreditBalance(ctx context.Context, userID uint) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Select("credit_balance").Scan(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		log.Printf("[UserRepository] GetCreditBalance error for user ID %d: %v", userID, err)
		return 0, errors.New("database error getting credit balance")
	}
	return balance, nil
}

// UpdateCreditBalance updates a user's credit balance.
func (r *gormUserRepository) UpdateCreditBalance(ctx context.Context, userID uint, newBalance int) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("credit_balance", newBalance)
	if result.Error != nil {
		log.Printf("[UserRepository] UpdateCreditBalance error for user ID %d: %v", userID, result.Error)
		return errors.New("database error updating credit balance")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// handleFindError maps gorm's not-found onto the sentinel and hides
// other database errors behind a generic message.
func (r *gormUserRepository) handleFindError(err error, user *domain.User, methodName string, identifier interface{}) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepository] %s error for %v: %v", methodName, identifier, err)
		return nil, errors.New("database error finding user")
	}
	return user, nil
}
