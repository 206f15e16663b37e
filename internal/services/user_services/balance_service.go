// File: internal/services/user_services/balance_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/user"
)

type BalanceService struct {
	userRepo user.UserRepository
}

func NewBalanceService(userRepo user.UserRepository) *BalanceService {
	return &BalanceService{
		userRepo: userRepo,
	}
}

// GetCreditBalance retrieves a user's current credit balance.
func (s *BalanceService) GetCreditBalance(ctx context.Context, userID uint) (int, error) {
	balance, err := s.userRepo.GetCreditBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return 0, errors.New("user not found")
		}
		return 0, fmt.Errorf("failed to get credit balance: %w", err)
	}
	return balance, nil
}

// GetUserBalanceInfo retrieves both current and lifetime balance.
func (s *BalanceService) GetUserBalanceInfo(ctx context.Context, userID uint) (current int, total int, err error) {
	account, err := s.findUserByID(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return account.CreditBalance, account.TotalCreditBalance, nil
}

// CanUserAskQuestion checks if user has enough balance for a question.
func (s *BalanceService) CanUserAskQuestion(ctx context.Context, userID uint, questionLength int) (bool, int, error) {
	account, err := s.findUserByID(ctx, userID)
	if err != nil {
		return false, 0, err
	}

	charge := account.ChargeForQuestion(questionLength)
	return account.CreditBalance >= charge, charge, nil
}

// DeductCreditsForQuestion deducts credits when user asks a question.
func (s *BalanceService) DeductCreditsForQuestion(ctx context.Context, userID uint, questionLength int) (int, error) {
	account, err := s.findUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	charge := account.ChargeForQuestion(questionLength)
	if err := account.DeductCredits(questionLength); err != nil {
		return 0, err
	}

	if err := s.userRepo.UpdateCreditBalance(ctx, userID, account.CreditBalance); err != nil {
		return 0, fmt.Errorf("failed to update credit balance: %w", err)
	}
	return charge, nil
}

// CalculateChargePreview calculates the charge without deducting.
func (s *BalanceService) CalculateChargePreview(questionLength int) int {
	if questionLength < domain.MinQuestionCharge {
		return domain.MinQuestionCharge
	}
	return questionLength
}

// AddCredits tops up a user's balance (admin functionality).
func (s *BalanceService) AddCredits(ctx context.Context, userID uint, amount int) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}

	account, err := s.findUserByID(ctx, userID)
	if err != nil {
		return err
	}

	account.AddCredits(amount)
	if err := s.userRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update credit balance: %w", err)
	}
	return nil
}

func (s *BalanceService) findUserByID(ctx context.Context, userID uint) (*domain.User, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return account, nil
}
