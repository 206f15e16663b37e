// File: internal/services/user_services/lockout_service.go
package user_services

import (
	"context"
	"fmt"
	"time"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/user"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

// LockoutService handles account security and brute force protection.
type LockoutService struct {
	userRepo user.UserRepository
	logger   Logger
}

func NewLockoutService(userRepo user.UserRepository, logger Logger) *LockoutService {
	return &LockoutService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RecordFailedAttempt records a failed login attempt and may lock the account.
func (s *LockoutService) RecordFailedAttempt(ctx context.Context, username string) error {
	if username == "" {
		s.logger.Warn("failed attempt recorded with empty username")
		return fmt.Errorf("username is required")
	}

	account, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Error("failed to find user for failed attempt recording",
			"error", err,
			"username", mask(username))
		return fmt.Errorf("failed to find user: %w", err)
	}

	account.FailedLoginAttempts++
	now := time.Now()
	account.LastFailedLoginAt = &now

	s.logger.Warn("failed login attempt recorded",
		"user_id", account.ID,
		"attempts", account.FailedLoginAttempts,
		"max_attempts", MaxFailedAttempts)

	if account.FailedLoginAttempts >= MaxFailedAttempts {
		lockUntil := now.Add(LockoutDuration)
		account.LockedUntil = &lockUntil

		s.logger.Error("account locked due to excessive failed attempts",
			"user_id", account.ID,
			"attempts", account.FailedLoginAttempts,
			"locked_until", lockUntil.Format(time.RFC3339))
	}

	if err := s.userRepo.Update(ctx, account); err != nil {
		s.logger.Error("failed to update failed login attempts",
			"error", err,
			"user_id", account.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// ClearFailedAttempts clears failed login attempts after successful login.
func (s *LockoutService) ClearFailedAttempts(ctx context.Context, userID uint) error {
	if userID == 0 {
		s.logger.Warn("clear failed attempts attempted with invalid user ID", "user_id", userID)
		return fmt.Errorf("user ID is required")
	}

	if err := s.userRepo.ResetFailedAttempts(ctx, userID); err != nil {
		s.logger.Error("failed to clear failed attempts", "error", err, "user_id", userID)
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("failed login attempts cleared", "user_id", userID)
	return nil
}
