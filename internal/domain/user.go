// File: internal/domain/user.go
package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinQuestionCharge is the smallest number of credits a question can cost.
const MinQuestionCharge = 50

// DefaultRegistrationCredits is the credit balance granted on signup.
const DefaultRegistrationCredits = 25000

// User is a reader with their own shelf of books.
type User struct {
	ID       uint   `json:"id" gorm:"primarykey"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:20"`
	Password string `json:"-" gorm:"not null"`
	IsAdmin  bool   `json:"is_admin" gorm:"default:false"`

	// Question credits: each AI question costs credits proportional
	// to its length, never less than MinQuestionCharge.
	CreditBalance      int `json:"credit_balance" gorm:"not null;default:0"`
	TotalCreditBalance int `json:"total_credit_balance" gorm:"not null;default:0"`

	// Brute-force lockout bookkeeping.
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LastFailedLoginAt   *time.Time `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HashPassword securely hashes the user's password.
func (u *User) HashPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the user's hashed password.
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// IsAccountLocked reports whether the lockout window is still active.
func (u *User) IsAccountLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// ChargeForQuestion returns the credit cost of a question of the given length.
func (u *User) ChargeForQuestion(questionLength int) int {
	if questionLength < MinQuestionCharge {
		return MinQuestionCharge
	}
	return questionLength
}

// CanAskQuestion reports whether the user has any credits left.
func (u *User) CanAskQuestion() bool {
	return u.CreditBalance > 0
}

// DeductCredits removes the charge for a question from the balance.
func (u *User) DeductCredits(questionLength int) error {
	charge := u.ChargeForQuestion(questionLength)
	if u.CreditBalance < charge {
		return errors.New("insufficient credit balance")
	}
	u.CreditBalance -= charge
	return nil
}

// AddCredits tops up both the current and lifetime balances.
func (u *User) AddCredits(amount int) {
	u.CreditBalance += amount
	u.TotalCreditBalance += amount
}
