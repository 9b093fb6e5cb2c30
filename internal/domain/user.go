// File: internal/domain/user.go
package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
)

var ErrPasswordRequired = errors.New("password is required")

// User is an account. Password is nil for accounts created through Google sign-in.
type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Username      string         `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email         *string        `gorm:"size:255;uniqueIndex" json:"email"`
	Password      *string        `gorm:"size:255" json:"-"`
	GoogleID      *string        `gorm:"size:255;uniqueIndex" json:"-"`
	IsAdmin       bool           `gorm:"not null;default:false" json:"isAdmin"`
	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// HashPassword stores a bcrypt hash of password on the user.
func (u *User) HashPassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hashed)
	u.Password = &h
	return nil
}

// ValidatePassword reports whether password matches the stored hash.
// OAuth-only accounts never match.
func (u *User) ValidatePassword(password string) bool {
	if u.Password == nil || *u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)) == nil
}

func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// EmailValue returns the email or "" when absent.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
