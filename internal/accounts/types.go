package accounts

import (
	"context"
	"errors"
	"time"
)

// Role mirrors the capability tiers of the host platform.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleAuthor     Role = "author"
	RoleSubscriber Role = "subscriber"
)

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidCredentials indicates a login/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput indicates a malformed create request.
	ErrInvalidInput = errors.New("invalid account input")
)

// Account is a user record of the directory.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateInput carries the fields of a new account. Password is plain text and
// hashed by the Service.
type CreateInput struct {
	Email       string
	DisplayName string
	Role        Role
	Password    string
}

// Repository persists accounts.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	Count(ctx context.Context) (int64, error)
}
