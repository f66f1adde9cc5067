package handler

import (
	"context"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// UserStore is the credential store contract consumed by the handlers.
// *repository.UserRepo implements it against MySQL; tests substitute
// an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, fullName, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateRole(ctx context.Context, id uint64, roleID uint8) error
	UpdateActive(ctx context.Context, id uint64, active bool) error
	UpdateLoggedIn(ctx context.Context, id uint64, loggedIn bool) error
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	List(ctx context.Context, viewerRole string) ([]model.User, bool, error)
}

// OTPStore is the one-time code ledger contract consumed by the
// handlers. *repository.OTPRepo implements it against MySQL.
type OTPStore interface {
	Insert(ctx context.Context, otp model.OTP) error
	FindValid(ctx context.Context, email, code, purpose string) (model.OTP, error)
	Delete(ctx context.Context, id uint64) error
	MarkUsed(ctx context.Context, id uint64) error
	DeleteByEmailPurpose(ctx context.Context, email, purpose string) error
}
