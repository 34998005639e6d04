package auth

import (
	"context"
	"time"

	"uniportal/internal/domain"

	"gorm.io/gorm"
)

// UserRepositoryInterface — only the methods the auth service uses.
type UserRepositoryInterface interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	RecordLoginFailure(ctx context.Context, userID int64, attempts int, lockedUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	DB() *gorm.DB // for the rotation and reset transactions
}

// RefreshSessionRepositoryInterface — storage for refresh sessions.
type RefreshSessionRepositoryInterface interface {
	Create(ctx context.Context, s *domain.RefreshSession) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshSession, error)
	Revoke(ctx context.Context, id int64, replacedByID *int64) (bool, error)
	RevokeAllByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, revokedRetention time.Duration) (int64, error)
}

// Mailer delivers reset tokens to users. Delivery is a collaborator
// concern; the core only hands the raw token over.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}
