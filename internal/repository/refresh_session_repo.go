package repository

import (
	"context"
	"time"

	"uniportal/internal/domain"

	"gorm.io/gorm"
)

// RefreshSessionRepository provides DB access for refresh sessions.
type RefreshSessionRepository struct {
	db *gorm.DB
}

func NewRefreshSessionRepository(db *gorm.DB) *RefreshSessionRepository {
	return &RefreshSessionRepository{db: db}
}

func (r *RefreshSessionRepository) Create(ctx context.Context, s *domain.RefreshSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *RefreshSessionRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshSession, error) {
	var s domain.RefreshSession
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Revoke marks a session revoked as a single conditional write. The
// returned bool reports whether this call performed the transition;
// a racing caller sees false and must fail closed. Revoking an
// already-revoked session is a no-op, never an error.
func (r *RefreshSessionRepository) Revoke(ctx context.Context, id int64, replacedByID *int64) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]any{"revoked_at": now}
	if replacedByID != nil {
		updates["replaced_by_id"] = *replacedByID
	}
	tx := r.db.WithContext(ctx).Model(&domain.RefreshSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// RevokeAllByUser invalidates every outstanding session for a user
// (forced logout, password change).
func (r *RefreshSessionRepository) RevokeAllByUser(ctx context.Context, userID int64) (int64, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&domain.RefreshSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now)
	return tx.RowsAffected, tx.Error
}

// DeleteExpired removes sessions that can never validate again:
// past expiry, or revoked longer ago than the retention window.
func (r *RefreshSessionRepository) DeleteExpired(ctx context.Context, revokedRetention time.Duration) (int64, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, now.Add(-revokedRetention)).
		Delete(&domain.RefreshSession{})
	return tx.RowsAffected, tx.Error
}
