package domain

import "time"

// RefreshSession stores issued refresh tokens for users.
//
// Security notes:
// - We never store the raw token in DB, only its SHA-256 hash (TokenHash).
// - On refresh we rotate: the old session is revoked and replaced by a
//   new one in the same transaction.
// - RevokedAt is monotonic: it is set at most once and never cleared.
type RefreshSession struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`

	ReplacedByID *int64 `json:"replaced_by_id" gorm:"index"`
}

func (s *RefreshSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *RefreshSession) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid is the single validity predicate: not revoked and not past
// its absolute expiry.
func (s *RefreshSession) IsValid(now time.Time) bool {
	return !s.IsRevoked() && !s.IsExpired(now)
}
