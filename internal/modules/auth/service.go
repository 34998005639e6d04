package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"uniportal/internal/domain"
	jwtsvc "uniportal/internal/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
	resetTokenBytes        = 32
)

type tokenIssuer interface {
	GenerateAccessToken(userID int64, role string) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateRefreshToken(token string) (*jwtsvc.RefreshClaims, error)
	RefreshTTL() time.Duration
}

// Service contains all business logic for session and credential
// lifecycle management.
type Service struct {
	users      UserRepositoryInterface
	sessions   RefreshSessionRepositoryInterface
	tokens     tokenIssuer
	mailer     Mailer
	bcryptCost int
	resetTTL   time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

func NewService(
	users UserRepositoryInterface,
	sessions RefreshSessionRepositoryInterface,
	tokens tokenIssuer,
	mailer Mailer,
	bcryptCost int,
	resetTTL time.Duration,
) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		resetTTL:   resetTTL,
	}
}

// Login verifies the identifier/password pair and issues an
// access+refresh token pair. The refresh session must be durably
// recorded before any token leaves this function.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		attempts := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= maxFailedLoginAttempts {
			until := now.Add(lockoutDuration)
			lockedUntil = &until
		}
		if recordErr := s.users.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); recordErr != nil {
			return nil, recordErr
		}
		if lockedUntil != nil {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	session := &domain.RefreshSession{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{
		User:   user,
		Tokens: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
	}, nil
}

// Refresh rotates a refresh session: the presented session is revoked
// and a replacement is created as one transaction. A replayed or
// forged token fails with ErrSessionInvalid, indistinguishably.
//
// The revoke is a conditional single write (revoked_at IS NULL), so
// of two racing rotations exactly one wins; the loser observes zero
// affected rows and the transaction rolls back its replacement.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*TokenPair, error) {
	now := time.Now().UTC()
	hash := hashToken(refreshRaw)
	var result *TokenPair

	err := s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.RefreshSession
		if err := tx.Where("token_hash = ?", hash).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionInvalid
			}
			return err
		}

		if !current.IsValid(now) {
			return ErrSessionInvalid
		}

		// The store entry alone is not enough: the token must also carry
		// a valid signature binding it to the same user.
		claims, err := s.tokens.ValidateRefreshToken(refreshRaw)
		if err != nil || claims.UserID != current.UserID {
			return ErrSessionInvalid
		}

		var user domain.User
		if err := tx.First(&user, current.UserID).Error; err != nil {
			return err
		}

		revoked := tx.Model(&domain.RefreshSession{}).
			Where("id = ? AND revoked_at IS NULL", current.ID).
			Update("revoked_at", now)
		if revoked.Error != nil {
			return revoked.Error
		}
		if revoked.RowsAffected == 0 {
			// Lost the race against a concurrent rotation.
			return ErrSessionInvalid
		}

		accessToken, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
		if err != nil {
			return err
		}
		newRaw, err := s.tokens.GenerateRefreshToken(user.ID)
		if err != nil {
			return err
		}

		next := domain.RefreshSession{
			UserID:    user.ID,
			TokenHash: hashToken(newRaw),
			ExpiresAt: now.Add(s.tokens.RefreshTTL()),
		}
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.RefreshSession{}).
			Where("id = ?", current.ID).
			Update("replaced_by_id", next.ID).Error; err != nil {
			return err
		}

		result = &TokenPair{AccessToken: accessToken, RefreshToken: newRaw}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes the presented refresh session. Unknown or already
// revoked tokens are a no-op; logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshRaw string) error {
	session, err := s.sessions.GetByHash(ctx, hashToken(refreshRaw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	_, err = s.sessions.Revoke(ctx, session.ID, nil)
	return err
}

// ForceLogout revokes every outstanding session for a user
// (administrative action).
func (s *Service) ForceLogout(ctx context.Context, userID int64) (int64, error) {
	return s.sessions.RevokeAllByUser(ctx, userID)
}

// RequestPasswordReset issues a single-use reset token, silently
// invalidating any prior unused one. For unknown emails it does
// nothing but reports success, so callers cannot probe which
// addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByIdentifier(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	raw, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashToken(raw), expiresAt); err != nil {
		return err
	}

	if s.mailer != nil {
		return s.mailer.SendPasswordReset(ctx, user.Email, raw)
	}
	return nil
}

// ResetPassword consumes a reset token: the password hash is replaced
// and the reset fields cleared in one conditional write, then every
// outstanding refresh session for the user is revoked. Expired,
// unknown and already-consumed tokens all fail the same way.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	newHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tokenHash := hashToken(token)

	return s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.Where("reset_token_hash = ?", tokenHash).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetTokenInvalid
			}
			return err
		}

		if user.ResetTokenExpiresAt == nil || !user.ResetTokenExpiresAt.After(now) {
			return ErrResetTokenInvalid
		}

		// Conditional on the hash still being present: a concurrent
		// consume of the same token leaves zero rows for the loser.
		consumed := tx.Model(&domain.User{}).
			Where("id = ? AND reset_token_hash = ?", user.ID, tokenHash).
			Updates(map[string]any{
				"password_hash":          newHash,
				"reset_token_hash":       nil,
				"reset_token_expires_at": nil,
				"failed_login_attempts":  0,
				"locked_until":           nil,
			})
		if consumed.Error != nil {
			return consumed.Error
		}
		if consumed.RowsAffected == 0 {
			return ErrResetTokenInvalid
		}

		// A password change invalidates all prior sessions.
		return tx.Model(&domain.RefreshSession{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", now).Error
	})
}

// ChangePassword replaces the password for an authenticated user and
// revokes all outstanding sessions, same as a reset.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}

	_, err = s.sessions.RevokeAllByUser(ctx, user.ID)
	return err
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
