package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"uniportal/internal/config"
	"uniportal/internal/domain"
	"uniportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// Handler manages all HTTP interactions for authentication. Tokens
// travel only in http-only cookies, never in a JSON body.
type Handler struct {
	service *Service
	cfg     *config.AuthRuntimeConfig
}

func NewHandler(service *Service, cfg *config.AuthRuntimeConfig) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/password/forgot", h.ForgotPassword)
		authGroup.POST("/password/reset", h.ResetPassword)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.GET("/me", h.GetMe)
		authGroup.POST("/password/change", h.ChangePassword)
	}
}

// RegisterAdminRoutes expects the group to already be guarded by the
// ADMIN role middleware.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/users/:id/logout", h.ForceLogout)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Identifier or password is incorrect")
		case errors.Is(err, ErrAccountLocked):
			response.Error(c, http.StatusForbidden, "ACCOUNT_LOCKED", "Too many failed attempts, try again later")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	h.setAuthCookies(c, result.Tokens)
	response.Success(c, http.StatusOK, gin.H{
		"user": toUserPublic(result.User),
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	refreshRaw, err := c.Cookie(RefreshCookieName)
	if err != nil || refreshRaw == "" {
		response.Error(c, http.StatusUnauthorized, "SESSION_INVALID", "No refresh session")
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), refreshRaw)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			h.clearAuthCookies(c)
			response.Error(c, http.StatusUnauthorized, "SESSION_INVALID", "Session expired or revoked, login again")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		return
	}

	h.setAuthCookies(c, *tokens)
	response.Success(c, http.StatusOK, gin.H{
		"message": "Session refreshed",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if refreshRaw, err := c.Cookie(RefreshCookieName); err == nil && refreshRaw != "" {
		if err := h.service.Logout(c.Request.Context(), refreshRaw); err != nil {
			response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
			return
		}
	}

	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{
		"message": "Logged out",
	})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, http.StatusInternalServerError, "RESET_REQUEST_FAILED", "Failed to process reset request")
		return
	}

	// Same response whether or not the account exists.
	response.Success(c, http.StatusOK, gin.H{
		"message": "If the account exists, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, ErrResetTokenInvalid) {
			response.Error(c, http.StatusBadRequest, "RESET_TOKEN_INVALID", "Reset token is invalid or expired")
			return
		}
		response.Error(c, http.StatusInternalServerError, "RESET_FAILED", "Failed to reset password")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Password updated, login with your new password",
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserPublic(user),
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CHANGE_FAILED", "Failed to change password")
		return
	}

	// All sessions are revoked on password change; the caller must
	// authenticate again to get a fresh pair.
	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{
		"message": "Password updated, login again",
	})
}

func (h *Handler) ForceLogout(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	revoked, err := h.service.ForceLogout(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FORCE_LOGOUT_FAILED", "Failed to revoke sessions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"revoked_sessions": revoked,
	})
}

func (h *Handler) setAuthCookies(c *gin.Context, tokens TokenPair) {
	c.SetSameSite(h.cfg.SameSiteMode())
	c.SetCookie(AccessCookieName, tokens.AccessToken, int(h.cfg.AccessTTL/time.Second), h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
	c.SetCookie(RefreshCookieName, tokens.RefreshToken, int(h.cfg.RefreshTTL/time.Second), h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(h.cfg.SameSiteMode())
	c.SetCookie(AccessCookieName, "", -1, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
	c.SetCookie(RefreshCookieName, "", -1, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func toUserPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:        u.ID,
		LoginCode: u.LoginCode,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format("2006-01-02"),
	}
}
