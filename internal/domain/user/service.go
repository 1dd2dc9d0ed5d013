// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"gorm.io/gorm"
)

// Mailer delivers account emails. Delivery failures are the mailer's concern
// and never surface to the caller.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, token string)
}

// Service handles accounts, credentials and preferences
type Service struct {
	db              *gorm.DB
	config          *config.Config
	logger          *logrus.Logger
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
	mailer          Mailer
	now             func() time.Time
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, mailer Mailer) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		logger:          logger,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
		mailer:          mailer,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=80"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name" binding:"max=200"`
	Phone           string `json:"phone" binding:"max=20"`
	Address         string `json:"address"`
}

// LoginRequest accepts either the email or the username as Login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User   *User           `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// ProfileUpdateRequest represents a partial profile update
type ProfileUpdateRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Address  *string `json:"address"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Register creates a customer account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperror.Validation("passwords do not match")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" {
		return nil, apperror.Validation("username and email are required")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&User{}).Where("email = ? OR username = ?", email, username).Count(&count).Error; err != nil {
		return nil, apperror.Persistence("check existing user", err)
	}
	if count > 0 {
		return nil, apperror.Conflict("user_exists", "user with this email or username already exists")
	}

	now := s.now()
	user := User{
		Username:    username,
		Email:       email,
		Password:    hashedPassword,
		FullName:    strings.TrimSpace(req.FullName),
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		Role:        auth.RoleCustomer,
		IsActive:    true,
		LastLoginAt: &now,
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, apperror.FromDB(err, "user", "create user")
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.Principal())
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return &AuthResponse{User: &user, Tokens: tokens}, nil
}

// Login verifies credentials and issues tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	db := s.db.WithContext(ctx)

	var user User
	err := db.Where("email = ? OR username = ?", strings.ToLower(login), login).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, apperror.Persistence("load user", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if !user.IsActive {
		return nil, apperror.Unauthorized("account is disabled")
	}

	now := s.now()
	if err := db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	tokens, err := s.jwtManager.GenerateTokenPair(user.Principal())
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: &user, Tokens: tokens}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The role is reloaded
// from the database so demotions take effect.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	user, err := s.GetProfile(ctx, claims.UserID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("account is disabled")
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.Principal())
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, apperror.FromDB(err, "user", "load user")
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of req
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *ProfileUpdateRequest) (*User, error) {
	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperror.Persistence("update profile", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

// ChangePassword replaces the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		return apperror.Unauthorized("current password is incorrect")
	}

	if req.NewPassword != req.ConfirmPassword {
		return apperror.Validation("passwords do not match")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password", hashedPassword).Error; err != nil {
		return apperror.Persistence("change password", err)
	}

	s.logger.WithField("user_id", userID).Info("Password changed")
	return nil
}

// SetDarkMode stores the UI preference on the account
func (s *Service) SetDarkMode(ctx context.Context, userID uint, enabled bool) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("dark_mode", enabled)
	if result.Error != nil {
		return apperror.Persistence("save preference", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user")
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails it. Unknown addresses
// succeed silently so account existence is not disclosed.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	db := s.db.WithContext(ctx)

	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithField("email", email).Info("Password reset requested for unknown email")
			return nil
		}
		return apperror.Persistence("load user", err)
	}

	token := &PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.config.Security.PasswordResetTTL),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Only the most recent token stays usable.
		if err := tx.Model(&PasswordResetToken{}).
			Where("user_id = ? AND is_used = ?", user.ID, false).
			Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return apperror.Persistence("create reset token", err)
	}

	s.mailer.SendPasswordReset(ctx, user.Email, user.GetDisplayName(), token.Token)

	s.logger.WithField("user_id", user.ID).Info("Password reset token issued")
	return nil
}

// ResetPassword consumes a reset token and sets the new password in one
// transaction. A token can be used once.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperror.Validation("passwords do not match")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	now := s.now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&PasswordResetToken{}).
			Where("token = ? AND is_used = ? AND expires_at > ?", req.Token, false, now).
			Update("is_used", true)
		if result.Error != nil {
			return apperror.Persistence("consume reset token", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.Validation("reset token is invalid or expired")
		}

		var token PasswordResetToken
		if err := tx.Where("token = ?", req.Token).First(&token).Error; err != nil {
			return apperror.FromDB(err, "reset token", "load reset token")
		}

		if err := tx.Model(&User{}).Where("id = ?", token.UserID).Update("password", hashedPassword).Error; err != nil {
			return apperror.Persistence("reset password", err)
		}

		s.logger.WithField("user_id", token.UserID).Info("Password reset")
		return nil
	})
}
