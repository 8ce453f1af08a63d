package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"gorm.io/gorm"

	"markethub/internal/auth"
	apperrors "markethub/internal/errors"
	"markethub/internal/events"
	"markethub/internal/model"
	"markethub/internal/notify"
	"markethub/internal/repository"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

// AuthService orchestrates the credential lifecycle: registration with email
// confirmation, login issuing token pairs, single-use refresh rotation and
// password reset.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (uint, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	ConfirmEmail(ctx context.Context, userID uint, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
}

type authService struct {
	userRepo  repository.UserRepository
	jwt       *auth.JWTService
	hasher    *auth.PasswordHasher
	sender    notify.Sender
	publisher events.Publisher
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwt *auth.JWTService,
	hasher *auth.PasswordHasher,
	sender notify.Sender,
	publisher events.Publisher,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwt:       jwt,
		hasher:    hasher,
		sender:    sender,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates an inactive account holding a confirmation token and
// dispatches the confirmation notification. Email uniqueness is enforced by
// the store's unique index, not by a pre-check, so concurrent duplicate
// registrations cannot both succeed. Notification failure does not roll the
// account back.
func (s *authService) Register(ctx context.Context, name, email, password string) (uint, error) {
	if err := validatePassword(password); err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	token := auth.NewOpaqueToken()
	user := &model.User{
		Name:                   name,
		Email:                  email,
		PasswordHash:           hash,
		Role:                   model.RoleUser,
		IsActive:               false,
		EmailConfirmationToken: &token,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return 0, apperrors.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	if err := s.sender.SendConfirmation(ctx, user.Email, user.Name, user.ID, token); err != nil {
		s.logger.Error("confirmation email dispatch failed", "user_id", user.ID, "error", err)
	}
	_ = s.publisher.PublishUserRegistered(ctx, events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return user.ID, nil
}

// Login verifies credentials and issues a new token pair. Lookup miss and
// hash mismatch are indistinguishable to the caller. The stored refresh
// token pair is overwritten, keeping a single active session per user.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", "", apperrors.ErrInvalidCredentials
	}
	if user.Pending() {
		return "", "", apperrors.ErrEmailNotConfirmed
	}

	accessToken, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return "", "", err
	}

	expires := time.Now().Add(auth.RefreshTokenExpiry)
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken, expires); err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken rotates a refresh token. The swap is a conditional update
// keyed on the old token value, so two racing calls with the same token
// produce exactly one new pair; the loser gets ErrInvalidToken.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	user, err := s.userRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrInvalidToken
		}
		return "", "", fmt.Errorf("lookup refresh token: %w", err)
	}
	if user.RefreshTokenExpires == nil || user.RefreshTokenExpires.Before(time.Now()) {
		return "", "", apperrors.ErrInvalidToken
	}

	newRefresh, err := auth.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	expires := time.Now().Add(auth.RefreshTokenExpiry)
	if err := s.userRepo.RotateRefreshToken(ctx, refreshToken, newRefresh, expires); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrInvalidToken
		}
		return "", "", fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, newRefresh, nil
}

// ConfirmEmail consumes a confirmation token, activating the account.
// Confirmation is single-use: once the token is cleared, replaying it fails
// with ErrInvalidToken.
func (s *authService) ConfirmEmail(ctx context.Context, userID uint, token string) error {
	if err := s.userRepo.ConsumeConfirmationToken(ctx, userID, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidToken
		}
		return fmt.Errorf("consume confirmation token: %w", err)
	}
	return nil
}

// ForgotPassword issues a time-boxed reset token. An unknown email returns
// silently with no side effect so the caller cannot probe which addresses
// are registered.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token := auth.NewOpaqueToken()
	expires := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.sender.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error("reset email dispatch failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword replaces the password hash and clears the reset token pair
// in one conditional update keyed on (email, token, unexpired). The new
// password is validated before any lookup.
func (s *authService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.ConsumePasswordResetToken(ctx, email, token, hash, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}

// validatePassword enforces the complexity rules: minimum length plus at
// least one upper-case letter, one lower-case letter and one digit.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain upper-case, lower-case and digit characters", apperrors.ErrValidation)
	}
	return nil
}
