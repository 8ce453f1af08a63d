package repository

import (
	"context"
	"errors"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "markethub/internal/errors"
	"markethub/internal/model"
)

const mysqlDuplicateEntry = 1062

// UserRepository defines credential-store persistence operations. Token
// consumption and refresh rotation are single conditional updates so that
// concurrent callers cannot both succeed with the same token value.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)

	// SetRefreshToken overwrites the stored refresh token pair (login).
	SetRefreshToken(ctx context.Context, userID uint, token string, expires time.Time) error
	// RotateRefreshToken swaps oldToken for newToken only if oldToken is
	// still the stored value. Returns gorm.ErrRecordNotFound when another
	// caller rotated first.
	RotateRefreshToken(ctx context.Context, oldToken, newToken string, expires time.Time) error
	// ConsumeConfirmationToken clears the confirmation token and activates
	// the account in one conditional update keyed on (id, token).
	ConsumeConfirmationToken(ctx context.Context, userID uint, token string) error
	// SetPasswordResetToken stores the reset token pair.
	SetPasswordResetToken(ctx context.Context, userID uint, token string, expires time.Time) error
	// ConsumePasswordResetToken replaces the password hash and clears the
	// reset token pair, keyed on (email, token, unexpired).
	ConsumePasswordResetToken(ctx context.Context, email, token, newHash string, now time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		var mysqlErr *gomysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperrors.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Delete(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("refresh_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":         token,
			"refresh_token_expires": expires,
		}).Error
}

func (r *userRepository) RotateRefreshToken(ctx context.Context, oldToken, newToken string, expires time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("refresh_token = ?", oldToken).
		Updates(map[string]interface{}{
			"refresh_token":         newToken,
			"refresh_token_expires": expires,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) ConsumeConfirmationToken(ctx context.Context, userID uint, token string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND email_confirmation_token = ?", userID, token).
		Updates(map[string]interface{}{
			"email_confirmation_token": nil,
			"is_active":                true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_reset_token":   token,
			"password_reset_expires": expires,
		}).Error
}

func (r *userRepository) ConsumePasswordResetToken(ctx context.Context, email, token, newHash string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND password_reset_token = ? AND password_reset_expires > ?", email, token, now).
		Updates(map[string]interface{}{
			"password_hash":          newHash,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
