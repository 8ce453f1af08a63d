package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	apperrors "markethub/internal/errors"
	"markethub/internal/events"
	"markethub/internal/model"
	"markethub/internal/repository"
)

// ProductsDeactivator is the outbound collaborator used for the deactivation
// cascade.
type ProductsDeactivator interface {
	DeactivateByUser(ctx context.Context, userID uint) error
}

// UserService exposes administrative user operations. Deactivate triggers
// the cross-service cascade as a best-effort side effect.
type UserService interface {
	GetAll(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	Update(ctx context.Context, id uint, name, email string) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	Activate(ctx context.Context, id uint) error
	Deactivate(ctx context.Context, id uint) error
	SetRole(ctx context.Context, id uint, role model.Role) error
}

type userService struct {
	userRepo  repository.UserRepository
	products  ProductsDeactivator
	publisher events.Publisher
	logger    *slog.Logger
}

// NewUserService builds a UserService.
func NewUserService(
	userRepo repository.UserRepository,
	products ProductsDeactivator,
	publisher events.Publisher,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:  userRepo,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *userService) GetAll(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, name, email string) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user)
}

func (s *userService) Activate(ctx context.Context, id uint) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user.IsActive = true
	return s.userRepo.Update(ctx, user)
}

// Deactivate marks the user inactive and then asks the products service to
// deactivate that user's products. The user-side state change is committed
// first; a bridge failure is logged and never surfaced to the caller.
func (s *userService) Deactivate(ctx context.Context, id uint) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user deactivated, deactivating products", "user_id", id)
	if err := s.products.DeactivateByUser(ctx, id); err != nil {
		s.logger.Error("product deactivation cascade failed", "user_id", id, "error", err)
	}

	_ = s.publisher.PublishUserDeactivated(ctx, events.UserDeactivatedEvent{
		UserID:        id,
		DeactivatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

func (s *userService) SetRole(ctx context.Context, id uint, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user.Role = role
	return s.userRepo.Update(ctx, user)
}
