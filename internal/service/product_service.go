package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"markethub/internal/cache"
	apperrors "markethub/internal/errors"
	"markethub/internal/model"
	"markethub/internal/repository"
)

const (
	productCacheTTL = 5 * time.Minute

	defaultPageSize = 10
	maxPageSize     = 100
)

// ProductInput carries the mutable product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
}

// ProductService exposes product CRUD, search and the per-user deactivation
// used by the cross-service cascade.
type ProductService interface {
	GetAll(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	GetByUserID(ctx context.Context, userID uint) ([]model.Product, error)
	Search(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Create(ctx context.Context, input ProductInput, userID uint) (*model.Product, error)
	Update(ctx context.Context, id uint, input ProductInput, userID uint) (*model.Product, error)
	Delete(ctx context.Context, id, userID uint) error
	DeactivateByUserID(ctx context.Context, userID uint) error
}

type productService struct {
	repo   repository.ProductRepository
	cache  *cache.Client
	logger *slog.Logger
}

// NewProductService builds a ProductService with repository and cache.
func NewProductService(repo repository.ProductRepository, cache *cache.Client, logger *slog.Logger) ProductService {
	return &productService{repo: repo, cache: cache, logger: logger}
}

func (s *productService) cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *productService) GetAll(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

func (s *productService) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, productCacheTTL)
	}
	return product, nil
}

func (s *productService) GetByUserID(ctx context.Context, userID uint) ([]model.Product, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Search clamps paging to sane bounds and rejects inverted price ranges.
func (s *productService) Search(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > maxPageSize {
		filter.PageSize = defaultPageSize
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: min price cannot exceed max price", apperrors.ErrValidation)
	}
	return s.repo.Search(ctx, filter)
}

func (s *productService) Create(ctx context.Context, input ProductInput, userID uint) (*model.Product, error) {
	product := &model.Product{
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		IsAvailable:     input.IsAvailable,
		CreatedByUserID: userID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// Update persists the new fields after checking the caller owns the product.
func (s *productService) Update(ctx context.Context, id uint, input ProductInput, userID uint) (*model.Product, error) {
	product, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.IsAvailable = input.IsAvailable
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id, userID uint) error {
	product, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// DeactivateByUserID marks all of a user's products unavailable. The update
// is idempotent, so replays from the users service are harmless.
func (s *productService) DeactivateByUserID(ctx context.Context, userID uint) error {
	products, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateByUserID(ctx, userID); err != nil {
		return fmt.Errorf("deactivate products: %w", err)
	}
	for _, p := range products {
		_ = s.cache.Delete(ctx, s.cacheKey(p.ID))
	}
	s.logger.Info("deactivated products for user", "user_id", userID, "count", len(products))
	return nil
}

func (s *productService) findOwned(ctx context.Context, id, userID uint) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}
	if product.CreatedByUserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return product, nil
}
