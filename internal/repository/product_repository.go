package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"markethub/internal/model"
)

// ProductFilter narrows a product search. Nil fields are ignored.
type ProductFilter struct {
	SearchTerm      string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	IsAvailable     *bool
	CreatedByUserID *uint
	Page            int
	PageSize        int
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByUserID(ctx context.Context, userID uint) ([]model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	// DeactivateByUserID marks all of a user's products unavailable.
	// Idempotent: repeating the update is a no-op.
	DeactivateByUserID(ctx context.Context, userID uint) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds a GORM-backed repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Delete(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("created_by_user_id = ?", userID).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Search(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.SearchTerm != "" {
		term := "%" + filter.SearchTerm + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", term, term)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", filter.MaxPrice)
	}
	if filter.IsAvailable != nil {
		q = q.Where("is_available = ?", *filter.IsAvailable)
	}
	if filter.CreatedByUserID != nil {
		q = q.Where("created_by_user_id = ?", *filter.CreatedByUserID)
	}

	offset := (filter.Page - 1) * filter.PageSize
	var products []model.Product
	if err := q.Order("created_at DESC").Offset(offset).Limit(filter.PageSize).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) DeactivateByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("created_by_user_id = ?", userID).
		Update("is_available", false).Error
}
