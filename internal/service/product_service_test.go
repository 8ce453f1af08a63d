package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "markethub/internal/errors"
	"markethub/internal/model"
	"markethub/internal/repository"
)

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) DeactivateByUserID(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// The cache client is nil-safe, so service tests run without Redis.
func newProductService(repo *MockProductRepository) ProductService {
	return NewProductService(repo, nil, testLogger())
}

func TestProductService_GetByID(t *testing.T) {
	tests := []struct {
		name          string
		productID     uint
		setupMock     func(*MockProductRepository)
		expectedError error
	}{
		{
			name:      "product found",
			productID: 1,
			setupMock: func(m *MockProductRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, Name: "Keyboard"}, nil)
			},
			expectedError: nil,
		},
		{
			name:      "product not found",
			productID: 42,
			setupMock: func(m *MockProductRepository) {
				m.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setupMock(mockRepo)

			svc := newProductService(mockRepo)
			product, err := svc.GetByID(context.Background(), tt.productID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, product)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.productID, product.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Search_ClampsPaging(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults applied", page: 0, pageSize: 0, wantPage: 1, wantPageSize: 10},
		{name: "negative page", page: -3, pageSize: 20, wantPage: 1, wantPageSize: 20},
		{name: "oversized page size", page: 2, pageSize: 500, wantPage: 2, wantPageSize: 10},
		{name: "in range untouched", page: 3, pageSize: 100, wantPage: 3, wantPageSize: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			mockRepo.On("Search", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
				return f.Page == tt.wantPage && f.PageSize == tt.wantPageSize
			})).Return([]model.Product{}, nil)

			svc := newProductService(mockRepo)
			_, err := svc.Search(context.Background(), repository.ProductFilter{Page: tt.page, PageSize: tt.pageSize})

			assert.NoError(t, err)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Search_InvertedPriceRange(t *testing.T) {
	min := decimal.NewFromInt(100)
	max := decimal.NewFromInt(10)

	mockRepo := new(MockProductRepository)
	svc := newProductService(mockRepo)

	_, err := svc.Search(context.Background(), repository.ProductFilter{MinPrice: &min, MaxPrice: &max})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestProductService_Create(t *testing.T) {
	mockRepo := new(MockProductRepository)

	var created *model.Product
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Product")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Product)
			created.ID = 9
		}).Return(nil)

	svc := newProductService(mockRepo)
	input := ProductInput{Name: "Dock", Description: "USB-C", Price: decimal.NewFromFloat(129.00), IsAvailable: true}
	product, err := svc.Create(context.Background(), input, 4)

	assert.NoError(t, err)
	assert.Equal(t, uint(9), product.ID)
	assert.Equal(t, uint(4), created.CreatedByUserID)
	assert.True(t, created.IsAvailable)
}

func TestProductService_Update_Ownership(t *testing.T) {
	input := ProductInput{Name: "Dock", Price: decimal.NewFromInt(99), IsAvailable: true}

	tests := []struct {
		name          string
		callerID      uint
		setupMock     func(*MockProductRepository)
		expectedError error
	}{
		{
			name:     "owner may update",
			callerID: 4,
			setupMock: func(m *MockProductRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, CreatedByUserID: 4}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "non-owner forbidden",
			callerID: 7,
			setupMock: func(m *MockProductRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, CreatedByUserID: 4}, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:     "missing product",
			callerID: 4,
			setupMock: func(m *MockProductRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setupMock(mockRepo)

			svc := newProductService(mockRepo)
			product, err := svc.Update(context.Background(), 1, input, tt.callerID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, product)
				mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, input.Name, product.Name)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Delete_Ownership(t *testing.T) {
	t.Run("owner may delete", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, CreatedByUserID: 4}, nil)
		mockRepo.On("Delete", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

		svc := newProductService(mockRepo)
		assert.NoError(t, svc.Delete(context.Background(), 1, 4))
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, CreatedByUserID: 4}, nil)

		svc := newProductService(mockRepo)
		assert.ErrorIs(t, svc.Delete(context.Background(), 1, 7), apperrors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestProductService_DeactivateByUserID(t *testing.T) {
	t.Run("deactivates all products for the user", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByUserID", mock.Anything, uint(4)).Return([]model.Product{
			{ID: 1, CreatedByUserID: 4, IsAvailable: true},
			{ID: 2, CreatedByUserID: 4, IsAvailable: true},
		}, nil)
		mockRepo.On("DeactivateByUserID", mock.Anything, uint(4)).Return(nil)

		svc := newProductService(mockRepo)
		assert.NoError(t, svc.DeactivateByUserID(context.Background(), 4))
		mockRepo.AssertExpectations(t)
	})

	t.Run("no products is a no-op success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByUserID", mock.Anything, uint(4)).Return([]model.Product{}, nil)
		mockRepo.On("DeactivateByUserID", mock.Anything, uint(4)).Return(nil)

		svc := newProductService(mockRepo)
		assert.NoError(t, svc.DeactivateByUserID(context.Background(), 4))
	})
}
