package services

import (
	"context"
	"errors"
	"testing"

	"ventamart/internal/common"
	"ventamart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductServiceForTest() (ProductService, *MockProductRepository, *MockCacheService) {
	productRepo := new(MockProductRepository)
	cacheSvc := new(MockCacheService)
	return NewProductService(productRepo, cacheSvc), productRepo, cacheSvc
}

func TestProductCreate_Success(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	product := &models.Product{
		Code:          "P001",
		Description:   "Widget",
		UnitPrice:     5.00,
		Stock:         10,
		IVA:           true,
		TaxPercentage: 15,
	}

	productRepo.On("GetByCode", ctx, "P001").Return(nil, nil)
	productRepo.On("Create", ctx, product).Return(nil)

	err := svc.Create(ctx, product)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)
	productRepo.AssertExpectations(t)
}

func TestProductCreate_DuplicateCode(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	productRepo.On("GetByCode", ctx, "P001").Return(&models.Product{Code: "P001"}, nil)

	err := svc.Create(ctx, &models.Product{Code: "P001", Description: "Widget", UnitPrice: 1})

	assert.True(t, errors.Is(err, common.ErrValidation))
	productRepo.AssertNotCalled(t, "Create")
}

func TestProductCreate_RejectsInvalidFields(t *testing.T) {
	svc, _, _ := newProductServiceForTest()
	ctx := context.Background()

	cases := []struct {
		name    string
		product *models.Product
	}{
		{"missing code", &models.Product{Description: "Widget", UnitPrice: 1}},
		{"missing description", &models.Product{Code: "P001", UnitPrice: 1}},
		{"negative price", &models.Product{Code: "P001", Description: "Widget", UnitPrice: -1}},
		{"negative stock", &models.Product{Code: "P001", Description: "Widget", UnitPrice: 1, Stock: -1}},
		{"tax over 100", &models.Product{Code: "P001", Description: "Widget", UnitPrice: 1, TaxPercentage: 150}},
	}

	for _, tc := range cases {
		err := svc.Create(ctx, tc.product)
		assert.True(t, errors.Is(err, common.ErrValidation), tc.name)
	}
}

func TestProductGetByCode_CacheHit(t *testing.T) {
	svc, productRepo, cacheSvc := newProductServiceForTest()
	ctx := context.Background()

	cached := &models.Product{Code: "P001", Description: "Widget"}
	cacheSvc.On("GetProduct", ctx, "P001").Return(cached, nil)

	product, err := svc.GetByCode(ctx, "P001")

	require.NoError(t, err)
	assert.Equal(t, cached, product)
	productRepo.AssertNotCalled(t, "GetByCode")
}

func TestProductGetByCode_CacheMissPopulates(t *testing.T) {
	svc, productRepo, cacheSvc := newProductServiceForTest()
	ctx := context.Background()

	stored := &models.Product{Code: "P001", Description: "Widget"}
	cacheSvc.On("GetProduct", ctx, "P001").Return(nil, nil)
	productRepo.On("GetByCode", ctx, "P001").Return(stored, nil)
	cacheSvc.On("SetProduct", ctx, stored, productCacheTTL).Return(nil)

	product, err := svc.GetByCode(ctx, "P001")

	require.NoError(t, err)
	assert.Equal(t, stored, product)
	cacheSvc.AssertExpectations(t)
}

func TestProductGetByCodes_AllResolved(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	productRepo.On("GetByCodes", ctx, []string{"P001", "P002"}).Return([]*models.Product{
		{Code: "P001"},
		{Code: "P002"},
	}, nil)

	byCode, err := svc.GetByCodes(ctx, []string{"P001", "P002"})

	require.NoError(t, err)
	assert.Len(t, byCode, 2)
	assert.Equal(t, "P001", byCode["P001"].Code)
}

func TestProductGetByCodes_MissingCodeFails(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	productRepo.On("GetByCodes", ctx, []string{"P001", "NOPE"}).Return([]*models.Product{
		{Code: "P001"},
	}, nil)

	_, err := svc.GetByCodes(ctx, []string{"P001", "NOPE"})

	assert.True(t, errors.Is(err, common.ErrProductNotFound))
	assert.Contains(t, err.Error(), "NOPE")
}

func TestProductGetByCodes_EmptyRequest(t *testing.T) {
	svc, _, _ := newProductServiceForTest()

	_, err := svc.GetByCodes(context.Background(), nil)

	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestAdjustStockFromQuantities_AppliesDelta(t *testing.T) {
	svc, productRepo, cacheSvc := newProductServiceForTest()
	ctx := context.Background()

	// oldQuantity 10, newQuantity 4 restores 6 units
	productRepo.On("ApplyStockDeltas", ctx, map[string]int{"P001": 6}).Return(nil)
	cacheSvc.On("DeleteProduct", ctx, "P001").Return(nil)
	productRepo.On("GetByCode", ctx, "P001").Return(&models.Product{Code: "P001", Stock: 16}, nil)

	product, err := svc.AdjustStockFromQuantities(ctx, "P001", 10, 4)

	require.NoError(t, err)
	assert.Equal(t, 16, product.Stock)
	productRepo.AssertExpectations(t)
}

func TestAdjustStockFromQuantities_InsufficientStock(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	// oldQuantity 2, newQuantity 9 consumes 7 units
	productRepo.On("ApplyStockDeltas", ctx, map[string]int{"P001": -7}).Return(common.ErrInsufficientStock)

	_, err := svc.AdjustStockFromQuantities(ctx, "P001", 2, 9)

	assert.True(t, errors.Is(err, common.ErrInsufficientStock))
}

func TestAdjustStockFromQuantities_RejectsNegativeQuantities(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()

	_, err := svc.AdjustStockFromQuantities(context.Background(), "P001", -1, 5)

	assert.True(t, errors.Is(err, common.ErrValidation))
	productRepo.AssertNotCalled(t, "ApplyStockDeltas")
}

func TestProductUpdate_InvalidatesBothCodes(t *testing.T) {
	svc, productRepo, cacheSvc := newProductServiceForTest()
	ctx := context.Background()

	id := uuid.New()
	existing := &models.Product{ID: id, Code: "P001", Description: "Widget", UnitPrice: 5}
	updated := &models.Product{ID: id, Code: "P001-NEW", Description: "Widget v2", UnitPrice: 6}

	productRepo.On("GetByID", ctx, id).Return(existing, nil)
	productRepo.On("Update", ctx, updated).Return(nil)
	cacheSvc.On("DeleteProduct", ctx, "P001").Return(nil)
	cacheSvc.On("DeleteProduct", ctx, "P001-NEW").Return(nil)

	err := svc.Update(ctx, updated)

	require.NoError(t, err)
	cacheSvc.AssertExpectations(t)
}

func TestProductDelete_NotFound(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	id := uuid.New()
	productRepo.On("GetByID", ctx, id).Return(nil, nil)

	err := svc.Delete(ctx, id)

	assert.True(t, errors.Is(err, common.ErrProductNotFound))
	productRepo.AssertNotCalled(t, "Delete")
}

func TestProductSearch_NormalizesPagination(t *testing.T) {
	svc, productRepo, _ := newProductServiceForTest()
	ctx := context.Background()

	filter := &models.ProductSearchFilter{Query: "widget"}
	productRepo.On("AdvancedSearch", ctx, mock.MatchedBy(func(f *models.ProductSearchFilter) bool {
		return f.Limit == 50 && f.Offset == 0
	})).Return([]*models.Product{}, nil)

	_, err := svc.Search(ctx, filter)

	require.NoError(t, err)
	productRepo.AssertExpectations(t)
}
