package services

import (
	"context"
	"fmt"
	"time"

	"ventamart/internal/caching"
	"ventamart/internal/common"
	"ventamart/internal/models"
	"ventamart/internal/repositories"

	"github.com/google/uuid"
)

const productCacheTTL = 5 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	GetByDescription(ctx context.Context, description string) (*models.Product, error)
	GetByCodes(ctx context.Context, codes []string) (map[string]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	// AdjustStockFromQuantities applies delta = oldQuantity - newQuantity to
	// the product's stock, guarded against going negative.
	AdjustStockFromQuantities(ctx context.Context, code string, oldQuantity, newQuantity int) (*models.Product, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
}

func NewProductService(productRepo repositories.ProductRepository, cacheSvc caching.CacheService) ProductService {
	return &productService{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
	}
}

func (s *productService) validate(product *models.Product) error {
	if err := common.ValidateRequiredString(product.Code, "code"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateRequiredString(product.Description, "description"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if product.UnitPrice < 0 {
		return fmt.Errorf("%w: unit_price cannot be negative", common.ErrValidation)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", common.ErrValidation)
	}
	if product.TaxPercentage < 0 || product.TaxPercentage > 100 {
		return fmt.Errorf("%w: tax_percentage must be between 0 and 100", common.ErrValidation)
	}
	return nil
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}

	existing, err := s.productRepo.GetByCode(ctx, product.Code)
	if err != nil {
		return common.WrapDependency("product lookup", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: code %s already registered", common.ErrValidation, product.Code)
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return common.WrapDependency("create product", err)
	}
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.WrapDependency("get product", err)
	}
	return product, nil
}

func (s *productService) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	if cached, err := s.cacheSvc.GetProduct(ctx, code); err == nil && cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, common.WrapDependency("get product by code", err)
	}
	if product != nil {
		_ = s.cacheSvc.SetProduct(ctx, product, productCacheTTL)
	}
	return product, nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	product, err := s.productRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, common.WrapDependency("get product by barcode", err)
	}
	return product, nil
}

func (s *productService) GetByDescription(ctx context.Context, description string) (*models.Product, error) {
	product, err := s.productRepo.GetByDescription(ctx, description)
	if err != nil {
		return nil, common.WrapDependency("get product by description", err)
	}
	return product, nil
}

// GetByCodes resolves a batch of codes into a map keyed by code. Every
// requested code must resolve; a missing one is ErrProductNotFound, matching
// the pricing engine's contract.
func (s *productService) GetByCodes(ctx context.Context, codes []string) (map[string]*models.Product, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: product codes are required", common.ErrValidation)
	}

	products, err := s.productRepo.GetByCodes(ctx, codes)
	if err != nil {
		return nil, common.WrapDependency("batch product lookup", err)
	}

	byCode := make(map[string]*models.Product, len(products))
	for _, product := range products {
		byCode[product.Code] = product
	}
	for _, code := range codes {
		if _, ok := byCode[code]; !ok {
			return nil, fmt.Errorf("%w: code %s", common.ErrProductNotFound, code)
		}
	}
	return byCode, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}

	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return common.WrapDependency("get product", err)
	}
	if existing == nil {
		return common.ErrProductNotFound
	}

	product.CreatedAt = existing.CreatedAt
	if err := s.productRepo.Update(ctx, product); err != nil {
		return common.WrapDependency("update product", err)
	}
	// Invalidate both codes in case the code itself changed.
	_ = s.cacheSvc.DeleteProduct(ctx, existing.Code)
	_ = s.cacheSvc.DeleteProduct(ctx, product.Code)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return common.WrapDependency("get product", err)
	}
	if existing == nil {
		return common.ErrProductNotFound
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return common.WrapDependency("delete product", err)
	}
	_ = s.cacheSvc.DeleteProduct(ctx, existing.Code)
	return nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	products, err := s.productRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, common.WrapDependency("list products", err)
	}
	return products, nil
}

func (s *productService) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter == nil {
		return nil, fmt.Errorf("%w: filter cannot be nil", common.ErrValidation)
	}
	var err error
	filter.Limit, filter.Offset, err = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	products, err := s.productRepo.AdvancedSearch(ctx, filter)
	if err != nil {
		return nil, common.WrapDependency("search products", err)
	}
	return products, nil
}

func (s *productService) AdjustStockFromQuantities(ctx context.Context, code string, oldQuantity, newQuantity int) (*models.Product, error) {
	if oldQuantity < 0 || newQuantity < 0 {
		return nil, fmt.Errorf("%w: quantities cannot be negative", common.ErrValidation)
	}

	delta := oldQuantity - newQuantity
	if err := s.productRepo.ApplyStockDeltas(ctx, map[string]int{code: delta}); err != nil {
		return nil, err
	}
	_ = s.cacheSvc.DeleteProduct(ctx, code)

	product, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, common.WrapDependency("get product by code", err)
	}
	return product, nil
}
