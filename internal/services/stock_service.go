package services

import (
	"context"
	"errors"

	"ventamart/internal/caching"
	"ventamart/internal/common"
	"ventamart/internal/models"
	"ventamart/internal/repositories"
)

// StockReconciler owns the stock side of an order's lifecycle. Each call is
// all-or-nothing: either every product delta commits or stock is untouched.
//
//	reserve:  stock -= quantity        (create)
//	adjust:   stock += oldQty - newQty (edit)
//	release:  stock += quantity        (delete)
type StockReconciler interface {
	Reserve(ctx context.Context, order *models.Order) error
	Adjust(ctx context.Context, oldOrder, newOrder *models.Order) error
	Release(ctx context.Context, order *models.Order) error
}

type stockReconciler struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
}

func NewStockReconciler(productRepo repositories.ProductRepository, cacheSvc caching.CacheService) StockReconciler {
	return &stockReconciler{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
	}
}

func (s *stockReconciler) Reserve(ctx context.Context, order *models.Order) error {
	deltas := make(map[string]int)
	for code, qty := range order.QuantitiesByCode() {
		deltas[code] = -qty
	}
	return s.apply(ctx, deltas)
}

// Adjust re-reserves an edited order in one step. Returning the old
// quantities and taking the new ones inside the same transaction keeps the
// edit atomic; a product present in both versions sees only its net delta.
func (s *stockReconciler) Adjust(ctx context.Context, oldOrder, newOrder *models.Order) error {
	deltas := make(map[string]int)
	for code, qty := range oldOrder.QuantitiesByCode() {
		deltas[code] += qty
	}
	for code, qty := range newOrder.QuantitiesByCode() {
		deltas[code] -= qty
	}
	return s.apply(ctx, deltas)
}

func (s *stockReconciler) Release(ctx context.Context, order *models.Order) error {
	deltas := make(map[string]int)
	for code, qty := range order.QuantitiesByCode() {
		deltas[code] = qty
	}
	return s.apply(ctx, deltas)
}

func (s *stockReconciler) apply(ctx context.Context, deltas map[string]int) error {
	for code, delta := range deltas {
		if delta == 0 {
			delete(deltas, code)
		}
	}
	if len(deltas) == 0 {
		return nil
	}

	if err := s.productRepo.ApplyStockDeltas(ctx, deltas); err != nil {
		if errors.Is(err, common.ErrInsufficientStock) || errors.Is(err, common.ErrProductNotFound) {
			return err
		}
		return common.WrapDependency("apply stock deltas", err)
	}

	for code := range deltas {
		_ = s.cacheSvc.DeleteProduct(ctx, code)
	}
	return nil
}
