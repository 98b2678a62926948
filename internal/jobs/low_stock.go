package jobs

import (
	"context"
	"log"
	"time"

	"ventamart/internal/caching"
	"ventamart/internal/models"
	"ventamart/internal/repositories"
)

const lowStockReportTTL = 1 * time.Hour

// LowStockService scans the catalog for products below a stock threshold
// and keeps the latest report cached for quick retrieval.
type LowStockService struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
}

func NewLowStockService(productRepo repositories.ProductRepository, cacheSvc caching.CacheService) *LowStockService {
	return &LowStockService{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
	}
}

func (s *LowStockService) CheckLowStock(ctx context.Context, threshold int) ([]*models.Product, error) {
	if threshold <= 0 {
		threshold = 10 // Default threshold
	}

	products, err := s.productRepo.ListBelowStock(ctx, threshold, 1000)
	if err != nil {
		log.Printf("Failed to list low stock products: %v", err)
		return nil, err
	}

	return products, nil
}

func (s *LowStockService) LogLowStockAlerts(products []*models.Product, threshold int) {
	if len(products) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Low stock alerts (%d products):", len(products))
	for _, p := range products {
		log.Printf("- Product '%s' (%s) has %d units (threshold: %d)",
			p.Description,
			p.Code,
			p.Stock,
			threshold)
	}
}

// LowStockReport serves the cached report when one is present, otherwise
// runs a fresh check and caches the result. The bool reports whether the
// data came from cache.
func (s *LowStockService) LowStockReport(ctx context.Context, threshold int) ([]*models.Product, bool, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetLowStockReport(ctx)
		if err != nil {
			log.Printf("Failed to read cached low stock report: %v", err)
		} else if cached != nil {
			return cached, true, nil
		}
	}

	products, err := s.CheckLowStock(ctx, threshold)
	if err != nil {
		return nil, false, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetLowStockReport(ctx, products, lowStockReportTTL); err != nil {
			log.Printf("Failed to cache low stock report: %v", err)
		}
	}
	return products, false, nil
}

// ScheduledLowStockCheck runs the check and refreshes the cached report.
func (s *LowStockService) ScheduledLowStockCheck(ctx context.Context, threshold int) error {
	log.Println("Starting scheduled low stock check")

	products, err := s.CheckLowStock(ctx, threshold)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}

	s.LogLowStockAlerts(products, threshold)

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetLowStockReport(ctx, products, lowStockReportTTL); err != nil {
			log.Printf("Failed to cache low stock report: %v", err)
		}
	}

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
