package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ventamart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Product caching, keyed by catalog code
	GetProduct(ctx context.Context, code string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, code string) error

	// Customer caching
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	SetCustomer(ctx context.Context, customer *models.Customer, ttl time.Duration) error
	DeleteCustomer(ctx context.Context, customerID uuid.UUID) error

	// Low-stock report produced by the background scan
	GetLowStockReport(ctx context.Context) ([]*models.Product, error)
	SetLowStockReport(ctx context.Context, products []*models.Product, ttl time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProduct(ctx context.Context, code string) (*models.Product, error) {
	key := fmt.Sprintf("ventamart:product:%s", code)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("ventamart:product:%s", product.Code)
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, code string) error {
	key := fmt.Sprintf("ventamart:product:%s", code)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	key := fmt.Sprintf("ventamart:customer:%s", customerID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var customer models.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *redisCacheService) SetCustomer(ctx context.Context, customer *models.Customer, ttl time.Duration) error {
	key := fmt.Sprintf("ventamart:customer:%s", customer.ID.String())
	data, err := json.Marshal(customer)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteCustomer(ctx context.Context, customerID uuid.UUID) error {
	key := fmt.Sprintf("ventamart:customer:%s", customerID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetLowStockReport(ctx context.Context) ([]*models.Product, error) {
	data, err := r.client.Get(ctx, "ventamart:report:low-stock").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *redisCacheService) SetLowStockReport(ctx context.Context, products []*models.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "ventamart:report:low-stock", data, ttl).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
