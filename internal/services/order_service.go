package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ventamart/internal/common"
	"ventamart/internal/events"
	"ventamart/internal/models"
	"ventamart/internal/pricing"
	"ventamart/internal/repositories"

	"github.com/google/uuid"
)

// OrderServiceInterface defines the interface for order operations
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, customerID uuid.UUID, items []pricing.RequestedItem) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, customerID uuid.UUID, items []pricing.RequestedItem) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	customerSvc CustomerService
	productSvc  ProductService
	engine      *pricing.Engine
	reconciler  StockReconciler
	publisher   events.Publisher
}

// NewOrderService creates a new order service instance
func NewOrderService(
	orderRepo repositories.OrderRepository,
	customerSvc CustomerService,
	productSvc ProductService,
	engine *pricing.Engine,
	reconciler StockReconciler,
	publisher events.Publisher,
) OrderServiceInterface {
	return &orderService{
		orderRepo:   orderRepo,
		customerSvc: customerSvc,
		productSvc:  productSvc,
		engine:      engine,
		reconciler:  reconciler,
		publisher:   publisher,
	}
}

// price validates the request, resolves the customer and catalog entries and
// returns the fully priced order aggregate, without touching stock.
func (s *orderService) price(ctx context.Context, customerID uuid.UUID, items []pricing.RequestedItem) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id is required", common.ErrValidation)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order requires at least one line item", common.ErrValidation)
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductCode) == "" {
			return nil, fmt.Errorf("%w: line %d is missing a product code", common.ErrValidation, i+1)
		}
	}

	customer, err := s.customerSvc.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: id %s", common.ErrCustomerNotFound, customerID)
	}

	catalog, err := s.productSvc.GetByCodes(ctx, pricing.Codes(items))
	if err != nil {
		return nil, err
	}

	quote, err := s.engine.Price(items, catalog)
	if err != nil {
		return nil, err
	}

	return &models.Order{
		CustomerID:   customer.ID,
		CustomerName: customer.CompanyName,
		Items:        quote.Items,
		Subtotal:     quote.Subtotal,
		TaxTotal:     quote.TaxTotal,
		Total:        quote.Total,
	}, nil
}

// CreateOrder prices the requested items, reserves stock and persists the
// order. Stock reservation happens first; a persistence failure releases the
// reservation so no quantity stays held by a phantom order.
func (s *orderService) CreateOrder(ctx context.Context, customerID uuid.UUID, items []pricing.RequestedItem) (*models.Order, error) {
	order, err := s.price(ctx, customerID, items)
	if err != nil {
		return nil, err
	}

	order.ID = uuid.New()
	number, err := s.orderRepo.NextNumber(ctx, time.Now())
	if err != nil {
		return nil, common.WrapDependency("generate order number", err)
	}
	order.Number = number

	if err := s.reconciler.Reserve(ctx, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		if relErr := s.reconciler.Release(ctx, order); relErr != nil {
			log.Printf("compensating stock release for order %s failed: %v", order.ID, relErr)
		}
		return nil, common.WrapDependency("save order", err)
	}

	s.publish(events.TopicOrderCreated, events.EventOrderCreated, order)
	return order, nil
}

// GetOrderByID retrieves an order with its line items
func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, common.WrapDependency("get order", err)
	}
	return order, nil
}

// ListOrders lists orders with pagination
func (s *orderService) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, common.WrapDependency("list orders", err)
	}
	return orders, nil
}

// UpdateOrder replaces the order's line items: fully reprices the new set,
// reconciles stock against the previously committed quantities in one atomic
// step, and persists the replacement. A failed reconciliation leaves both
// stock and the stored order unchanged.
func (s *orderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, customerID uuid.UUID, items []pricing.RequestedItem) (*models.Order, error) {
	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, common.WrapDependency("get order", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: id %s", common.ErrOrderNotFound, orderID)
	}

	if customerID == uuid.Nil {
		customerID = existing.CustomerID
	}

	order, err := s.price(ctx, customerID, items)
	if err != nil {
		return nil, err
	}
	order.ID = existing.ID
	order.Number = existing.Number
	order.CreatedAt = existing.CreatedAt

	if err := s.reconciler.Adjust(ctx, existing, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.ReplaceWithItems(ctx, order); err != nil {
		if adjErr := s.reconciler.Adjust(ctx, order, existing); adjErr != nil {
			log.Printf("compensating stock adjust for order %s failed: %v", order.ID, adjErr)
		}
		return nil, common.WrapDependency("update order", err)
	}

	s.publish(events.TopicOrderUpdated, events.EventOrderUpdated, order)
	return order, nil
}

// DeleteOrder removes the order and returns every quantity it held.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return common.WrapDependency("get order", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: id %s", common.ErrOrderNotFound, orderID)
	}

	if err := s.reconciler.Release(ctx, existing); err != nil {
		return err
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		if resErr := s.reconciler.Reserve(ctx, existing); resErr != nil {
			log.Printf("compensating stock reserve for order %s failed: %v", existing.ID, resErr)
		}
		return common.WrapDependency("delete order", err)
	}

	s.publish(events.TopicOrderDeleted, events.EventOrderDeleted, existing)
	return nil
}

func (s *orderService) publish(topic, eventType string, order *models.Order) {
	payload := events.OrderEventPayload{
		OrderID:    order.ID.String(),
		Number:     order.Number,
		CustomerID: order.CustomerID.String(),
		Subtotal:   order.Subtotal,
		TaxTotal:   order.TaxTotal,
		Total:      order.Total,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, events.ItemQty{
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
		})
	}
	s.publisher.Publish(topic, eventType, events.PartitionKey(order.ID.String()), payload)
}
