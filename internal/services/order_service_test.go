package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ventamart/internal/common"
	"ventamart/internal/models"
	"ventamart/internal/pricing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ReplaceWithItems(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) NextNumber(ctx context.Context, day time.Time) (string, error) {
	args := m.Called(ctx, day)
	return args.String(0), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) GetByIdentification(ctx context.Context, identification string) (*models.Customer, error) {
	args := m.Called(ctx, identification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerService) UpdateByIdentification(ctx context.Context, identification string, customer *models.Customer) (*models.Customer, error) {
	args := m.Called(ctx, identification, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerService) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetByDescription(ctx context.Context, description string) (*models.Product, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetByCodes(ctx context.Context, codes []string) (map[string]*models.Product, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductService) AdjustStockFromQuantities(ctx context.Context, code string, oldQuantity, newQuantity int) (*models.Product, error) {
	args := m.Called(ctx, code, oldQuantity, newQuantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type MockStockReconciler struct {
	mock.Mock
}

func (m *MockStockReconciler) Reserve(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockStockReconciler) Adjust(ctx context.Context, oldOrder, newOrder *models.Order) error {
	args := m.Called(ctx, oldOrder, newOrder)
	return args.Error(0)
}

func (m *MockStockReconciler) Release(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic, eventType string, key []byte, payload any) {
	m.Called(topic, eventType, key, payload)
}

func (m *MockPublisher) Close() {
	m.Called()
}

type OrderServiceTestSuite struct {
	suite.Suite
	orderRepo   *MockOrderRepository
	customerSvc *MockCustomerService
	productSvc  *MockProductService
	reconciler  *MockStockReconciler
	publisher   *MockPublisher
	service     OrderServiceInterface
	ctx         context.Context
	customerID  uuid.UUID
	customer    *models.Customer
	catalog     map[string]*models.Product
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.orderRepo = new(MockOrderRepository)
	suite.customerSvc = new(MockCustomerService)
	suite.productSvc = new(MockProductService)
	suite.reconciler = new(MockStockReconciler)
	suite.publisher = new(MockPublisher)
	suite.service = NewOrderService(
		suite.orderRepo,
		suite.customerSvc,
		suite.productSvc,
		pricing.NewEngine([]float64{0, 3, 15}),
		suite.reconciler,
		suite.publisher,
	)
	suite.ctx = context.Background()
	suite.customerID = uuid.New()
	suite.customer = &models.Customer{
		ID:             suite.customerID,
		CompanyName:    "Acme Trading",
		Identification: "1790012345001",
	}
	suite.catalog = map[string]*models.Product{
		"P001": {Code: "P001", Description: "Widget", UnitPrice: 5.00, Stock: 10, TaxPercentage: 15},
	}
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) requestedItems() []pricing.RequestedItem {
	return []pricing.RequestedItem{{ProductCode: "P001", Quantity: 2}}
}

func (suite *OrderServiceTestSuite) TestCreateOrder_Success() {
	suite.customerSvc.On("GetByID", suite.ctx, suite.customerID).Return(suite.customer, nil)
	suite.productSvc.On("GetByCodes", suite.ctx, []string{"P001"}).Return(suite.catalog, nil)
	suite.orderRepo.On("NextNumber", suite.ctx, mock.AnythingOfType("time.Time")).Return("ORD-20260831-0001", nil)
	suite.reconciler.On("Reserve", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.orderRepo.On("CreateWithItems", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.publisher.On("Publish", "order.created", "OrderCreated", mock.Anything, mock.Anything).Return()

	order, err := suite.service.CreateOrder(suite.ctx, suite.customerID, suite.requestedItems())

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ORD-20260831-0001", order.Number)
	assert.Equal(suite.T(), "Acme Trading", order.CustomerName)
	assert.Equal(suite.T(), 10.00, order.Subtotal)
	assert.Equal(suite.T(), 1.50, order.TaxTotal)
	assert.Equal(suite.T(), 11.50, order.Total)
	suite.orderRepo.AssertExpectations(suite.T())
	suite.reconciler.AssertExpectations(suite.T())
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestCreateOrder_UnknownCustomer() {
	suite.customerSvc.On("GetByID", suite.ctx, suite.customerID).Return(nil, nil)

	_, err := suite.service.CreateOrder(suite.ctx, suite.customerID, suite.requestedItems())

	assert.True(suite.T(), errors.Is(err, common.ErrCustomerNotFound))
	suite.reconciler.AssertNotCalled(suite.T(), "Reserve")
}

func (suite *OrderServiceTestSuite) TestCreateOrder_MissingCustomerID() {
	_, err := suite.service.CreateOrder(suite.ctx, uuid.Nil, suite.requestedItems())
	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
}

// A blank product code is a validation error, not a catalog miss: the check
// runs before the batch lookup so the caller gets a 400-class error instead
// of a 404.
func (suite *OrderServiceTestSuite) TestCreateOrder_BlankProductCodeFailsValidation() {
	items := []pricing.RequestedItem{
		{ProductCode: "P001", Quantity: 1},
		{ProductCode: "   ", Quantity: 2},
	}

	_, err := suite.service.CreateOrder(suite.ctx, suite.customerID, items)

	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
	assert.False(suite.T(), errors.Is(err, common.ErrProductNotFound))
	suite.customerSvc.AssertNotCalled(suite.T(), "GetByID")
	suite.productSvc.AssertNotCalled(suite.T(), "GetByCodes")
}

func (suite *OrderServiceTestSuite) TestCreateOrder_InsufficientStockAborts() {
	suite.customerSvc.On("GetByID", suite.ctx, suite.customerID).Return(suite.customer, nil)
	suite.productSvc.On("GetByCodes", suite.ctx, []string{"P001"}).Return(suite.catalog, nil)
	suite.orderRepo.On("NextNumber", suite.ctx, mock.AnythingOfType("time.Time")).Return("ORD-20260831-0001", nil)
	suite.reconciler.On("Reserve", suite.ctx, mock.AnythingOfType("*models.Order")).Return(common.ErrInsufficientStock)

	_, err := suite.service.CreateOrder(suite.ctx, suite.customerID, suite.requestedItems())

	assert.True(suite.T(), errors.Is(err, common.ErrInsufficientStock))
	suite.orderRepo.AssertNotCalled(suite.T(), "CreateWithItems")
	suite.publisher.AssertNotCalled(suite.T(), "Publish")
}

func (suite *OrderServiceTestSuite) TestCreateOrder_PersistFailureReleasesStock() {
	suite.customerSvc.On("GetByID", suite.ctx, suite.customerID).Return(suite.customer, nil)
	suite.productSvc.On("GetByCodes", suite.ctx, []string{"P001"}).Return(suite.catalog, nil)
	suite.orderRepo.On("NextNumber", suite.ctx, mock.AnythingOfType("time.Time")).Return("ORD-20260831-0001", nil)
	suite.reconciler.On("Reserve", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.orderRepo.On("CreateWithItems", suite.ctx, mock.AnythingOfType("*models.Order")).Return(errors.New("write failed"))
	suite.reconciler.On("Release", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	_, err := suite.service.CreateOrder(suite.ctx, suite.customerID, suite.requestedItems())

	assert.True(suite.T(), common.IsDependencyError(err))
	suite.reconciler.AssertCalled(suite.T(), "Release", suite.ctx, mock.AnythingOfType("*models.Order"))
	suite.publisher.AssertNotCalled(suite.T(), "Publish")
}

func (suite *OrderServiceTestSuite) existingOrder() *models.Order {
	return &models.Order{
		ID:           uuid.New(),
		Number:       "ORD-20260830-0007",
		CustomerID:   suite.customerID,
		CustomerName: "Acme Trading",
		Items: []*models.OrderLineItem{
			{ProductCode: "P001", Quantity: 1, UnitPrice: 5.00, TaxPercentage: 15, Subtotal: 5.00, TaxAmount: 0.75},
		},
		Subtotal: 5.00,
		TaxTotal: 0.75,
		Total:    5.75,
	}
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_Success() {
	existing := suite.existingOrder()

	suite.orderRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.customerSvc.On("GetByID", suite.ctx, suite.customerID).Return(suite.customer, nil)
	suite.productSvc.On("GetByCodes", suite.ctx, []string{"P001"}).Return(suite.catalog, nil)
	suite.reconciler.On("Adjust", suite.ctx, existing, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.orderRepo.On("ReplaceWithItems", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.publisher.On("Publish", "order.updated", "OrderUpdated", mock.Anything, mock.Anything).Return()

	order, err := suite.service.UpdateOrder(suite.ctx, existing.ID, uuid.Nil, suite.requestedItems())

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), existing.ID, order.ID)
	assert.Equal(suite.T(), existing.Number, order.Number)
	assert.Equal(suite.T(), 11.50, order.Total)
	suite.orderRepo.AssertExpectations(suite.T())
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_NotFound() {
	orderID := uuid.New()
	suite.orderRepo.On("GetByID", suite.ctx, orderID).Return(nil, nil)

	_, err := suite.service.UpdateOrder(suite.ctx, orderID, uuid.Nil, suite.requestedItems())

	assert.True(suite.T(), errors.Is(err, common.ErrOrderNotFound))
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_PersistFailureRevertsAdjust() {
	existing := suite.existingOrder()

	suite.orderRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.customerSvc.On("GetByID", suite.ctx, suite.customerID).Return(suite.customer, nil)
	suite.productSvc.On("GetByCodes", suite.ctx, []string{"P001"}).Return(suite.catalog, nil)
	suite.reconciler.On("Adjust", suite.ctx, existing, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.orderRepo.On("ReplaceWithItems", suite.ctx, mock.AnythingOfType("*models.Order")).Return(errors.New("write failed"))
	suite.reconciler.On("Adjust", suite.ctx, mock.AnythingOfType("*models.Order"), existing).Return(nil)

	_, err := suite.service.UpdateOrder(suite.ctx, existing.ID, uuid.Nil, suite.requestedItems())

	assert.True(suite.T(), common.IsDependencyError(err))
	suite.reconciler.AssertNumberOfCalls(suite.T(), "Adjust", 2)
	suite.publisher.AssertNotCalled(suite.T(), "Publish")
}

func (suite *OrderServiceTestSuite) TestDeleteOrder_ReleasesStock() {
	existing := suite.existingOrder()

	suite.orderRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.reconciler.On("Release", suite.ctx, existing).Return(nil)
	suite.orderRepo.On("Delete", suite.ctx, existing.ID).Return(nil)
	suite.publisher.On("Publish", "order.deleted", "OrderDeleted", mock.Anything, mock.Anything).Return()

	err := suite.service.DeleteOrder(suite.ctx, existing.ID)

	assert.NoError(suite.T(), err)
	suite.reconciler.AssertExpectations(suite.T())
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestDeleteOrder_NotFound() {
	orderID := uuid.New()
	suite.orderRepo.On("GetByID", suite.ctx, orderID).Return(nil, nil)

	err := suite.service.DeleteOrder(suite.ctx, orderID)

	assert.True(suite.T(), errors.Is(err, common.ErrOrderNotFound))
	suite.reconciler.AssertNotCalled(suite.T(), "Release")
}

func (suite *OrderServiceTestSuite) TestDeleteOrder_DeleteFailureReReserves() {
	existing := suite.existingOrder()

	suite.orderRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.reconciler.On("Release", suite.ctx, existing).Return(nil)
	suite.orderRepo.On("Delete", suite.ctx, existing.ID).Return(errors.New("write failed"))
	suite.reconciler.On("Reserve", suite.ctx, existing).Return(nil)

	err := suite.service.DeleteOrder(suite.ctx, existing.ID)

	assert.True(suite.T(), common.IsDependencyError(err))
	suite.reconciler.AssertCalled(suite.T(), "Reserve", suite.ctx, existing)
	suite.publisher.AssertNotCalled(suite.T(), "Publish")
}
