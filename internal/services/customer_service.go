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

const customerCacheTTL = 10 * time.Minute

type CustomerService interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByIdentification(ctx context.Context, identification string) (*models.Customer, error)
	GetByName(ctx context.Context, name string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	UpdateByIdentification(ctx context.Context, identification string, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Customer, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	cacheSvc     caching.CacheService
}

func NewCustomerService(customerRepo repositories.CustomerRepository, cacheSvc caching.CacheService) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		cacheSvc:     cacheSvc,
	}
}

func (s *customerService) validate(customer *models.Customer) error {
	if err := common.ValidateRequiredString(customer.CompanyName, "company_name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateRequiredString(customer.Identification, "identification"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateRequiredString(customer.Address, "address"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateRequiredString(customer.Email, "email"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func (s *customerService) Create(ctx context.Context, customer *models.Customer) error {
	if err := s.validate(customer); err != nil {
		return err
	}

	existing, err := s.customerRepo.GetByIdentification(ctx, customer.Identification)
	if err != nil {
		return common.WrapDependency("customer lookup", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: identification %s already registered", common.ErrValidation, customer.Identification)
	}

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return common.WrapDependency("create customer", err)
	}
	return nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if cached, err := s.cacheSvc.GetCustomer(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.WrapDependency("get customer", err)
	}
	if customer != nil {
		_ = s.cacheSvc.SetCustomer(ctx, customer, customerCacheTTL)
	}
	return customer, nil
}

func (s *customerService) GetByIdentification(ctx context.Context, identification string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByIdentification(ctx, identification)
	if err != nil {
		return nil, common.WrapDependency("get customer by identification", err)
	}
	return customer, nil
}

func (s *customerService) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, common.WrapDependency("get customer by name", err)
	}
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, customer *models.Customer) error {
	if err := s.validate(customer); err != nil {
		return err
	}

	existing, err := s.customerRepo.GetByID(ctx, customer.ID)
	if err != nil {
		return common.WrapDependency("get customer", err)
	}
	if existing == nil {
		return common.ErrCustomerNotFound
	}

	customer.CreatedAt = existing.CreatedAt
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return common.WrapDependency("update customer", err)
	}
	_ = s.cacheSvc.DeleteCustomer(ctx, customer.ID)
	return nil
}

func (s *customerService) UpdateByIdentification(ctx context.Context, identification string, customer *models.Customer) (*models.Customer, error) {
	existing, err := s.customerRepo.GetByIdentification(ctx, identification)
	if err != nil {
		return nil, common.WrapDependency("get customer by identification", err)
	}
	if existing == nil {
		return nil, common.ErrCustomerNotFound
	}

	customer.ID = existing.ID
	customer.CreatedAt = existing.CreatedAt
	if err := s.validate(customer); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, common.WrapDependency("update customer", err)
	}
	_ = s.cacheSvc.DeleteCustomer(ctx, customer.ID)
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return common.WrapDependency("get customer", err)
	}
	if existing == nil {
		return common.ErrCustomerNotFound
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return common.WrapDependency("delete customer", err)
	}
	_ = s.cacheSvc.DeleteCustomer(ctx, id)
	return nil
}

func (s *customerService) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	customers, err := s.customerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, common.WrapDependency("list customers", err)
	}
	return customers, nil
}
