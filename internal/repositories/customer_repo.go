package repositories

import (
	"context"
	"errors"

	"ventamart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByIdentification(ctx context.Context, identification string) (*models.Customer, error)
	GetByName(ctx context.Context, name string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db Database
}

func NewCustomerRepo(db Database) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, company_name, identification, address, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.CompanyName, customer.Identification, customer.Address, customer.Phone, customer.Email)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	query := `
		SELECT id, company_name, identification, address, phone, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *customerRepo) GetByIdentification(ctx context.Context, identification string) (*models.Customer, error) {
	query := `
		SELECT id, company_name, identification, address, phone, email, created_at, updated_at
		FROM customers
		WHERE identification = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, identification))
}

func (r *customerRepo) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	query := `
		SELECT id, company_name, identification, address, phone, email, created_at, updated_at
		FROM customers
		WHERE company_name ILIKE $1
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, name))
}

func (r *customerRepo) scanOne(row pgx.Row) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(&customer.ID, &customer.CompanyName, &customer.Identification, &customer.Address, &customer.Phone, &customer.Email, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET company_name = $1, identification = $2, address = $3, phone = $4, email = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, customer.CompanyName, customer.Identification, customer.Address, customer.Phone, customer.Email, customer.ID)
	return err
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM customers WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *customerRepo) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT id, company_name, identification, address, phone, email, created_at, updated_at
		FROM customers
		ORDER BY company_name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.CompanyName, &customer.Identification, &customer.Address, &customer.Phone, &customer.Email, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
