package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ventamart/internal/common"
	"ventamart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	GetByDescription(ctx context.Context, description string) (*models.Product, error)
	GetByCodes(ctx context.Context, codes []string) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	AdvancedSearch(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	ListBelowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error)
	ApplyStockDeltas(ctx context.Context, deltas map[string]int) error
}

const productColumns = "id, code, barcode, description, unit_price, stock, iva, tax_percentage, created_at, updated_at"

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, code, barcode, description, unit_price, stock, iva, tax_percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.Code, product.Barcode, product.Description, product.UnitPrice, product.Stock, product.IVA, product.TaxPercentage)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *productRepo) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, code))
}

func (r *productRepo) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, barcode))
}

func (r *productRepo) GetByDescription(ctx context.Context, description string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE description ILIKE $1 LIMIT 1`
	return r.scanOne(r.db.QueryRow(ctx, query, description))
}

func (r *productRepo) scanOne(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.Code, &product.Barcode, &product.Description, &product.UnitPrice, &product.Stock, &product.IVA, &product.TaxPercentage, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

// GetByCodes resolves a batch of product codes in one round trip. Codes with
// no catalog entry are simply absent from the result; callers decide whether
// that is an error.
func (r *productRepo) GetByCodes(ctx context.Context, codes []string) ([]*models.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE code = ANY($1)`
	rows, err := r.db.Query(ctx, query, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET code = $1, barcode = $2, description = $3, unit_price = $4, stock = $5, iva = $6, tax_percentage = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err := r.db.Exec(ctx, query, product.Code, product.Barcode, product.Description, product.UnitPrice, product.Stock, product.IVA, product.TaxPercentage, product.ID)
	return err
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *productRepo) AdvancedSearch(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	// Set defaults
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.SortBy == "" {
		filter.SortBy = "created_at"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	queryBase := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	args := []any{}
	conditionCount := 0

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (code ILIKE $%d OR description ILIKE $%d OR COALESCE(barcode, '') ILIKE $%d)`, conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.Barcode != nil && *filter.Barcode != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND barcode = $%d`, conditionCount)
		args = append(args, *filter.Barcode)
	}

	if filter.MinStock != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND stock >= $%d`, conditionCount)
		args = append(args, *filter.MinStock)
	}
	if filter.MaxStock != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND stock <= $%d`, conditionCount)
		args = append(args, *filter.MaxStock)
	}

	if filter.MinPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND unit_price >= $%d`, conditionCount)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND unit_price <= $%d`, conditionCount)
		args = append(args, *filter.MaxPrice)
	}

	validSortFields := map[string]bool{
		"code": true, "created_at": true, "stock": true, "unit_price": true,
	}
	sortField := "created_at"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *productRepo) ListBelowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock <= $1 ORDER BY stock ASC LIMIT $2`
	rows, err := r.db.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ApplyStockDeltas applies every delta inside one transaction with a
// conditional write per product: the update only matches while the resulting
// stock stays non-negative, so concurrent reconciliations cannot lose
// updates or drive stock below zero. Any failing product rolls back the
// whole batch. Products are visited in sorted code order; two overlapping
// reconciliations then acquire row locks in the same order and cannot
// deadlock each other.
func (r *productRepo) ApplyStockDeltas(ctx context.Context, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}

	codes := make([]string, 0, len(deltas))
	for code := range deltas {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, code := range codes {
		delta := deltas[code]
		if delta == 0 {
			continue
		}
		ct, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock + $2, updated_at = NOW()
			WHERE code = $1 AND stock + $2 >= 0
		`, code, delta)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			// Either the code is unknown or the guard rejected the delta.
			var stock int
			err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE code = $1`, code).Scan(&stock)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: code %s", common.ErrProductNotFound, code)
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: code %s has %d, delta %d", common.ErrInsufficientStock, code, stock, delta)
		}
	}

	return tx.Commit(ctx)
}

func (r *productRepo) scanAll(rows pgx.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Code, &product.Barcode, &product.Description, &product.UnitPrice, &product.Stock, &product.IVA, &product.TaxPercentage, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
