package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ventamart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]*models.Order, error)
	ReplaceWithItems(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context, day time.Time) (string, error)
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

// CreateWithItems persists the order header and its line items in one
// transaction so a half-written order is never observable.
func (r *orderRepo) CreateWithItems(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, number, customer_id, customer_name, subtotal, tax_total, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, order.ID, order.Number, order.CustomerID, order.CustomerName, order.Subtotal, order.TaxTotal, order.Total)
	if err != nil {
		return err
	}

	if err := r.insertItems(ctx, tx, order); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReplaceWithItems rewrites the order header and swaps the full line-item
// sequence, again inside one transaction.
func (r *orderRepo) ReplaceWithItems(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE orders
		SET customer_id = $1, customer_name = $2, subtotal = $3, tax_total = $4, total = $5, updated_at = NOW()
		WHERE id = $6
	`, order.CustomerID, order.CustomerName, order.Subtotal, order.TaxTotal, order.Total, order.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return err
	}
	if err := r.insertItems(ctx, tx, order); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) insertItems(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	for _, item := range order.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, line_no, product_code, barcode, description, quantity, unit_price, tax_percentage, subtotal, tax_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, item.ID, item.OrderID, item.LineNo, item.ProductCode, item.Barcode, item.Description, item.Quantity, item.UnitPrice, item.TaxPercentage, item.Subtotal, item.TaxAmount)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, number, customer_id, customer_name, subtotal, tax_total, total, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.Number, &order.CustomerID, &order.CustomerName, &order.Subtotal, &order.TaxTotal, &order.Total, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.itemsFor(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepo) itemsFor(ctx context.Context, orderID uuid.UUID) ([]*models.OrderLineItem, error) {
	query := `
		SELECT id, order_id, line_no, product_code, barcode, description, quantity, unit_price, tax_percentage, subtotal, tax_amount
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderLineItem
	for rows.Next() {
		item := &models.OrderLineItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.LineNo, &item.ProductCode, &item.Barcode, &item.Description, &item.Quantity, &item.UnitPrice, &item.TaxPercentage, &item.Subtotal, &item.TaxAmount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepo) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, number, customer_id, customer_name, subtotal, tax_total, total, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.Number, &order.CustomerID, &order.CustomerName, &order.Subtotal, &order.TaxTotal, &order.Total, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.itemsFor(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// NextNumber generates a sequential per-day order number, ORD-YYYYMMDD-NNNN.
// Numbers come from an upsert on a sequence table so that deleted orders and
// concurrent creates never produce the same number twice.
func (r *orderRepo) NextNumber(ctx context.Context, day time.Time) (string, error) {
	dayKey := day.Format("2006-01-02")

	query := `
		WITH upsert AS (
			INSERT INTO order_sequences (day, last_number)
			VALUES ($1, 1)
			ON CONFLICT (day)
			DO UPDATE SET
				last_number = order_sequences.last_number + 1,
				updated_at = NOW()
			RETURNING last_number
		)
		SELECT last_number FROM upsert;
	`

	var sequenceNum int
	if err := r.db.QueryRow(ctx, query, dayKey).Scan(&sequenceNum); err != nil {
		return "", fmt.Errorf("failed to generate order sequence: %w", err)
	}

	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), sequenceNum), nil
}
