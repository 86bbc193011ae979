package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/models"
)

const orderColumns = `id, user_id, user_name, student_number, menus_ordered, total_price, status,
	receipt_path, reference_number, amount_sent, created_at, updated_at`

type orderRepo struct {
	q querier
}

// orderDest lists scan targets in orderColumns order.
func orderDest(o *models.Order) []any {
	return []any{
		&o.ID,
		&o.UserID,
		&o.UserName,
		&o.StudentNumber,
		&o.MenusOrdered,
		&o.TotalPrice,
		&o.Status,
		&o.ReceiptPath,
		&o.ReferenceNumber,
		&o.AmountSent,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(orderDest(&o)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, core.ErrOrderNotFound
	}
	return o, err
}

func collectOrders(rows pgx.Rows, err error) ([]models.Order, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) Create(ctx context.Context, order models.Order) (models.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `
		INSERT INTO orders (
			id,
			user_id,
			user_name,
			student_number,
			menus_ordered,
			total_price,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		uuid.NewString(),
		order.UserID,
		order.UserName,
		order.StudentNumber,
		order.MenusOrdered,
		order.TotalPrice,
		order.Status,
	))
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	return o, nil
}

func (r *orderRepo) Get(ctx context.Context, id string) (models.Order, error) {
	return scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

func (r *orderRepo) List(ctx context.Context, userID string) ([]models.Order, error) {
	return collectOrders(r.q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at, id`, userID))
}

func (r *orderRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	return collectOrders(r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, id`))
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Order, error) {
	return scanOrder(r.q.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, status,
	))
}

func (r *orderRepo) UpdatePayment(ctx context.Context, id, receiptPath, referenceNumber string, amountSent float64) (models.Order, error) {
	return scanOrder(r.q.QueryRow(ctx, `
		UPDATE orders
		SET receipt_path = $2, reference_number = $3, amount_sent = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, receiptPath, referenceNumber, amountSent,
	))
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrOrderNotFound
	}
	return nil
}
