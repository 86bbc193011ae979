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

const clientOrderColumns = `id, school_id, items, status, priority_number, total_price, created_at, updated_at`

type clientOrderRepo struct {
	q querier
}

func scanClientOrder(row pgx.Row) (models.ClientOrder, error) {
	var o models.ClientOrder
	err := row.Scan(
		&o.ID,
		&o.SchoolID,
		&o.Items,
		&o.Status,
		&o.PriorityNumber,
		&o.TotalPrice,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ClientOrder{}, core.ErrOrderNotFound
	}
	return o, err
}

func (r *clientOrderRepo) Create(ctx context.Context, order models.ClientOrder) (models.ClientOrder, error) {
	o, err := scanClientOrder(r.q.QueryRow(ctx, `
		INSERT INTO client_orders (id, school_id, items, status, priority_number, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientOrderColumns,
		uuid.NewString(),
		order.SchoolID,
		order.Items,
		order.Status,
		order.PriorityNumber,
		order.TotalPrice,
	))
	if err != nil {
		return models.ClientOrder{}, fmt.Errorf("failed to insert client order: %w", err)
	}
	return o, nil
}

func (r *clientOrderRepo) Get(ctx context.Context, id string) (models.ClientOrder, error) {
	return scanClientOrder(r.q.QueryRow(ctx,
		`SELECT `+clientOrderColumns+` FROM client_orders WHERE id = $1 FOR UPDATE`, id))
}

func (r *clientOrderRepo) List(ctx context.Context) ([]models.ClientOrder, error) {
	rows, err := r.q.Query(ctx, `SELECT `+clientOrderColumns+` FROM client_orders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list client orders: %w", err)
	}
	defer rows.Close()

	out := []models.ClientOrder{}
	for rows.Next() {
		o, err := scanClientOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *clientOrderRepo) UpdateStatus(ctx context.Context, id string, status models.Status) (models.ClientOrder, error) {
	return scanClientOrder(r.q.QueryRow(ctx, `
		UPDATE client_orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+clientOrderColumns,
		id, status,
	))
}

func (r *clientOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM client_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrOrderNotFound
	}
	return nil
}
