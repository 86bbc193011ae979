package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wildcats-food-express/internal/order/domain/models"
)

type historyRepo struct {
	q querier
}

// Append is idempotent on the order id: re-archiving the same order keeps the first snapshot.
func (r *historyRepo) Append(ctx context.Context, h models.HistoryOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO history_orders (
			id,
			user_id,
			user_name,
			student_number,
			menus_ordered,
			total_price,
			status,
			receipt_path,
			reference_number,
			amount_sent,
			created_at,
			updated_at,
			archived_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		h.ID,
		h.UserID,
		h.UserName,
		h.StudentNumber,
		h.MenusOrdered,
		h.TotalPrice,
		h.Status,
		h.ReceiptPath,
		h.ReferenceNumber,
		h.AmountSent,
		h.CreatedAt,
		h.UpdatedAt,
		h.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive order: %w", err)
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context, userID string) ([]models.HistoryOrder, error) {
	return collectHistory(r.q.Query(ctx, `
		SELECT `+orderColumns+`, archived_at FROM history_orders
		WHERE user_id = $1
		ORDER BY archived_at, id`, userID))
}

func (r *historyRepo) ListAll(ctx context.Context) ([]models.HistoryOrder, error) {
	return collectHistory(r.q.Query(ctx, `
		SELECT `+orderColumns+`, archived_at FROM history_orders
		ORDER BY archived_at, id`))
}

func collectHistory(rows pgx.Rows, err error) ([]models.HistoryOrder, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	out := []models.HistoryOrder{}
	for rows.Next() {
		var h models.HistoryOrder
		dest := append(orderDest(&h.Order), &h.ArchivedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
