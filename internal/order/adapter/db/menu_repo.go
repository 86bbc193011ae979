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

const menuColumns = `id, name, price, quantity, image, created_at, updated_at`

type menuRepo struct {
	q querier
}

func scanMenuItem(row pgx.Row) (models.MenuItem, error) {
	var item models.MenuItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.Quantity,
		&item.Image,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MenuItem{}, core.ErrItemNotFound
	}
	return item, err
}

func (r *menuRepo) List(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *menuRepo) Get(ctx context.Context, id string) (models.MenuItem, error) {
	return scanMenuItem(r.q.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id))
}

func (r *menuRepo) Create(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	created, err := scanMenuItem(r.q.QueryRow(ctx, `
		INSERT INTO menu_items (id, name, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+menuColumns,
		uuid.NewString(),
		item.Name,
		item.Price,
		item.Quantity,
		item.Image,
	))
	if isUniqueViolation(err) {
		return models.MenuItem{}, fmt.Errorf("%q: %w", item.Name, core.ErrDuplicateItem)
	}
	return created, err
}

func (r *menuRepo) Update(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	updated, err := scanMenuItem(r.q.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, price = $3, quantity = $4, image = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+menuColumns,
		item.ID,
		item.Name,
		item.Price,
		item.Quantity,
		item.Image,
	))
	if isUniqueViolation(err) {
		return models.MenuItem{}, fmt.Errorf("%q: %w", item.Name, core.ErrDuplicateItem)
	}
	return updated, err
}

func (r *menuRepo) Delete(ctx context.Context, id string) (models.MenuItem, error) {
	return scanMenuItem(r.q.QueryRow(ctx, `DELETE FROM menu_items WHERE id = $1 RETURNING `+menuColumns, id))
}

func (r *menuRepo) Reserve(ctx context.Context, name string, quantity int) (models.MenuItem, error) {
	item, err := scanMenuItem(r.q.QueryRow(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE name = $1 FOR UPDATE`, name))
	if err != nil {
		return models.MenuItem{}, err
	}
	if item.Quantity < quantity {
		return models.MenuItem{}, core.ErrOutOfStock
	}

	return scanMenuItem(r.q.QueryRow(ctx, `
		UPDATE menu_items
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1
		RETURNING `+menuColumns,
		item.ID, quantity,
	))
}

func (r *menuRepo) Adjust(ctx context.Context, id string, delta int) (models.MenuItem, error) {
	item, err := scanMenuItem(r.q.QueryRow(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return models.MenuItem{}, err
	}
	if item.Quantity+delta < 0 {
		return models.MenuItem{}, core.ErrOutOfStock
	}

	return scanMenuItem(r.q.QueryRow(ctx, `
		UPDATE menu_items
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+menuColumns,
		id, delta,
	))
}
