package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const findMenuByDate = `-- name: FindMenuByDate :many
SELECT p.id, p.name, p.description, p.price, p.image_url, p.created_at
FROM daily_menu_items d
JOIN products p ON p.id = d.product_id
WHERE d.menu_date = $1
ORDER BY d.id
`

func (q *Queries) FindMenuByDate(ctx context.Context, menuDate pgtype.Date) ([]Product, error) {
	rows, err := q.db.Query(ctx, findMenuByDate, menuDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const findProductById = `-- name: FindProductById :one
SELECT id, name, description, price, image_url, created_at FROM products WHERE id = $1
`

func (q *Queries) FindProductById(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, findProductById, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.CreatedAt,
	)
	return i, err
}

const findProducts = `-- name: FindProducts :many
SELECT id, name, description, price, image_url, created_at FROM products ORDER BY created_at DESC, id DESC
`

func (q *Queries) FindProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const findProductsByIds = `-- name: FindProductsByIds :many
SELECT id, name, description, price, image_url, created_at FROM products WHERE id = ANY($1::bigint[])
`

func (q *Queries) FindProductsByIds(ctx context.Context, ids []int64) ([]Product, error) {
	rows, err := q.db.Query(ctx, findProductsByIds, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.ImageUrl,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
