package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items WHERE id = $1
`

func (q *Queries) DeleteCartItem(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItemsByUserId = `-- name: DeleteCartItemsByUserId :execrows
DELETE FROM cart_items WHERE user_id = $1
`

func (q *Queries) DeleteCartItemsByUserId(ctx context.Context, userID int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItemsByUserId, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findCartItemById = `-- name: FindCartItemById :one
SELECT id, user_id, product_id, quantity, created_at FROM cart_items WHERE id = $1
`

func (q *Queries) FindCartItemById(ctx context.Context, id int64) (CartItem, error) {
	row := q.db.QueryRow(ctx, findCartItemById, id)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ProductID,
		&i.Quantity,
		&i.CreatedAt,
	)
	return i, err
}

const findCartItemsByUserId = `-- name: FindCartItemsByUserId :many
SELECT ci.id, ci.product_id, ci.quantity,
       p.name AS product_name, p.price AS product_price, p.image_url AS product_image_url
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.id
`

type FindCartItemsByUserIdRow struct {
	ID              int64          `json:"id"`
	ProductID       int64          `json:"product_id"`
	Quantity        int32          `json:"quantity"`
	ProductName     string         `json:"product_name"`
	ProductPrice    pgtype.Numeric `json:"product_price"`
	ProductImageUrl pgtype.Text    `json:"product_image_url"`
}

func (q *Queries) FindCartItemsByUserId(ctx context.Context, userID int64) ([]FindCartItemsByUserIdRow, error) {
	rows, err := q.db.Query(ctx, findCartItemsByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindCartItemsByUserIdRow{}
	for rows.Next() {
		var i FindCartItemsByUserIdRow
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Quantity,
			&i.ProductName,
			&i.ProductPrice,
			&i.ProductImageUrl,
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

const lockCartItemsByUserId = `-- name: LockCartItemsByUserId :many
SELECT ci.id, ci.product_id, ci.quantity,
       p.name AS product_name, p.price AS product_price, p.image_url AS product_image_url
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.id
FOR UPDATE OF ci
`

func (q *Queries) LockCartItemsByUserId(ctx context.Context, userID int64) ([]FindCartItemsByUserIdRow, error) {
	rows, err := q.db.Query(ctx, lockCartItemsByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindCartItemsByUserIdRow{}
	for rows.Next() {
		var i FindCartItemsByUserIdRow
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Quantity,
			&i.ProductName,
			&i.ProductPrice,
			&i.ProductImageUrl,
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

const updateCartItemQuantity = `-- name: UpdateCartItemQuantity :execrows
UPDATE cart_items SET quantity = $2 WHERE id = $1
`

type UpdateCartItemQuantityParams struct {
	ID       int64 `json:"id"`
	Quantity int32 `json:"quantity"`
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateCartItemQuantity, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const upsertCartItem = `-- name: UpsertCartItem :one
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING id, user_id, product_id, quantity, created_at
`

type UpsertCartItemParams struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, upsertCartItem, arg.UserID, arg.ProductID, arg.Quantity)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ProductID,
		&i.Quantity,
		&i.CreatedAt,
	)
	return i, err
}
