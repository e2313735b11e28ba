package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const findUserById = `-- name: FindUserById :one
SELECT id, username, email, password_hash, is_admin, first_name, last_name, phone, address, created_at
FROM users WHERE id = $1
`

func (q *Queries) FindUserById(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRow(ctx, findUserById, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.IsAdmin,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.Address,
		&i.CreatedAt,
	)
	return i, err
}

const findUsers = `-- name: FindUsers :many
SELECT u.id, u.username, u.email, u.is_admin, u.first_name, u.last_name, u.phone, u.address,
       COUNT(o.id) AS orders_count
FROM users u
LEFT JOIN orders o ON o.user_id = u.id
WHERE NOT u.is_admin
GROUP BY u.id
ORDER BY u.id
`

type FindUsersRow struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Email       pgtype.Text `json:"email"`
	IsAdmin     bool        `json:"is_admin"`
	FirstName   pgtype.Text `json:"first_name"`
	LastName    pgtype.Text `json:"last_name"`
	Phone       pgtype.Text `json:"phone"`
	Address     pgtype.Text `json:"address"`
	OrdersCount int64       `json:"orders_count"`
}

func (q *Queries) FindUsers(ctx context.Context) ([]FindUsersRow, error) {
	rows, err := q.db.Query(ctx, findUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindUsersRow{}
	for rows.Next() {
		var i FindUsersRow
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.Email,
			&i.IsAdmin,
			&i.FirstName,
			&i.LastName,
			&i.Phone,
			&i.Address,
			&i.OrdersCount,
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
