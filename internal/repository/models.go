package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CartItem struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"user_id"`
	ProductID int64              `json:"product_id"`
	Quantity  int32              `json:"quantity"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type DailyMenuItem struct {
	ID        int64              `json:"id"`
	ProductID int64              `json:"product_id"`
	MenuDate  pgtype.Date        `json:"menu_date"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Order struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"user_id"`
	Total     pgtype.Numeric     `json:"total"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type OrderInfo struct {
	ID              int64              `json:"id"`
	OrderID         int64              `json:"order_id"`
	OrderType       string             `json:"order_type"`
	TableNumber     pgtype.Int4        `json:"table_number"`
	DeliveryAddress pgtype.Text        `json:"delivery_address"`
	DeliveryPhone   pgtype.Text        `json:"delivery_phone"`
	PaymentMethod   pgtype.Text        `json:"payment_method"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type OrderItem struct {
	ID              int64          `json:"id"`
	OrderID         int64          `json:"order_id"`
	ProductID       int64          `json:"product_id"`
	Quantity        int32          `json:"quantity"`
	PriceAtPurchase pgtype.Numeric `json:"price_at_purchase"`
}

type OrderStatus struct {
	ID        int64              `json:"id"`
	OrderID   int64              `json:"order_id"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type OrderStatusEvent struct {
	ID        int64              `json:"id"`
	OrderID   int64              `json:"order_id"`
	Status    string             `json:"status"`
	ChangedBy int64              `json:"changed_by"`
	RequestID uuid.UUID          `json:"request_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Product struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description pgtype.Text        `json:"description"`
	Price       pgtype.Numeric     `json:"price"`
	ImageUrl    pgtype.Text        `json:"image_url"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type User struct {
	ID           int64              `json:"id"`
	Username     string             `json:"username"`
	Email        pgtype.Text        `json:"email"`
	PasswordHash pgtype.Text        `json:"password_hash"`
	IsAdmin      bool               `json:"is_admin"`
	FirstName    pgtype.Text        `json:"first_name"`
	LastName     pgtype.Text        `json:"last_name"`
	Phone        pgtype.Text        `json:"phone"`
	Address      pgtype.Text        `json:"address"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}
