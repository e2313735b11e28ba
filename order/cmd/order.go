package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/order/internal/controller"
	"github.com/jhamir14/restaurant/order/internal/service"
)

// AttachOrderService mounts /api/orders and /api/admin/orders on router.
func AttachOrderService(router *mux.Router, pool *pgxpool.Pool, queries *repository.Queries, cache *redis.Client) {
	orderService := service.NewOrderService(pool, queries, cache)
	controller.AttachOrderController(router, orderService)
}
