package cmd

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhamir14/restaurant/cart/internal/controller"
	"github.com/jhamir14/restaurant/cart/internal/service"
	"github.com/jhamir14/restaurant/internal/repository"
)

// AttachCartService mounts /api/cart on router.
func AttachCartService(
	router *mux.Router,
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	cartTTL time.Duration,
) {
	cartService := service.NewCartService(pool, queries, cache, cartTTL)
	controller.AttachCartController(router, cartService)
}
