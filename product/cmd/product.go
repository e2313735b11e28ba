package cmd

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/product/internal/controller"
	"github.com/jhamir14/restaurant/product/internal/service"
)

// AttachProductService mounts the public catalog routes on router.
func AttachProductService(router *mux.Router, queries *repository.Queries, cache *redis.Client) {
	productService := service.NewProductService(queries, cache)
	controller.AttachProductController(router, productService)
}
