// Package server assembles the api's router from every module.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/jhamir14/restaurant/cart/cmd"
	"github.com/jhamir14/restaurant/internal/config"
	"github.com/jhamir14/restaurant/internal/constants"
	inHttp "github.com/jhamir14/restaurant/internal/http"
	"github.com/jhamir14/restaurant/internal/middleware"
	"github.com/jhamir14/restaurant/internal/repository"
	orderCmd "github.com/jhamir14/restaurant/order/cmd"
	productCmd "github.com/jhamir14/restaurant/product/cmd"
	userCmd "github.com/jhamir14/restaurant/user/cmd"
)

// NewRouter wires every module on one router. Health, metrics and the
// catalog are public; everything else needs a bearer token. Controllers
// register absolute /api/... paths, so the authenticated group only adds
// middleware and no prefix.
func NewRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppApiService),
		middleware.Logging,
		middleware.RecoverPanic,
	)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
			"status":     "ok",
			"statusCode": http.StatusOK,
			"message":    "ok",
		})
	}).Methods(http.MethodGet)
	productCmd.AttachProductService(router, queries, cache)

	authenticated := router.NewRoute().Subrouter()
	authenticated.Use(middleware.Auth(cfg.Application.SecretKey))
	cartCmd.AttachCartService(authenticated, pool, queries, cache, cfg.Cache.CartTTL)
	orderCmd.AttachOrderService(authenticated, pool, queries, cache)
	userCmd.AttachUserService(authenticated, queries, cfg.Application.SecretKey)

	return router
}
