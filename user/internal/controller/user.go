package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/jhamir14/restaurant/internal/http"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/middleware"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/user/internal/otel"
	"github.com/jhamir14/restaurant/user/internal/service"
)

type UserController struct {
	service *service.UserService
}

func AttachUserController(mux *mux.Router, service *service.UserService) {
	controller := UserController{service: service}

	router := mux.PathPrefix("/api/admin/users").Subrouter()
	router.Use(middleware.RequireAdmin)
	for _, root := range []string{"", "/"} {
		router.HandleFunc(root, controller.FindCustomers).Methods(http.MethodGet)
	}
}

func (u UserController) FindCustomers(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController FindCustomers")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController FindCustomers").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding customers").Logger()
	logger.Info().Msg("finding customers")
	c = logger.WithContext(c)
	customers, err := u.service.FindCustomers(c)
	if err != nil {
		err = fmt.Errorf("failed finding customers with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int("count", len(customers)).Msg("found customers")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "clientes encontrados",
		"data":       customers,
	})
}
