package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jhamir14/restaurant/internal/config"
	"github.com/jhamir14/restaurant/internal/infra"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/user/internal/controller"
	"github.com/jhamir14/restaurant/user/internal/service"
)

// AttachUserService mounts /api/admin/users on router.
func AttachUserService(router *mux.Router, queries *repository.Queries, secret string) {
	userService := service.NewUserService(queries, secret)
	controller.AttachUserController(router, userService)
}

// RunIssueToken prints a bearer token for userID signed with the api secret.
func RunIssueToken(c context.Context, cfg *config.Config, out io.Writer, userID int64, ttl time.Duration) error {
	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "main RunIssueToken").
		Int64(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer db.Close()
	logger.Info().Msg("initialized database")

	userService := service.NewUserService(repository.New(db), cfg.Application.SecretKey)
	token, err := userService.IssueToken(c, userID, ttl)
	if err != nil {
		return fmt.Errorf("failed issuing token with error=%w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
