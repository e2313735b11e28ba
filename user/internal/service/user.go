package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhamir14/restaurant/internal"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/user/internal/otel"
	"github.com/jhamir14/restaurant/user/pkg/response"
)

type UserService struct {
	queries *repository.Queries
	secret  string
}

func NewUserService(queries *repository.Queries, secret string) *UserService {
	return &UserService{queries: queries, secret: secret}
}

// FindCustomers lists every non admin user with the number of orders placed
// for them.
func (u *UserService) FindCustomers(c context.Context) ([]response.Customer, error) {
	c, span := otel.Tracer.Start(c, "UserService FindCustomers")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserService FindCustomers").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding customers").Logger()
	logger.Info().Msg("finding customers")
	rows, err := u.queries.FindUsers(c)
	if err != nil {
		err = fmt.Errorf("failed finding customers with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(rows)).Msg("found customers")

	customers := make([]response.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.Response())
	}
	return customers, nil
}

// IssueToken signs a bearer token for an existing user. It backs the token
// command used to drive the terminal against a seeded database.
func (u *UserService) IssueToken(c context.Context, userID int64, ttl time.Duration) (string, error) {
	c, span := otel.Tracer.Start(c, "UserService IssueToken", trace.WithAttributes(attribute.Int64(log.KeyUserID, userID)))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService IssueToken").
		Int64(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user")
	user, err := u.queries.FindUserById(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding user with error=%w", inErrors.New(inErrors.ErrNotFound, "Usuario no existe"))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if err != nil {
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("found user")

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	logger.Info().Msg("signing token")
	token, err := internal.SignToken(
		internal.Identity{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin},
		u.secret,
		ttl,
	)
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("signed token")

	return token, nil
}
