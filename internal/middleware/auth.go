package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhamir14/restaurant/internal"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	inHttp "github.com/jhamir14/restaurant/internal/http"
	"github.com/jhamir14/restaurant/internal/log"
)

// Auth verifies the bearer token and attaches the caller identity to the
// request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get(inHttp.KeyHeaderAuthorization)
			if len(authorization) < len(inHttp.BearerPrefix) ||
				!strings.EqualFold(authorization[:len(inHttp.BearerPrefix)], inHttp.BearerPrefix) {
				logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteErrorResponse(c, w, inErrors.ErrEmptyAuth)
				return
			}

			identity, err := internal.VerifyToken(c, authorization[len(inHttp.BearerPrefix):], secret)
			if err != nil {
				err = fmt.Errorf("failed verifying token with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}

			logger = logger.With().
				Int64(log.KeyUserID, identity.UserID).
				Bool(log.KeyIsAdmin, identity.IsAdmin).
				Logger()
			c = logger.WithContext(internal.AttachIdentity(c, identity))
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// RequireAdmin answers 403 unless Auth attached an admin identity.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		identity, err := internal.IdentityFromContext(c)
		if err == nil && !identity.IsAdmin {
			err = inErrors.ErrForbidden
		}
		if err != nil {
			zerolog.Ctx(c).Error().Err(err).Str(log.KeyTag, "middleware RequireAdmin").Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
