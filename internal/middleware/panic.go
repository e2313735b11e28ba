package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inHttp "github.com/jhamir14/restaurant/internal/http"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/otel"
)

// RecoverPanic turns a panicking handler into a 500 with the usual envelope.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			c, span := otel.Tracer.Start(r.Context(), "middleware RecoverPanic")
			defer span.End()

			err, ok := recovered.(error)
			if !ok {
				err = fmt.Errorf("%v", recovered)
			}
			err = fmt.Errorf("recovered handler panic=%w", err)
			otel.RecordError(err, span)
			zerolog.Ctx(c).Error().
				Err(err).
				Str(log.KeyTag, "middleware RecoverPanic").
				Str(log.KeyRequestURI, r.RequestURI).
				Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
		}()

		next.ServeHTTP(w, r)
	})
}
