package infra

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jhamir14/restaurant/internal/config"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/otel"
)

// NewCacheClient connects to the redis holding cart snapshots, product
// entries and the order status channel. The process cannot serve without it,
// so any failure is fatal.
func NewCacheClient(c context.Context, cfg config.Cache) *redis.Client {
	c, span := otel.Tracer.Start(c, "infra NewCacheClient")
	defer span.End()

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "infra NewCacheClient").
		Str("addr", addr).
		Int("database", cfg.Database).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing redis client").Logger()
	logger.Info().Msg("initializing redis client")
	cache := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	logger.Info().Msg("initialized redis client")

	instrumentations := []struct {
		name string
		fn   func() error
	}{
		{name: "tracing", fn: func() error {
			return redisotel.InstrumentTracing(cache, redisotel.WithAttributes(semconv.DBSystemRedis))
		}},
		{name: "metrics", fn: func() error {
			return redisotel.InstrumentMetrics(cache, redisotel.WithAttributes(semconv.DBSystemRedis))
		}},
	}
	for _, instrumentation := range instrumentations {
		logger := logger.With().Str(log.KeyProcess, "instrumenting redis "+instrumentation.name).Logger()
		logger.Info().Msg("instrumenting redis " + instrumentation.name)
		if err := instrumentation.fn(); err != nil {
			err = fmt.Errorf("failed instrumenting redis %s with error=%w", instrumentation.name, err)
			otel.RecordError(err, span)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("instrumented redis " + instrumentation.name)
	}

	logger = logger.With().Str(log.KeyProcess, "pinging redis").Logger()
	logger.Info().Msg("pinging redis")
	if err := cache.Ping(c).Err(); err != nil {
		err = fmt.Errorf("failed pinging redis with error=%w", err)
		otel.RecordError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("pinged redis")

	return cache
}
