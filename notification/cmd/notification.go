package cmd

import (
	"context"
	"fmt"

	"github.com/jhamir14/restaurant/internal/config"
	"github.com/jhamir14/restaurant/internal/constants"
	"github.com/jhamir14/restaurant/internal/infra"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/notification/internal/listener"
)

func RunNotificationService(c context.Context) {
	cfg := config.Get(c, constants.AppNotificationService)

	logger := log.Get(cfg.Application.LogPath, cfg.Application.Env).
		With().
		Str(log.KeyAppName, constants.AppNotificationService).
		Str(log.KeyTag, "main RunNotificationService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppNotificationService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		if err := inOtel.ShutdownOtel(context.WithoutCancel(c), shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer cache.Close()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "listening status events").Logger()
	logger.Info().Msg("listening status events")
	c = logger.WithContext(c)
	if err = listener.NewStatusListener(cache, listener.LogStatus).Listen(c); err != nil {
		err = fmt.Errorf("failed listening status events with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("received interuption signal shutting down")
}
