package listener

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhamir14/restaurant/internal/constants"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/notification/internal/otel"
	"github.com/jhamir14/restaurant/order/pkg/response"
)

type HandlerFunc func(c context.Context, event response.StatusEvent) error

// StatusListener consumes order status events published by the api.
type StatusListener struct {
	cache  *redis.Client
	handle HandlerFunc
}

func NewStatusListener(cache *redis.Client, handle HandlerFunc) *StatusListener {
	return &StatusListener{cache: cache, handle: handle}
}

// Listen blocks until c is done. A payload that cannot be decoded or handled
// is logged and skipped.
func (l *StatusListener) Listen(c context.Context) error {
	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "StatusListener Listen").
		Str(log.KeyChannel, constants.ChannelOrderStatusUpdated).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "subscribing channel").Logger()
	logger.Info().Msg("subscribing channel")
	sub := l.cache.Subscribe(c, constants.ChannelOrderStatusUpdated)
	defer sub.Close()
	if _, err := sub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing channel with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed channel")

	messages := sub.Channel()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stop listening")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			l.process(logger.WithContext(c), msg.Payload)
		}
	}
}

func (l *StatusListener) process(c context.Context, payload string) {
	c, span := otel.Tracer.Start(c, "StatusListener process")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "StatusListener process").Logger()

	event := response.StatusEvent{}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		err = fmt.Errorf("failed decoding status event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Str(log.KeyEvent, payload).Msg(err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int64(log.KeyOrderID, event.OrderID),
		attribute.String(log.KeyOrderStatus, string(event.Status)),
	)
	logger = logger.With().
		Int64(log.KeyOrderID, event.OrderID).
		Str(log.KeyOrderStatus, string(event.Status)).
		Str(log.KeyRequestID, event.RequestID).
		Logger()

	c = log.AttachRequestIDToContext(logger.WithContext(c), event.RequestID)
	if err := l.handle(c, event); err != nil {
		err = fmt.Errorf("failed handling status event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("handled status event")
}

// LogStatus is the default handler: one info line per status change.
func LogStatus(c context.Context, event response.StatusEvent) error {
	zerolog.Ctx(c).Info().
		Int64(log.KeyUserID, event.ChangedBy).
		Time("changed_at", event.ChangedAt).
		Msgf("Pedido #%d ahora está %s", event.OrderID, event.Status)
	return nil
}
