package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/jhamir14/restaurant/internal/constants"
)

var Tracer = otel.Tracer(constants.AppTerminal)
