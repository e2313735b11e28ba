package otel

import (
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhamir14/restaurant/internal/constants"
)

var Tracer = otel.Tracer(
	constants.ModuleOrder,
	trace.WithInstrumentationAttributes(semconv.ServiceNameKey.String(constants.AppApiService)),
)
