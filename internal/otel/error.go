package otel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
)

const KeyPublicMessage = "error.public_message"

// RecordError fails span with err and tags it with the message the caller
// was shown. A nil err leaves the span untouched.
func RecordError(err error, span trace.Span) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(KeyPublicMessage, inErrors.PublicMessage(err)))
}
