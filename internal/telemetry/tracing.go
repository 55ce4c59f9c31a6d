package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for ghostline spans.
const TracerName = "ghostline"

// Attempt describes one gateway connection attempt for tracing.
type Attempt struct {
	ID        string
	Number    int
	GuildID   string
	ChannelID string
}

// StartAttempt opens a "gateway.session" span for one connection attempt.
// The caller ends it with EndAttempt.
func StartAttempt(ctx context.Context, a Attempt) (context.Context, trace.Span) {
	tracer := otel.Tracer(TracerName)
	return tracer.Start(ctx, "gateway.session",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ghostline.attempt.id", a.ID),
			attribute.Int("ghostline.attempt.number", a.Number),
			attribute.String("ghostline.guild_id", a.GuildID),
			attribute.String("ghostline.channel_id", a.ChannelID),
		),
	)
}

// EndAttempt records the outcome on span and ends it. A non-nil err marks the
// span as failed.
func EndAttempt(span trace.Span, outcome string, ready bool, err error) {
	span.SetAttributes(
		attribute.String("ghostline.outcome", outcome),
		attribute.Bool("ghostline.ready", ready),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
