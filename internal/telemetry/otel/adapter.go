package otel

import (
	"context"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"daily-logger/internal/telemetry"
)

const instrumentationName = "daily-logger.events"

// recordEmitter is the subset of otellog.Logger used here, so tests can capture records.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return telemetry.Nop{}
	}
	return &otelEmitter{logger: provider.Logger(instrumentationName)}
}

func newEventEmitterWithLogger(l recordEmitter) *otelEmitter {
	return &otelEmitter{logger: l}
}

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to a log record: type and actor as attributes, metadata as a map body.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	var rec otellog.Record
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetEventName(event.Type)
	rec.AddAttributes(otellog.String("event_type", event.Type))
	if event.UserID != 0 {
		rec.AddAttributes(otellog.String("user_id", strconv.FormatInt(event.UserID, 10)))
	}
	if event.Source != "" {
		rec.AddAttributes(otellog.String("source", event.Source))
	}
	if len(event.Metadata) > 0 {
		kvs := make([]otellog.KeyValue, 0, len(event.Metadata))
		for k, v := range event.Metadata {
			kvs = append(kvs, otellog.String(k, v))
		}
		rec.SetBody(otellog.MapValue(kvs...))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
