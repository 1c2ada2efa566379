package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"daily-logger/internal/telemetry"
)

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec   otellog.Record
	calls int
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
	r.calls++
}

func attrs(rec otellog.Record) map[string]string {
	out := map[string]string{}
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		out[kv.Key] = kv.Value.AsString()
		return true
	})
	return out
}

func TestNewEventEmitter_NilProvider_ReturnsNop(t *testing.T) {
	em := NewEventEmitter(nil)
	if _, ok := em.(telemetry.Nop); !ok {
		t.Fatalf("NewEventEmitter(nil) = %T, want telemetry.Nop", em)
	}
	if err := em.Emit(context.Background(), telemetry.NewEvent(telemetry.EventSleepCreated, 1, nil)); err != nil {
		t.Errorf("nop Emit: %v", err)
	}
}

func TestNewEventEmitter_Provider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), telemetry.NewEvent(telemetry.EventSleepCreated, 1, nil)); err != nil {
		t.Errorf("Emit: %v", err)
	}
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	em := newEventEmitterWithLogger(cap)
	created := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
	event := &telemetry.Event{
		Type:      telemetry.EventSleepCreated,
		UserID:    42,
		Source:    "api",
		Metadata:  map[string]string{"sleep_id": "9"},
		CreatedAt: created,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if cap.calls != 1 {
		t.Fatalf("Emit calls = %d, want 1", cap.calls)
	}
	got := attrs(cap.rec)
	if got["event_type"] != telemetry.EventSleepCreated || got["user_id"] != "42" || got["source"] != "api" {
		t.Errorf("attributes = %v", got)
	}
	if !cap.rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", cap.rec.Timestamp(), created)
	}
	body := cap.rec.Body()
	if body.Kind() != otellog.KindMap {
		t.Fatalf("body kind = %v, want map", body.Kind())
	}
	kvs := body.AsMap()
	if len(kvs) != 1 || kvs[0].Key != "sleep_id" || kvs[0].Value.AsString() != "9" {
		t.Errorf("body = %v", kvs)
	}
}

func TestEmit_DefaultsTimestampAndSkipsEmptyFields(t *testing.T) {
	cap := &recordCapture{}
	em := newEventEmitterWithLogger(cap)
	before := time.Now().UTC()
	if err := em.Emit(context.Background(), &telemetry.Event{Type: "ping"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if ts := cap.rec.Timestamp(); ts.Before(before) {
		t.Errorf("timestamp %v should default to now", ts)
	}
	got := attrs(cap.rec)
	if _, ok := got["user_id"]; ok {
		t.Error("user_id should be omitted for anonymous events")
	}
	if !cap.rec.Body().Empty() {
		t.Error("body should be empty when metadata is nil")
	}
}
