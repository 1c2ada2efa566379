// Package telemetry carries domain events to OpenTelemetry logs and, optionally, Kafka.
package telemetry

import (
	"context"
	"errors"
)

// EventEmitter emits domain events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Nop is an EventEmitter that drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, *Event) error { return nil }

// Fanout emits every event to each non-nil emitter and joins their errors.
type Fanout []EventEmitter

func (f Fanout) Emit(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}
	var errs []error
	for _, e := range f {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
