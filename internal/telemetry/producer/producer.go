// Package producer publishes domain events to Kafka.
package producer

import (
	"context"

	"daily-logger/internal/telemetry"
)

// Producer emits events to a broker. Callers use it best-effort: log and ignore errors.
type Producer interface {
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
