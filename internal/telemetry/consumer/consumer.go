// Package consumer reads domain events back off the Kafka topic and hands them to a sink.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"daily-logger/internal/telemetry"
)

// retryDelay is the pause after a failed read before trying again.
const retryDelay = time.Second

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Sink receives decoded events.
type Sink interface {
	Handle(ctx context.Context, event *telemetry.Event) error
}

// NewReader returns a consumer-group reader for topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
}

// Run reads until ctx is cancelled. Undecodable messages and sink failures are logged and skipped.
// Returns nil on cancellation.
func Run(ctx context.Context, reader MessageReader, sink Sink, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Warn("consumer: kafka read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}
		var event telemetry.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.Type == "" {
			log.Warn("consumer: skipping undecodable message", zap.Int64("offset", msg.Offset), zap.Int("partition", msg.Partition))
			continue
		}
		if err := sink.Handle(ctx, &event); err != nil {
			log.Warn("consumer: sink failed", zap.String("event_type", event.Type), zap.Error(err))
		}
	}
}

// LogSink writes every event as one structured log line.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Handle(ctx context.Context, event *telemetry.Event) error {
	fields := []zap.Field{
		zap.String("event_type", event.Type),
		zap.Int64("user_id", event.UserID),
		zap.String("source", event.Source),
		zap.Time("created_at", event.CreatedAt),
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}
	s.Log.Info("domain_event", fields...)
	return nil
}
