// Worker consumes daily-logger domain events from Kafka and writes them to the structured log.
// Set KAFKA_BROKERS and optionally TELEMETRY_KAFKA_TOPIC.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"daily-logger/internal/config"
	"daily-logger/internal/logger"
	"daily-logger/internal/telemetry/consumer"
)

func main() {
	groupID := flag.String("group", "daily-logger-worker", "Kafka consumer group id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		zlog.Fatal("worker: KAFKA_BROKERS is required")
	}

	reader := consumer.NewReader(brokers, cfg.TelemetryKafkaTopic, *groupID)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("worker: consuming",
		zap.String("topic", cfg.TelemetryKafkaTopic),
		zap.String("group", *groupID),
		zap.Strings("brokers", brokers),
	)
	if err := consumer.Run(ctx, reader, consumer.LogSink{Log: zlog.Named("events")}, zlog); err != nil {
		zlog.Error("worker: stopped with error", zap.Error(err))
		return
	}
	zlog.Info("worker: stopped")
}
