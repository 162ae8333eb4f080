// Package kafka publishes the final dream table to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dreamlight-etl/internal/config"
	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per dream row.
// It implements pipeline.Loader.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic. Rows are keyed
// by city, so a city's rows land on one partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return newWriter(w, cfg.BatchSize, logger)
}

func newWriter(w messageWriter, batchSize int, logger *slog.Logger) *Writer {
	return &Writer{writer: w, batchSize: max(1, batchSize), logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// LoadDreams serializes and publishes rows, one WriteMessages call per batch.
func (w *Writer) LoadDreams(ctx context.Context, rows []domain.Dream) error {
	processedAt := domain.Now()
	batches := 0
	for batch := range slices.Chunk(rows, w.batchSize) {
		msgs := make([]kafkago.Message, len(batch))
		for i := range batch {
			msg, err := serializeToMessage(batch[i], processedAt)
			if err != nil {
				return err
			}
			msgs[i] = msg
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish batch %d: %w", batches, err)
		}
		batches++
	}
	w.logger.Debug("kafka publish complete", "rows", len(rows), "batches", batches)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a dream row into a Kafka message.
func serializeToMessage(row domain.Dream, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dream: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "data_type", Value: []byte(row.DataType)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
