package signal

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
)

// KafkaIngestor consumes communication records from a Kafka topic and feeds
// them into a RecordSource.
type KafkaIngestor struct {
	brokers string
	groupID string
	topic   string
	sink    *RecordSource
	reader  *kafka.Reader
}

// NewKafkaIngestor creates an ingestor for the given brokers (comma
// separated), consumer group and topic.
func NewKafkaIngestor(brokers, groupID, topic string, sink *RecordSource) *KafkaIngestor {
	return &KafkaIngestor{
		brokers: brokers,
		groupID: groupID,
		topic:   topic,
		sink:    sink,
	}
}

// Start begins consuming in a background goroutine until ctx is cancelled.
func (k *KafkaIngestor) Start(ctx context.Context) {
	k.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(k.brokers, ","),
		Topic:    k.topic,
		GroupID:  k.groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	slog.Info("Signal ingestor started", "topic", k.topic, "group", k.groupID)

	go func() {
		for {
			msg, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("Signal ingestor: read error", "topic", k.topic, "error", err)
				continue
			}
			var rec CommunicationRecord
			if err := json.Unmarshal(msg.Value, &rec); err != nil {
				slog.Warn("Signal ingestor: bad record", "topic", k.topic, "error", err)
				continue
			}
			if rec.SourceID == "" || rec.TargetID == "" {
				continue
			}
			k.sink.Observe(rec)
		}
	}()
}

// Close releases the underlying reader.
func (k *KafkaIngestor) Close() error {
	if k.reader == nil {
		return nil
	}
	return k.reader.Close()
}
