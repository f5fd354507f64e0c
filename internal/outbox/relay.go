package outbox

import (
	"context"
	"time"

	"storefront/internal/config"
	"storefront/internal/metrics"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher delivers a batch of records. Delivery is all or nothing.
type Publisher interface {
	Publish(ctx context.Context, records []Record) error
}

// PendingStore is the part of Store the relay needs.
type PendingStore interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, ids []int64) error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes records as Kafka messages keyed by record key.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds a writer for the configured brokers. The topic is
// taken from each message.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaPublisher wraps w.
func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish sends every record in one WriteMessages call.
func (p *KafkaPublisher) Publish(ctx context.Context, records []Record) error {
	msgs := make([]kafka.Message, len(records))
	for i, r := range records {
		msgs[i] = kafka.Message{
			Topic: r.Topic,
			Key:   []byte(r.Key),
			Value: r.Payload,
			Time:  r.CreatedAt.UTC(),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(r.EventID.String())},
			},
		}
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Relay polls the outbox and publishes pending rows. Rows are marked sent
// only after a successful publish, so delivery is at least once.
type Relay struct {
	store     PendingStore
	publisher Publisher
	batchSize int
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewRelay creates a Relay.
func NewRelay(store PendingStore, publisher Publisher, batchSize int, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		batchSize: batchSize,
		interval:  interval,
		metrics:   m,
		logger:    logger.With().Str("component", "outbox-relay").Logger(),
	}
}

// RunOnce publishes one batch and returns how many rows were sent.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	records, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "fetch pending")
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, records); err != nil {
		r.metrics.OutboxFailures.Inc()
		return 0, errors.Wrap(err, "publish")
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	if err := r.store.MarkSent(ctx, ids); err != nil {
		return 0, errors.Wrap(err, "mark sent")
	}

	r.metrics.OutboxPublished.Add(float64(len(records)))
	r.logger.Debug().Int("count", len(records)).Msg("outbox batch published")
	return len(records), nil
}

// Run drains the outbox until ctx is cancelled. A full batch is followed
// immediately by another poll; errors and empty polls wait one interval.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info().
		Int("batch_size", r.batchSize).
		Dur("interval", r.interval).
		Msg("outbox relay started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return nil
		case <-timer.C:
		}

		n, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("outbox relay batch failed")
		}

		wait := r.interval
		if err == nil && n == r.batchSize {
			wait = 0
		}
		timer.Reset(wait)
	}
}
