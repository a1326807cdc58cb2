package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prestado/ledger-worker/internal/app/ledger/entity"
	"prestado/ledger-worker/internal/app/ledger/service"
	"prestado/pkg/logger"
	"prestado/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const (
	serviceName = "ledger-worker"

	maxRetryBackoff = 30 * time.Second
)

var errMalformedMessage = errors.New("malformed message")

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

// KafkaConsumer читает события займов и записывает их в журнал.
// Offset коммитится только после записи или для сообщений, которые
// невозможно записать.
type KafkaConsumer struct {
	reader    messageReader
	ledgerSvc service.LedgerServiceInterface
	topic     string
	groupID   string
	backoff   time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewKafkaConsumer создает consumer группы groupID для топика событий займов
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	ledgerSvc service.LedgerServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset, // Новая группа читает журнал с начала
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return newKafkaConsumer(reader, topic, groupID, ledgerSvc)
}

func newKafkaConsumer(reader messageReader, topic, groupID string, ledgerSvc service.LedgerServiceInterface) *KafkaConsumer {
	return &KafkaConsumer{
		reader:    reader,
		ledgerSvc: ledgerSvc,
		topic:     topic,
		groupID:   groupID,
		backoff:   time.Second,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start запускает чтение в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().
		Str("topic", c.topic).
		Str("group_id", c.groupID).
		Msg("Starting Kafka consumer")

	go c.consume(ctx)
}

// Stop останавливает чтение и ждёт завершения обработки текущего сообщения
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("Error closing Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := c.reader.FetchMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			metrics.RecordKafkaError(serviceName, c.topic, "fetch")
			logger.Warn().Err(err).Msg("Error fetching message")
			if !c.sleep(ctx, time.Second) {
				return
			}
			continue
		}

		if !c.handle(ctx, message) {
			return
		}
	}
}

// handle обрабатывает сообщение до успеха, повторяя временные ошибки.
// Возвращает false, если consumer остановлен во время повторов.
func (c *KafkaConsumer) handle(ctx context.Context, message kafka.Message) bool {
	log := logger.With().
		Int("partition", message.Partition).
		Int64("offset", message.Offset).
		Logger()

	backoff := c.backoff
	for {
		start := time.Now()
		err := c.processMessage(ctx, message)

		if err == nil {
			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
			break
		}

		if errors.Is(err, errMalformedMessage) || errors.Is(err, service.ErrInvalidEvent) {
			metrics.RecordKafkaError(serviceName, c.topic, "decode")
			log.Error().Err(err).Msg("Skipping message that cannot be recorded")
			break
		}

		metrics.RecordKafkaError(serviceName, c.topic, "process")
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("Failed to record loan event, retrying")

		if !c.sleep(ctx, backoff) {
			return false
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}

	if err := c.reader.CommitMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(serviceName, c.topic, "commit")
		log.Warn().Err(err).Msg("Error committing message")
	}
	return true
}

func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.LoanEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: %w", errMalformedMessage, err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("loan_id", event.LoanID).
		Int64("offset", message.Offset).
		Msg("Received loan event")

	if err := c.ledgerSvc.RecordEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to record loan event: %w", err)
	}

	return nil
}

func (c *KafkaConsumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.stopChan:
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
