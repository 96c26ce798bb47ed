package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/config"
	"github.com/mentiva/studyloop/pkg/models"
)

const ConsumerGroup = "history-aggregators"

// SessionMessage wraps a completed game session on the wire. RetryCount is
// stamped by the consumer retry loop, not by producers.
type SessionMessage struct {
	Event      models.SessionCompletedEvent `json:"event"`
	Timestamp  time.Time                    `json:"timestamp"`
	RetryCount int                          `json:"retry_count"`
}

type kafkaProducer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

type kafkaConsumer struct {
	reader *kafka.Reader
	logger *logrus.Logger
}

// MessageBus consumes session-completed events to keep play history current
// and publishes review-submitted events for downstream analytics. Failed
// session events land on a dead letter topic after the retry budget runs out.
type MessageBus struct {
	reviewProducer *kafkaProducer
	consumer       *kafkaConsumer
	dlqWriter      *kafka.Writer
	sessionTopic   string
	logger         *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	reviewProducer := &kafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topics.ReviewEvents,
			Balancer:     &kafka.Hash{}, // Key by flashcard id so per-card order holds
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}

	consumer := &kafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topics.SessionEvents,
			GroupID:        ConsumerGroup,
			MinBytes:       10e3, // 10KB
			MaxBytes:       10e6, // 10MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		logger: logger,
	}

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.SessionEvents + "-dlq",
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &MessageBus{
		reviewProducer: reviewProducer,
		consumer:       consumer,
		dlqWriter:      dlqWriter,
		sessionTopic:   cfg.Kafka.Topics.SessionEvents,
		logger:         logger,
	}, nil
}

func (mb *MessageBus) PublishReviewSubmitted(event models.ReviewSubmittedEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.FlashcardID)),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "flashcard_id", Value: []byte(fmt.Sprintf("%d", event.FlashcardID))},
			{Key: "timestamp", Value: []byte(event.ReviewedAt.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mb.reviewProducer.writer.WriteMessages(ctx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithField("flashcard_id", event.FlashcardID).Error("Failed to publish review event to Kafka")
		return fmt.Errorf("failed to write review event to Kafka: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"flashcard_id": event.FlashcardID,
		"quality":      event.Quality,
	}).Debug("Review event published to Kafka")

	return nil
}

// ConsumeSessionEvents blocks until ctx is cancelled, handing each completed
// session to handler with retry and DLQ semantics.
func (mb *MessageBus) ConsumeSessionEvents(ctx context.Context, handler func(models.SessionCompletedEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := mb.consumer.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mb.logger.WithError(err).Error("Failed to read message from Kafka")
				continue
			}

			var sessionMessage SessionMessage
			if err := json.Unmarshal(message.Value, &sessionMessage); err != nil {
				mb.logger.WithError(err).Error("Failed to unmarshal session message")
				continue
			}

			if err := mb.processWithRetry(ctx, &sessionMessage, handler); err != nil {
				mb.logger.WithError(err).WithField("session_id", sessionMessage.Event.SessionID).Error("Failed to process session after retries")

				if dlqErr := mb.sendToDLQ(ctx, sessionMessage, err); dlqErr != nil {
					mb.logger.WithError(dlqErr).Error("Failed to send session to DLQ")
				}
			}
		}
	}
}

func (mb *MessageBus) processWithRetry(ctx context.Context, message *SessionMessage, handler func(models.SessionCompletedEvent) error) error {
	maxRetries := 3
	baseDelay := time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			mb.logger.WithFields(logrus.Fields{
				"session_id": message.Event.SessionID,
				"attempt":    attempt,
				"delay":      delay,
			}).Info("Retrying session processing")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		message.RetryCount = attempt
		if err := handler(message.Event); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"session_id": message.Event.SessionID,
				"attempt":    attempt,
			}).Warn("Session processing failed")

			if attempt == maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("unexpected retry loop exit")
}

func (mb *MessageBus) sendToDLQ(ctx context.Context, message SessionMessage, originalError error) error {
	dlqMessage := map[string]interface{}{
		"original_message": message,
		"error":            originalError.Error(),
		"dlq_timestamp":    time.Now(),
	}

	dlqBytes, err := json.Marshal(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(message.Event.SessionID.String()),
		Value: dlqBytes,
		Headers: []kafka.Header{
			{Key: "session_id", Value: []byte(message.Event.SessionID.String())},
			{Key: "original_topic", Value: []byte(mb.sessionTopic)},
			{Key: "error", Value: []byte(originalError.Error())},
		},
	}

	if err := mb.dlqWriter.WriteMessages(ctx, kafkaMessage); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"session_id": message.Event.SessionID,
		"error":      originalError.Error(),
	}).Warn("Session sent to DLQ")

	return nil
}

func (mb *MessageBus) Close() error {
	var errs []error

	if err := mb.reviewProducer.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close review producer: %w", err))
	}

	if err := mb.consumer.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
	}

	if err := mb.dlqWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close DLQ writer: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing message bus: %v", errs)
	}

	return nil
}

// GetMetrics exposes consumer stats for the health endpoint.
func (mb *MessageBus) GetMetrics() map[string]interface{} {
	stats := mb.consumer.reader.Stats()
	return map[string]interface{}{
		"consumer_lag":    stats.Lag,
		"consumer_offset": stats.Offset,
		"messages_read":   stats.Messages,
		"bytes_read":      stats.Bytes,
		"rebalances":      stats.Rebalances,
		"timeouts":        stats.Timeouts,
		"errors":          stats.Errors,
	}
}
