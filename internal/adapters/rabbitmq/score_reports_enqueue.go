package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ScoresUpdatedDTO - тело события об обновленных оценках объявления.
type ScoresUpdatedDTO struct {
	ListingID    uuid.UUID      `json:"listing_id"`
	OverallScore int            `json:"overall_score"`
	Scores       map[string]int `json:"scores"`
	CalculatedAt time.Time      `json:"calculated_at"`
}

// ScoreReporterAdapter реализует ScoreReporterPort поверх RabbitMQ.
type ScoreReporterAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

// NewScoreReporterAdapter - конструктор.
func NewScoreReporterAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*ScoreReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ScoreReporterAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

// ReportScoresUpdated публикует событие об обновлении оценок.
func (a *ScoreReporterAdapter) ReportScoresUpdated(ctx context.Context, listingID uuid.UUID, scores domain.LocationScores) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "ScoreReporterAdapter",
		"routing_key": a.routingKey,
		"listing_id":  listingID.String(),
	})

	dto := ScoresUpdatedDTO{
		ListingID:    listingID,
		OverallScore: scores.OverallScore,
		Scores: map[string]int{
			"amenity":     scores.AmenityScore,
			"environment": scores.EnvironmentScore,
			"safety":      scores.SafetyScore,
			"pollution":   scores.PollutionScore,
		},
		CalculatedAt: scores.CalculatedAt,
	}

	body, _ := json.Marshal(dto)

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Сообщения переживают перезапуск брокера
		Timestamp:    time.Now(),
		Headers:      make(amqp.Table),
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// Таймаут на публикацию, если контекст его не предоставляет.
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	adapterLogger.Info("Publishing scores updated event", port.Fields{"overall_score": dto.OverallScore})
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish scores updated event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish scores for listing %s: %w", listingID, err)
	}

	adapterLogger.Info("Successfully published scores updated event", nil)
	return nil
}
