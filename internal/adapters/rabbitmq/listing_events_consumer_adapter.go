package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/contracts"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/port/usecases_port"
	"recommendation-service/pkg/rabbitmq/rabbitmq_common"
	"recommendation-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ListingCreatedEventDTO - тело события о созданном объявлении.
// Координаты и город дублируются в событии, но источником истины
// остается хранилище: use case перечитывает объявление сам.
type ListingCreatedEventDTO struct {
	ListingID uuid.UUID `json:"listing_id"`
	OwnerID   uuid.UUID `json:"owner_id,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	City      string    `json:"city,omitempty"`
}

// ListingEventsConsumerAdapter - входящий адаптер, который слушает события
// о новых объявлениях и запускает расчет оценок локации.
type ListingEventsConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.RefreshListingScoresPort
	logger   port.LoggerPort
}

// NewListingEventsConsumerAdapter создает новый адаптер.
func NewListingEventsConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.RefreshListingScoresPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ListingEventsConsumerAdapter, error) {
	adapter := &ListingEventsConsumerAdapter{
		useCase: useCase,
		logger:  logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_listing_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listing events: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// messageHandler обрабатывает одно событие listing-created.
func (a *ListingEventsConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, _ := d.Headers["x-trace-id"].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"adapter_name": "ListingEventsConsumerAdapter",
		"message_id":   d.MessageId,
	})

	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	msgLogger.Info("Received listing created event.", nil)

	eventType, _ := d.Headers["event-type"].(string)
	eventVersion, _ := d.Headers["event-version"].(string)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return err
	}

	var dto ListingCreatedEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return fmt.Errorf("failed to unmarshal listing created event: %w", err)
	}

	_, err := a.useCase.Execute(ctx, dto.ListingID)
	if err != nil {
		// Объявление без координат или уже удаленное ретраить бессмысленно.
		if errors.Is(err, domain.ErrListingHasNoCoordinates) || errors.Is(err, domain.ErrListingNotFound) {
			msgLogger.Warn("Listing cannot be scored, acking without retry.", port.Fields{"reason": err.Error()})
			return nil
		}
		msgLogger.Error("RefreshListingScores failed, message will be retried.", err, nil)
		return err
	}

	msgLogger.Info("Listing scored successfully.", nil)
	return nil
}

// Start реализует EventListenerPort, запуская прослушивание очереди.
func (a *ListingEventsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort, корректно останавливая консьюмера.
func (a *ListingEventsConsumerAdapter) Close() error {
	return a.consumer.Close()
}
