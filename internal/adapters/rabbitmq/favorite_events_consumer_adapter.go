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

// FavoriteAddedEventDTO - тело события о добавлении в избранное.
type FavoriteAddedEventDTO struct {
	UserID    uuid.UUID `json:"user_id"`
	ListingID uuid.UUID `json:"listing_id"`
}

// FavoriteEventsConsumerAdapter слушает события об избранном и асинхронно
// расширяет профиль предпочтений пользователя.
type FavoriteEventsConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.UpdateUserPreferencesPort
	logger   port.LoggerPort
}

// NewFavoriteEventsConsumerAdapter создает новый адаптер.
func NewFavoriteEventsConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.UpdateUserPreferencesPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*FavoriteEventsConsumerAdapter, error) {
	adapter := &FavoriteEventsConsumerAdapter{
		useCase: useCase,
		logger:  logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_favorite_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for favorite events: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// messageHandler обрабатывает одно событие favorite-added.
func (a *FavoriteEventsConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, _ := d.Headers["x-trace-id"].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"adapter_name": "FavoriteEventsConsumerAdapter",
		"message_id":   d.MessageId,
	})

	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	msgLogger.Info("Received favorite added event.", nil)

	eventType, _ := d.Headers["event-type"].(string)
	eventVersion, _ := d.Headers["event-version"].(string)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return err
	}

	var dto FavoriteAddedEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return fmt.Errorf("failed to unmarshal favorite added event: %w", err)
	}

	if err := a.useCase.Execute(ctx, dto.UserID, dto.ListingID); err != nil {
		// Исчезнувшее объявление или пользователь - не повод для ретраев.
		if errors.Is(err, domain.ErrListingNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			msgLogger.Warn("Preferences cannot be updated, acking without retry.", port.Fields{"reason": err.Error()})
			return nil
		}
		msgLogger.Error("UpdateUserPreferences failed, message will be retried.", err, nil)
		return err
	}

	msgLogger.Info("User preferences updated.", nil)
	return nil
}

// Start реализует EventListenerPort, запуская прослушивание очереди.
func (a *FavoriteEventsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort, корректно останавливая консьюмера.
func (a *FavoriteEventsConsumerAdapter) Close() error {
	return a.consumer.Close()
}
