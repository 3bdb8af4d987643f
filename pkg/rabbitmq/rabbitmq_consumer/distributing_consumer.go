package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"recommendation-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler - обработчик одного сообщения. Пакет сам решает,
// как делать ack/nack/retry по возвращенной ошибке.
type MessageHandler func(delivery amqp.Delivery) error

// DistributingConsumer обрабатывает каждое сообщение в отдельной горутине.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

// NewDistributingConsumer создает нового потребителя.
func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}

	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}

	return &DistributingConsumer{
		baseConsumer: bc,
		handler:      handler,
	}, nil
}

// StartConsuming начинает потребление сообщений. Блокируется до отмены
// контекста или закрытия соединения брокером.
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.baseConsumer.channel == nil || c.baseConsumer.connection == nil || c.baseConsumer.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected. Please create a new consumer or ensure connection is stable")
	}

	msgs, err := c.baseConsumer.channel.Consume(
		c.baseConsumer.actualQueueName,
		c.baseConsumer.config.ConsumerTag,
		false, // auto-ack
		c.baseConsumer.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("distributing Consumer %s: failed to register a consumer on queue '%s': %w", c.baseConsumer.config.ConsumerTag, c.baseConsumer.actualQueueName, err)
	}

	c.baseConsumer.Logger.Info("[*] Waiting for messages on queue", "queue_name", c.baseConsumer.actualQueueName)

	go func() {
		for {
			// Приоритетная неблокирующая проверка отмены: не запускаем
			// нового обработчика после команды на остановку.
			select {
			case <-ctx.Done():
				c.baseConsumer.Logger.Info("Context cancelled for consumer. Exiting consumption loop.",
					"consumer_tag", c.baseConsumer.config.ConsumerTag)
				return
			default:
			}

			select {
			case <-ctx.Done():
				c.baseConsumer.Logger.Info("Context cancelled for consumer. Exiting consumption loop.",
					"consumer_tag", c.baseConsumer.config.ConsumerTag)
				return

			case d, ok := <-msgs:
				if !ok {
					c.baseConsumer.Logger.Info("Deliveries channel closed by RabbitMQ for consumer. Exiting loop.",
						"consumer_tag", c.baseConsumer.config.ConsumerTag)
					return
				}

				c.baseConsumer.wg.Add(1)
				go func(delivery amqp.Delivery) {
					defer c.baseConsumer.wg.Done()
					c.processDelivery(delivery)
				}(d)
			}
		}
	}()

	notifyClose := make(chan *amqp.Error)
	c.baseConsumer.connection.NotifyClose(notifyClose)

	select {
	case <-ctx.Done():
		// Штатное завершение, не ошибка.
		c.baseConsumer.Logger.Info("Context cancelled. Shutting down consumer.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		return nil

	case err := <-notifyClose:
		c.baseConsumer.Logger.Error(err, "Connection closed for consumer.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		return err
	}
}

// processDelivery подтверждает сообщение или запускает цикл ретраев.
func (c *DistributingConsumer) processDelivery(delivery amqp.Delivery) {
	c.baseConsumer.Logger.Info("[->] Started processing message",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	processErr := c.handler(delivery)

	if processErr == nil {
		_ = delivery.Ack(false)
		c.baseConsumer.Logger.Info("[+] Message Ack'd",
			"consumer_tag", c.baseConsumer.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag)
		return
	}

	c.baseConsumer.Logger.Error(processErr, "Handler error for message",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	if !c.baseConsumer.config.EnableRetryMechanism {
		c.baseConsumer.Logger.Info("Retry disabled. Nacking message without requeue.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		_ = delivery.Nack(false, false)
		return
	}

	deathCount := c.baseConsumer.getDeathCount(delivery, c.baseConsumer.actualQueueName)

	if deathCount < int64(c.baseConsumer.config.MaxRetries) {
		// Лимит не достигнут: Nack без requeue отправляет сообщение
		// в retry-цикл через DLX основной очереди.
		c.baseConsumer.Logger.Info("Retrying message",
			"consumer_tag", c.baseConsumer.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag,
			"death_count", deathCount)
		_ = delivery.Nack(false, false)
		return
	}

	c.baseConsumer.Logger.Info("Max retries reached for message. Publishing to final DLX.",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	err := c.baseConsumer.finalDlxPublisher.Publish(
		context.Background(),
		c.baseConsumer.config.FinalDLQRoutingKey,
		amqp.Publishing{
			ContentType:  delivery.ContentType,
			Body:         delivery.Body,
			Headers:      delivery.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		c.baseConsumer.Logger.Error(err, "Failed to publish to final DLX. Nacking to trigger retry loop again.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, false)
		return
	}

	// Копия ушла в DLQ, оригинал можно подтвердить.
	c.baseConsumer.Logger.Info("Successfully published to final DLX. Acking original message",
		"consumer_tag", c.baseConsumer.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)
	_ = delivery.Ack(false)
}

// Close закрывает потребителя.
func (c *DistributingConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
