package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// PublishNotification публикует событие в обменник уведомлений NotificationsExchange.
// routingKey должен быть одним из ключей NotificationQueues: сообщение с другим ключом
// обменник молча отбросит, поэтому такой вызов возвращает ошибку без публикации.
// Тип сообщения совпадает с ключом, чтобы доставщик мог разобрать тело без очереди.
func PublishNotification(ch *amqp.Channel, routingKey string, message any) error {
	const op = "rabbitmq.PublishNotification"

	if !knownRoutingKey(routingKey) {
		return fmt.Errorf("%s: unknown routing key %q", op, routingKey)
	}
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		NotificationsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         routingKey,
			Timestamp:    time.Now().UTC(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func knownRoutingKey(key string) bool {
	for _, q := range NotificationQueues() {
		if q.RoutingKey == key {
			return true
		}
	}
	return false
}
