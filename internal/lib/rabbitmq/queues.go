package rabbitmq

// Ключи маршрутизации уведомлений.
const (
	RoutingWaitlistPromotion = "waitlist.promotion"
	RoutingDemoted           = "registration.demoted"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди, которые читают доставщики уведомлений.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.waitlist_promotion", RoutingKey: RoutingWaitlistPromotion},
		{QueueName: "notification.demoted", RoutingKey: RoutingDemoted},
	}
}
