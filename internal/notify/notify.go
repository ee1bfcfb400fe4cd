// Package notify публикует уведомления о записи на воркшопы.
// Доставка уведомлений пользователям выполняется внешними обработчиками очередей.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/workshop-registration/internal/lib/rabbitmq"
)

// WaitlistPromotion — сообщение о том, что на воркшопе появились места для листа ожидания.
type WaitlistPromotion struct {
	WorkshopID int64     `json:"workshop_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Demoted — сообщение об участниках, чья запись отменена из-за уменьшения вместимости.
type Demoted struct {
	WorkshopID int64     `json:"workshop_id"`
	UserIDs    []int64   `json:"user_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует уведомления в RabbitMQ.
type Publisher struct {
	mu  sync.Mutex
	ch  *amqp.Channel
	now func() time.Time
}

// NewPublisher создаёт Publisher поверх канала ch с объявленным обменником уведомлений.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch, now: time.Now}
}

// NotifyWaitlistPromotionCandidates сообщает, что лист ожидания воркшопа можно продвинуть.
func (p *Publisher) NotifyWaitlistPromotionCandidates(_ context.Context, workshopID int64) error {
	const op = "notify.NotifyWaitlistPromotionCandidates"
	msg := WaitlistPromotion{WorkshopID: workshopID, OccurredAt: p.now().UTC()}
	if err := p.publish(rabbitmq.RoutingWaitlistPromotion, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NotifyDemotedParticipants сообщает об участниках, потерявших место.
func (p *Publisher) NotifyDemotedParticipants(_ context.Context, workshopID int64, userIDs []int64) error {
	const op = "notify.NotifyDemotedParticipants"
	if len(userIDs) == 0 {
		return nil
	}
	msg := Demoted{WorkshopID: workshopID, UserIDs: userIDs, OccurredAt: p.now().UTC()}
	if err := p.publish(rabbitmq.RoutingDemoted, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// канал amqp нельзя использовать для публикации из нескольких горутин одновременно
func (p *Publisher) publish(routingKey string, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rabbitmq.PublishNotification(p.ch, routingKey, msg)
}

// Log пишет уведомления в лог. Используется, когда брокер не настроен.
type Log struct {
	log *slog.Logger
}

// NewLog создаёт уведомитель, пишущий в log.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

// NotifyWaitlistPromotionCandidates пишет событие в лог.
func (l *Log) NotifyWaitlistPromotionCandidates(_ context.Context, workshopID int64) error {
	l.log.Info("waitlist promotion candidates", slog.Int64("workshop_id", workshopID))
	return nil
}

// NotifyDemotedParticipants пишет событие в лог.
func (l *Log) NotifyDemotedParticipants(_ context.Context, workshopID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	l.log.Info("participants demoted",
		slog.Int64("workshop_id", workshopID),
		slog.Any("user_ids", userIDs),
	)
	return nil
}
