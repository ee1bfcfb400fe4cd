package registration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/metrics"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// Notifier принимает события, о которых нужно сообщить пользователям.
type Notifier interface {
	// NotifyWaitlistPromotionCandidates сообщает, что на воркшопе прибавилось мест.
	NotifyWaitlistPromotionCandidates(ctx context.Context, workshopID int64) error
	// NotifyDemotedParticipants сообщает участникам, что их запись отменена.
	NotifyDemotedParticipants(ctx context.Context, workshopID int64, userIDs []int64) error
}

// Reconciler приводит регистрации в соответствие с новой вместимостью воркшопа.
type Reconciler struct {
	notifier Notifier
	metrics  *metrics.Registration
	log      *slog.Logger
	now      func() time.Time
}

// NewReconciler создаёт Reconciler.
func NewReconciler(notifier Notifier, m *metrics.Registration, log *slog.Logger) *Reconciler {
	return &Reconciler{
		notifier: notifier,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Apply меняет вместимость w на newCapacity внутри tx. Строка воркшопа должна быть
// заблокирована в этой же транзакции. Если занятых мест больше новой вместимости,
// отменяются самые поздние регистрации. Запись самого воркшопа остаётся вызывающему.
func (r *Reconciler) Apply(ctx context.Context, tx storage.Tx, w *models.Workshop, newCapacity int) (*models.CapacityChangeResult, error) {
	const op = "registration.Reconciler.Apply"

	if newCapacity < 0 {
		return nil, fmt.Errorf("%s: capacity must not be negative: %w", op, models.ErrValidation)
	}

	res := &models.CapacityChangeResult{
		OldCapacity:    w.Capacity,
		NewCapacity:    newCapacity,
		DemotedUserIDs: []int64{},
	}

	count, err := registeredCount(ctx, tx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if diff := count - newCapacity; diff > 0 {
		victims, err := tx.ListMostRecentRegistered(ctx, w.ID, diff)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(victims) < diff {
			return nil, fmt.Errorf("%s: need to demote %d, found %d: %w",
				op, diff, len(victims), models.ErrCapacityInvariant)
		}

		at := r.now()
		for _, reg := range victims {
			if err := tx.UpdateRegistrationStatus(ctx, reg.ID, models.StatusCancelled, at); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			res.DemotedUserIDs = append(res.DemotedUserIDs, reg.UserID)
		}
	}

	w.Capacity = newCapacity
	return res, nil
}

// Patch применяет к воркшопу id изменения из patch внутри tx: блокирует строку,
// меняет название и описание, при заданной вместимости вызывает Apply и сохраняет воркшоп.
// Уведомления не отправляются, это делает Notify после фиксации транзакции.
func (r *Reconciler) Patch(ctx context.Context, tx storage.Tx, id int64, patch models.WorkshopPatch) (*models.WorkshopUpdateResult, error) {
	w, err := tx.LockWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		w.Title = *patch.Title
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}

	res := &models.WorkshopUpdateResult{}
	if patch.Capacity != nil {
		res.CapacityChange, err = r.Apply(ctx, tx, w, *patch.Capacity)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.UpdateWorkshop(ctx, *w); err != nil {
		return nil, err
	}
	res.Workshop = *w
	return res, nil
}

// Notify рассылает уведомления по итогам зафиксированного изменения вместимости.
// Ошибки доставки только логируются: изменение уже сохранено.
func (r *Reconciler) Notify(ctx context.Context, workshopID int64, res *models.CapacityChangeResult) {
	if res == nil {
		return
	}
	log := r.log.With(slog.Int64("workshop_id", workshopID))

	if len(res.DemotedUserIDs) > 0 {
		r.metrics.AddDemoted(len(res.DemotedUserIDs))
		log.Info("registrations demoted after capacity shrink",
			slog.Int("old_capacity", res.OldCapacity),
			slog.Int("new_capacity", res.NewCapacity),
			slog.Any("user_ids", res.DemotedUserIDs),
		)
		if err := r.notifier.NotifyDemotedParticipants(ctx, workshopID, res.DemotedUserIDs); err != nil {
			log.Error("failed to notify demoted participants", sl.Err(err))
		}
	}

	if res.NewCapacity > res.OldCapacity {
		if err := r.notifier.NotifyWaitlistPromotionCandidates(ctx, workshopID); err != nil {
			log.Error("failed to notify waitlist promotion candidates", sl.Err(err))
		}
	}
}
