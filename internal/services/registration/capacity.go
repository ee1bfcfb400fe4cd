package registration

import (
	"context"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// registeredCount возвращает число регистраций REGISTERED на воркшоп.
func registeredCount(ctx context.Context, tx storage.Tx, workshopID int64) (int, error) {
	return tx.CountRegistered(ctx, workshopID)
}

// vacancy возвращает число свободных мест. После уменьшения вместимости
// значение может быть отрицательным, пока не отработает пересчёт.
func vacancy(ctx context.Context, tx storage.Tx, w models.Workshop) (int, error) {
	n, err := registeredCount(ctx, tx, w.ID)
	if err != nil {
		return 0, err
	}
	return w.Capacity - n, nil
}

// decideStatus решает, получит ли новая или восстановленная регистрация место.
// registered должен быть подсчитан в той же транзакции, что и последующая запись.
func decideStatus(registered, capacity int) models.Status {
	if registered < capacity {
		return models.StatusRegistered
	}
	return models.StatusWaitlisted
}
