package registration

import (
	"context"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/lib/timerange"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// DefaultOverlapTolerance — допустимое пересечение воркшопов, при котором запись ещё разрешена.
const DefaultOverlapTolerance = time.Minute

// conflictChecker ищет пересечения по времени среди воркшопов, на которые пользователь записан.
type conflictChecker struct {
	tolerance time.Duration
}

// findConflict возвращает первый воркшоп пользователя со статусом REGISTERED, пересекающийся
// с candidate больше чем на tolerance. Воркшопы перебираются по времени начала, затем по id.
// Лист ожидания и отменённые записи не учитываются. nil означает отсутствие конфликта.
func (c conflictChecker) findConflict(ctx context.Context, tx storage.Tx, userID int64, candidate models.Workshop) (*models.Workshop, error) {
	others, err := tx.ListRegisteredForUser(ctx, userID, candidate.ID)
	if err != nil {
		return nil, err
	}

	want := candidate.Range()
	for i := range others {
		if timerange.Conflicts(want, others[i].Range(), c.tolerance) {
			return &others[i], nil
		}
	}
	return nil, nil
}
