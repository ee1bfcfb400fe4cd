// Package registration реализует запись пользователей на воркшопы:
// выбор между местом и листом ожидания, проверку пересечений расписания,
// отмену записи и пересчёт регистраций при изменении вместимости.
//
// Каждая изменяющая операция выполняется в одной транзакции хранилища,
// которая начинается с блокировки строки воркшопа. Подсчёт занятых мест,
// решение и запись происходят под этой блокировкой, поэтому при любом
// числе одновременных попыток занятых мест не становится больше вместимости.
//
// Лист ожидания продвигается лениво: отмена записи и рост вместимости
// никого не переводят в REGISTERED автоматически. Участник из листа ожидания
// получает место при следующей попытке записи, если оно есть.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/metrics"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// Store — хранилище, через которое сервис читает и меняет регистрации.
type Store interface {
	// InTx выполняет fn в одной транзакции.
	InTx(ctx context.Context, fn func(tx storage.Tx) error) error
	// GetWorkshop возвращает воркшоп вне транзакции.
	GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error)
	// GetRegistration возвращает регистрацию вне транзакции.
	GetRegistration(ctx context.Context, userID, workshopID int64) (*models.Registration, error)
}

// Service — сервис записи на воркшопы.
type Service struct {
	store      Store
	conflicts  conflictChecker
	reconciler *Reconciler
	metrics    *metrics.Registration
	log        *slog.Logger
	now        func() time.Time
}

// New создаёт сервис записи. tolerance — допустимое пересечение воркшопов по времени.
func New(store Store, reconciler *Reconciler, m *metrics.Registration, tolerance time.Duration, log *slog.Logger) *Service {
	return &Service{
		store:      store,
		conflicts:  conflictChecker{tolerance: tolerance},
		reconciler: reconciler,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// Register записывает пользователя на воркшоп. Возвращает REGISTERED, если есть свободное место,
// иначе WAITLISTED. Ошибки: storage.ErrWorkshopNotFound, storage.ErrUserNotFound
// (обе оборачивают models.ErrNotFound; пользователь проверяется после блокировки воркшопа),
// *models.StateError с ErrAlreadyRegistered или ErrAlreadyWaitlisted, *models.ScheduleConflictError.
func (s *Service) Register(ctx context.Context, userID, workshopID int64) (*models.RegisterResult, error) {
	const op = "registration.Register"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.Int64("workshop_id", workshopID),
	)

	var res *models.RegisterResult
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		w, err := tx.LockWorkshop(ctx, workshopID)
		if err != nil {
			return err
		}
		ok, err := tx.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.ErrUserNotFound
		}

		existing, err := tx.GetRegistration(ctx, userID, workshopID)
		if err != nil && !errors.Is(err, storage.ErrRegistrationNotFound) {
			return err
		}
		if existing != nil && existing.Status == models.StatusRegistered {
			return &models.StateError{
				Kind:         models.ErrAlreadyRegistered,
				Status:       existing.Status,
				RegisteredAt: existing.RegisteredAt,
			}
		}

		count, err := registeredCount(ctx, tx, w.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == models.StatusWaitlisted && w.Capacity-count <= 0 {
			return &models.StateError{
				Kind:         models.ErrAlreadyWaitlisted,
				Status:       existing.Status,
				RegisteredAt: existing.RegisteredAt,
			}
		}

		conflict, err := s.conflicts.findConflict(ctx, tx, userID, *w)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &models.ScheduleConflictError{WorkshopID: conflict.ID, Title: conflict.Title}
		}

		status := decideStatus(count, w.Capacity)
		if _, err := tx.UpsertRegistration(ctx, models.Registration{
			WorkshopID:   w.ID,
			UserID:       userID,
			Status:       status,
			RegisteredAt: s.now(),
		}); err != nil {
			return err
		}

		res = &models.RegisterResult{
			Status:  status,
			Message: models.MessageSignedUp,
			Action:  models.ActionRegistered,
		}
		if status == models.StatusWaitlisted {
			res.Message = models.MessageWaitlisted
		}
		if existing != nil {
			res.Action = models.ActionReRegistered
		}
		return nil
	})
	if err != nil {
		s.metrics.Attempt(registerOutcome(err))
		logRejection(log, "registration rejected", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res.Status == models.StatusRegistered {
		s.metrics.Attempt(metrics.OutcomeRegistered)
	} else {
		s.metrics.Attempt(metrics.OutcomeWaitlisted)
	}
	log.Info("registration accepted", slog.String("status", string(res.Status)), slog.String("action", string(res.Action)))
	return res, nil
}

// Unregister отменяет активную регистрацию пользователя. Место не передаётся
// автоматически никому из листа ожидания.
func (s *Service) Unregister(ctx context.Context, userID, workshopID int64) (*models.UnregisterResult, error) {
	const op = "registration.Unregister"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.Int64("workshop_id", workshopID),
	)

	var res *models.UnregisterResult
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.LockWorkshop(ctx, workshopID); err != nil {
			return err
		}

		existing, err := tx.GetRegistration(ctx, userID, workshopID)
		if err != nil {
			return err
		}
		if !existing.Status.Active() {
			return storage.ErrRegistrationNotFound
		}

		at := s.now()
		if err := tx.UpdateRegistrationStatus(ctx, existing.ID, models.StatusCancelled, at); err != nil {
			return err
		}
		res = &models.UnregisterResult{PreviousStatus: existing.Status, CancelledAt: at}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.metrics.Unregister(metrics.OutcomeNotFound)
		} else {
			s.metrics.Unregister(metrics.OutcomeError)
		}
		logRejection(log, "unregister rejected", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Unregister(metrics.OutcomeCancelled)
	log.Info("registration cancelled", slog.String("previous_status", string(res.PreviousStatus)))
	return res, nil
}

// Status возвращает состояние записи пользователя на воркшоп.
func (s *Service) Status(ctx context.Context, userID, workshopID int64) (*models.RegistrationState, error) {
	const op = "registration.Status"

	if _, err := s.store.GetWorkshop(ctx, workshopID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg, err := s.store.GetRegistration(ctx, userID, workshopID)
	if errors.Is(err, storage.ErrRegistrationNotFound) {
		return &models.RegistrationState{CanSignup: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := reg.Status
	registeredAt := reg.RegisteredAt
	return &models.RegistrationState{
		Registered:   status == models.StatusRegistered,
		Status:       &status,
		RegisteredAt: &registeredAt,
		CanCancel:    status.Active(),
		CanSignup:    status == models.StatusCancelled,
	}, nil
}

// OnCapacityChange устанавливает воркшопу вместимость newCapacity и в той же транзакции
// отменяет самые поздние регистрации, если мест стало меньше, чем записанных.
// Отрицательная вместимость отклоняется с models.ErrValidation до начала транзакции.
func (s *Service) OnCapacityChange(ctx context.Context, workshopID int64, newCapacity int) (*models.CapacityChangeResult, error) {
	const op = "registration.OnCapacityChange"

	if newCapacity < 0 {
		return nil, fmt.Errorf("%s: capacity must not be negative: %w", op, models.ErrValidation)
	}

	var res *models.WorkshopUpdateResult
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		res, err = s.reconciler.Patch(ctx, tx, workshopID, models.WorkshopPatch{Capacity: &newCapacity})
		return err
	})
	if err != nil {
		logRejection(s.log.With(slog.String("op", op), slog.Int64("workshop_id", workshopID)),
			"capacity change failed", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.reconciler.Notify(ctx, workshopID, res.CapacityChange)
	return res.CapacityChange, nil
}

func registerOutcome(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, models.ErrAlreadyRegistered):
		return metrics.OutcomeAlreadyRegistered
	case errors.Is(err, models.ErrAlreadyWaitlisted):
		return metrics.OutcomeAlreadyWaitlisted
	case errors.Is(err, models.ErrScheduleConflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// logRejection пишет ожидаемые отказы на уровне Info, а остальные ошибки на уровне Error.
func logRejection(log *slog.Logger, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrAlreadyRegistered),
		errors.Is(err, models.ErrAlreadyWaitlisted),
		errors.Is(err, models.ErrScheduleConflict),
		errors.Is(err, models.ErrValidation):
		log.Info(msg, slog.String("reason", err.Error()))
	default:
		log.Error(msg, sl.Err(err))
	}
}
