package models

import (
	"errors"
	"fmt"
	"time"
)

// Классы ошибок доменного слоя. Обработчики HTTP сопоставляют их со статусами ответа.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrAlreadyWaitlisted = errors.New("already waitlisted and workshop is still full")
	ErrScheduleConflict  = errors.New("schedule conflict")
	ErrCapacityInvariant = errors.New("capacity invariant violated")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyExists     = errors.New("already exists")
)

// StateError — отказ в записи из-за уже активной регистрации.
type StateError struct {
	Kind         error
	Status       Status
	RegisteredAt time.Time
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s (current status %s)", e.Kind, e.Status)
}

func (e *StateError) Unwrap() error {
	return e.Kind
}

// ScheduleConflictError — пересечение по времени с другим воркшопом пользователя.
type ScheduleConflictError struct {
	WorkshopID int64
	Title      string
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s with workshop %d", ErrScheduleConflict, e.WorkshopID)
}

func (e *ScheduleConflictError) Unwrap() error {
	return ErrScheduleConflict
}
