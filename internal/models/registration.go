package models

import (
	"fmt"
	"time"
)

// Status — состояние регистрации на воркшоп.
type Status string

const (
	// StatusRegistered — участник занимает место.
	StatusRegistered Status = "REGISTERED"
	// StatusWaitlisted — участник в листе ожидания.
	StatusWaitlisted Status = "WAITLISTED"
	// StatusCancelled — регистрация отменена.
	StatusCancelled Status = "CANCELLED"
)

// Active сообщает, что регистрация активна (REGISTERED или WAITLISTED).
func (s Status) Active() bool {
	return s == StatusRegistered || s == StatusWaitlisted
}

// Valid проверяет, что статус входит в допустимый набор.
func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusWaitlisted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus разбирает строковое представление статуса из хранилища.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown registration status %q", s)
	}
	return st, nil
}

// Registration — запись пользователя на воркшоп. На пару (пользователь, воркшоп)
// существует не более одной строки; отмена меняет статус, строка не удаляется.
type Registration struct {
	ID           int64     `json:"id"`
	WorkshopID   int64     `json:"workshop_id"`
	UserID       int64     `json:"user_id"`
	Status       Status    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Action описывает, была ли создана новая строка регистрации или переиспользована старая.
type Action string

const (
	// ActionRegistered — создана новая регистрация.
	ActionRegistered Action = "Registered"
	// ActionReRegistered — переиспользована отменённая или ожидающая регистрация.
	ActionReRegistered Action = "Re-registered"
)

// Сообщения для пользователя по итогам записи.
const (
	MessageSignedUp   = "Signed up successfully"
	MessageWaitlisted = "Added to waitlist"
)

// RegisterResult — результат успешной записи на воркшоп.
type RegisterResult struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Action  Action `json:"action"`
}

// UnregisterResult — результат отмены записи.
type UnregisterResult struct {
	PreviousStatus Status    `json:"previous_status"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// CapacityChangeResult — результат изменения вместимости воркшопа.
type CapacityChangeResult struct {
	OldCapacity    int     `json:"old_capacity"`
	NewCapacity    int     `json:"new_capacity"`
	DemotedUserIDs []int64 `json:"demoted_user_ids"`
}

// RegistrationState — текущее состояние записи пользователя на воркшоп.
type RegistrationState struct {
	Registered   bool       `json:"registered"`
	Status       *Status    `json:"status,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	CanCancel    bool       `json:"can_cancel"`
	CanSignup    bool       `json:"can_signup"`
}
