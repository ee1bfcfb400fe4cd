package models

import (
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/lib/timerange"
)

// Workshop представляет воркшоп. Capacity >= 0, DurationMin > 0.
type Workshop struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	DurationMin int       `json:"duration_min"`
	Capacity    int       `json:"capacity"`
}

// Range возвращает интервал проведения воркшопа.
func (w Workshop) Range() timerange.Range {
	return timerange.New(w.StartsAt, time.Duration(w.DurationMin)*time.Minute)
}

// EndsAt возвращает время окончания воркшопа.
func (w Workshop) EndsAt() time.Time {
	return w.Range().End()
}

// WorkshopView — воркшоп вместе с текущей заполненностью.
// Vacancy может быть отрицательной до завершения пересчёта после уменьшения вместимости.
type WorkshopView struct {
	Workshop
	Registered int      `json:"registered"`
	Vacancy    int      `json:"vacant"`
	Skills     []string `json:"skills,omitempty"`
}

// WorkshopUpdateResult — результат изменения воркшопа.
// CapacityChange заполняется, только если менялась вместимость.
type WorkshopUpdateResult struct {
	Workshop       Workshop              `json:"workshop"`
	CapacityChange *CapacityChangeResult `json:"capacity_change,omitempty"`
}

// WorkshopLeader связывает воркшоп с пользователем, который вправе им управлять.
type WorkshopLeader struct {
	WorkshopID int64     `json:"workshop_id"`
	UserID     int64     `json:"user_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// WorkshopPatch — частичное изменение воркшопа. nil-поля не меняются.
type WorkshopPatch struct {
	Title       *string
	Description *string
	Capacity    *int
}

// DummyWorkshop используется для приёма данных нового воркшопа из JSON-запроса.
type DummyWorkshop struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	StartsAt    string   `json:"starts_at" validate:"required"`         // RFC3339 с часовым поясом
	DurationMin int      `json:"duration_min" validate:"required,gt=0"` // Длительность в минутах
	Capacity    *int     `json:"capacity" validate:"required,gte=0"`    // Вместимость
	Skills      []string `json:"skills,omitempty" validate:"omitempty,dive,required"`
}

// DummyWorkshopPatch используется для приёма изменений воркшопа из JSON-запроса.
type DummyWorkshopPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,gte=0"`
}

// DummyLeader используется для назначения ведущего воркшопа.
type DummyLeader struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
