// Package models содержит доменные структуры сервиса записи на воркшопы:
// пользователей и их роли, воркшопы, навыки и регистрации,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"fmt"
	"time"
)

// Role — роль пользователя. Роли упорядочены по уровню доступа.
type Role string

const (
	// RoleParticipant — обычный участник.
	RoleParticipant Role = "PARTICIPANT"
	// RoleWorkshopLeader — ведущий воркшопов.
	RoleWorkshopLeader Role = "WORKSHOP_LEADER"
	// RoleAdmin — администратор.
	RoleAdmin Role = "ADMIN"
)

// Level возвращает уровень роли. Неизвестная роль имеет уровень 0.
func (r Role) Level() int {
	switch r {
	case RoleParticipant:
		return 1
	case RoleWorkshopLeader:
		return 2
	case RoleAdmin:
		return 100
	default:
		return 0
	}
}

// AtLeast сообщает, что роль не ниже min.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// ParseRole разбирает строковое представление роли.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.Level() == 0 {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User представляет пользователя системы. Учётная запись ведётся
// внешним провайдером идентификации, здесь хранится только локальная копия.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Skill — навык, которым может владеть пользователь и который может требовать воркшоп.
type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserSkill — навык пользователя с оценкой.
type UserSkill struct {
	UserID  int64 `json:"user_id"`
	SkillID int64 `json:"skill_id"`
	Grade   int   `json:"grade"`
}

// SkillGrade — навык пользователя по имени с оценкой от 1 до 5.
type SkillGrade struct {
	Name  string `json:"name"`
	Grade int    `json:"grade"`
}

// UserProfile — пользователь вместе с его навыками.
type UserProfile struct {
	User
	Skills []SkillGrade `json:"skills"`
}

// DummyUser используется для приёма данных нового пользователя из JSON-запроса.
type DummyUser struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role,omitempty"` // По умолчанию PARTICIPANT
}

// DummyUserSkill — элемент списка навыков в JSON-запросе.
type DummyUserSkill struct {
	Name  string `json:"name" validate:"required"`
	Grade int    `json:"grade" validate:"gte=1,lte=5"`
}

// DummyUserSkills используется для замены всего набора навыков пользователя.
// Пустой список очищает навыки.
type DummyUserSkills struct {
	Skills []DummyUserSkill `json:"skills" validate:"dive"`
}

// Principal — аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID int64
	Role   Role
}
