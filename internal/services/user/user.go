// Package user управляет локальными копиями пользователей и их навыками.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// Оценка навыка.
const (
	MinGrade = 1
	MaxGrade = 5
)

// Repository определяет методы хранилища, нужные сервису.
type Repository interface {
	CreateUser(ctx context.Context, u models.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserSkills(ctx context.Context, userID int64) ([]models.SkillGrade, error)
	ReplaceUserSkills(ctx context.Context, userID int64, skills []models.SkillGrade) error
}

// Service реализует бизнес-логику работы с пользователями.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт сервис пользователей.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Create заводит пользователя. Доступно только администратору.
// Пустая роль означает PARTICIPANT.
func (s *Service) Create(ctx context.Context, p models.Principal, req models.DummyUser) (int64, error) {
	const op = "user.Create"

	if !p.Role.AtLeast(models.RoleAdmin) {
		return 0, fmt.Errorf("%s: only admin can create users: %w", op, models.ErrForbidden)
	}
	return s.create(ctx, op, req)
}

// Bootstrap заводит пользователя без проверки прав. Нужен для выдачи первого
// администратора из командной строки.
func (s *Service) Bootstrap(ctx context.Context, req models.DummyUser) (int64, error) {
	return s.create(ctx, "user.Bootstrap", req)
}

func (s *Service) create(ctx context.Context, op string, req models.DummyUser) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || !strings.Contains(email, "@") {
		return 0, fmt.Errorf("%s: invalid email: %w", op, models.ErrValidation)
	}
	if name == "" {
		return 0, fmt.Errorf("%s: name is required: %w", op, models.ErrValidation)
	}

	role := models.RoleParticipant
	if req.Role != "" {
		r, err := models.ParseRole(req.Role)
		if err != nil {
			return 0, fmt.Errorf("%s: %w: %w", op, err, models.ErrValidation)
		}
		role = r
	}

	id, err := s.repo.CreateUser(ctx, models.User{
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: s.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created user", slog.Int64("id", id), slog.String("role", string(role)))
	return id, nil
}

// Profile возвращает пользователя вместе с навыками.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	const op = "user.Profile"

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	skills, err := s.repo.UserSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.UserProfile{User: *u, Skills: skills}, nil
}

// SetSkills заменяет набор навыков пользователя userID. Менять свои навыки может
// сам пользователь, чужие только администратор. Пустой список очищает навыки.
func (s *Service) SetSkills(ctx context.Context, p models.Principal, userID int64, skills []models.SkillGrade) error {
	const op = "user.SetSkills"

	if p.UserID != userID && !p.Role.AtLeast(models.RoleAdmin) {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	seen := make(map[string]struct{}, len(skills))
	normalized := make([]models.SkillGrade, 0, len(skills))
	for _, sk := range skills {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			return fmt.Errorf("%s: skill name is required: %w", op, models.ErrValidation)
		}
		if sk.Grade < MinGrade || sk.Grade > MaxGrade {
			return fmt.Errorf("%s: grade of %q must be between %d and %d: %w",
				op, name, MinGrade, MaxGrade, models.ErrValidation)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%s: duplicate skill %q: %w", op, name, models.ErrValidation)
		}
		seen[name] = struct{}{}
		normalized = append(normalized, models.SkillGrade{Name: name, Grade: sk.Grade})
	}

	if err := s.repo.ReplaceUserSkills(ctx, userID, normalized); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("replaced user skills", slog.Int64("user_id", userID), slog.Int("count", len(normalized)), slog.Int64("by", p.UserID))
	return nil
}
