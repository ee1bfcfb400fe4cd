// Package workshop содержит управление воркшопами: создание, просмотр с вакансиями,
// изменение с пересчётом регистраций и назначение ведущих.
package workshop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/cache"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// Repository определяет методы хранилища, нужные сервису.
type Repository interface {
	InTx(ctx context.Context, fn func(tx storage.Tx) error) error
	CreateWorkshop(ctx context.Context, w models.Workshop, skills []string) (int64, error)
	GetWorkshopView(ctx context.Context, id int64) (*models.WorkshopView, error)
	WorkshopSkills(ctx context.Context, workshopID int64) ([]string, error)
	ListWorkshops(ctx context.Context, skills []string) ([]models.WorkshopView, error)
	ListWorkshopsMatchingUserSkills(ctx context.Context, userID int64) ([]models.WorkshopView, error)
	AssignLeader(ctx context.Context, workshopID, userID int64, at time.Time) error
	IsWorkshopLeader(ctx context.Context, workshopID, userID int64) (bool, error)
}

// Cache описывает методы для кеширования списков навыков воркшопов.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CapacityReconciler применяет изменения воркшопа с пересчётом регистраций.
type CapacityReconciler interface {
	Patch(ctx context.Context, tx storage.Tx, id int64, patch models.WorkshopPatch) (*models.WorkshopUpdateResult, error)
	Notify(ctx context.Context, workshopID int64, res *models.CapacityChangeResult)
}

// Service реализует бизнес-логику работы с воркшопами.
type Service struct {
	repo       Repository
	cache      Cache
	reconciler CapacityReconciler
	cacheTTL   time.Duration
	log        *slog.Logger
	now        func() time.Time
}

// New создаёт сервис воркшопов.
func New(repo Repository, c Cache, reconciler CapacityReconciler, cacheTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      c,
		reconciler: reconciler,
		cacheTTL:   cacheTTL,
		log:        log,
		now:        time.Now,
	}
}

// Create создаёт воркшоп. Доступно только администратору.
func (s *Service) Create(ctx context.Context, p models.Principal, req models.DummyWorkshop) (int64, error) {
	const op = "workshop.Create"

	if !p.Role.AtLeast(models.RoleAdmin) {
		return 0, fmt.Errorf("%s: only admin can create workshops: %w", op, models.ErrForbidden)
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid starts_at: %w", op, models.ErrValidation)
	}
	if strings.TrimSpace(req.Title) == "" {
		return 0, fmt.Errorf("%s: title is required: %w", op, models.ErrValidation)
	}
	if req.DurationMin <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive: %w", op, models.ErrValidation)
	}
	if req.Capacity == nil || *req.Capacity < 0 {
		return 0, fmt.Errorf("%s: capacity must not be negative: %w", op, models.ErrValidation)
	}

	w := models.Workshop{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    startsAt,
		DurationMin: req.DurationMin,
		Capacity:    *req.Capacity,
	}
	id, err := s.repo.CreateWorkshop(ctx, w, req.Skills)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new workshop", slog.Int64("id", id), slog.Int64("by", p.UserID))
	return id, nil
}

// Read возвращает воркшоп с текущим числом занятых мест. Вместимость и вакансии
// всегда читаются из хранилища, из кеша берётся только список навыков:
// он задаётся при создании и потом не меняется.
func (s *Service) Read(ctx context.Context, id int64) (*models.WorkshopView, error) {
	const op = "workshop.Read"

	v, err := s.repo.GetWorkshopView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	v.Skills, err = s.skills(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// List возвращает воркшопы с вакансиями, при непустом skills только требующие хотя бы один из навыков.
func (s *Service) List(ctx context.Context, skills []string) ([]models.WorkshopView, error) {
	const op = "workshop.List"
	list, err := s.repo.ListWorkshops(ctx, skills)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Matching возвращает воркшопы, все требуемые навыки которых есть у пользователя.
func (s *Service) Matching(ctx context.Context, userID int64) ([]models.WorkshopView, error) {
	const op = "workshop.Matching"
	list, err := s.repo.ListWorkshopsMatchingUserSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// CanManage сообщает, может ли пользователь менять воркшоп: администратор или назначенный ведущий.
func (s *Service) CanManage(ctx context.Context, p models.Principal, workshopID int64) (bool, error) {
	if p.Role.AtLeast(models.RoleAdmin) {
		return true, nil
	}
	return s.repo.IsWorkshopLeader(ctx, workshopID, p.UserID)
}

// Update меняет название, описание и вместимость воркшопа. Изменение вместимости
// и вызванные им отмены регистраций фиксируются в одной транзакции.
func (s *Service) Update(ctx context.Context, p models.Principal, id int64, patch models.WorkshopPatch) (*models.WorkshopUpdateResult, error) {
	const op = "workshop.Update"

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%s: title must not be empty: %w", op, models.ErrValidation)
	}
	if patch.Capacity != nil && *patch.Capacity < 0 {
		return nil, fmt.Errorf("%s: capacity must not be negative: %w", op, models.ErrValidation)
	}

	ok, err := s.CanManage(ctx, p, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	var res *models.WorkshopUpdateResult
	err = s.repo.InTx(ctx, func(tx storage.Tx) error {
		var err error
		res, err = s.reconciler.Patch(ctx, tx, id, patch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.reconciler.Notify(ctx, id, res.CapacityChange)

	s.log.Info("updated workshop", slog.Int64("id", id), slog.Int64("by", p.UserID))
	return res, nil
}

// AssignLeader назначает пользователя ведущим воркшопа. Доступно только администратору.
func (s *Service) AssignLeader(ctx context.Context, p models.Principal, workshopID, userID int64) error {
	const op = "workshop.AssignLeader"

	if !p.Role.AtLeast(models.RoleAdmin) {
		return fmt.Errorf("%s: only admin can assign leaders: %w", op, models.ErrForbidden)
	}
	if err := s.repo.AssignLeader(ctx, workshopID, userID, s.now()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("assigned workshop leader", slog.Int64("workshop_id", workshopID), slog.Int64("user_id", userID))
	return nil
}

func (s *Service) skills(ctx context.Context, id int64) ([]string, error) {
	key := cache.WorkshopSkillsKey(id)
	var cached []string
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read workshop skills from cache", slog.Int64("id", id), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	skills, err := s.repo.WorkshopSkills(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, skills, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache workshop skills", slog.Int64("id", id), sl.Err(err))
	}
	return skills, nil
}

