package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

const workshopViewQuery = `SELECT ` + workshopColumns + `,
		COALESCE(SUM(CASE WHEN r.status = 'REGISTERED' THEN 1 ELSE 0 END), 0) AS registered
	FROM workshops w
	LEFT JOIN registrations r ON r.workshop_id = w.id`

func scanWorkshopView(row scanner) (*models.WorkshopView, error) {
	var v models.WorkshopView
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.StartsAt, &v.DurationMin, &v.Capacity, &v.Registered)
	if err != nil {
		return nil, err
	}
	v.Vacancy = v.Capacity - v.Registered
	return &v, nil
}

func collectWorkshopViews(rows *sql.Rows) ([]models.WorkshopView, error) {
	defer func() {
		_ = rows.Close()
	}()
	result := make([]models.WorkshopView, 0)
	for rows.Next() {
		v, err := scanWorkshopView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

// CreateWorkshop сохраняет новый воркшоп вместе с требуемыми навыками.
// Неизвестные навыки создаются.
func (s *Storage) CreateWorkshop(ctx context.Context, w models.Workshop, skills []string) (int64, error) {
	const op = "storage.CreateWorkshop"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.InTx(ctx, func(tx Tx) error {
		t := tx.(*txStore)
		query := `INSERT INTO workshops (title, description, starts_at, duration_min, capacity)
				  VALUES (?, ?, ?, ?, ?)
				  RETURNING id`
		err := t.q.QueryRowContext(ctx, t.d.rebind(query),
			w.Title, w.Description, w.StartsAt.UTC(), w.DurationMin, w.Capacity).Scan(&id)
		if err != nil {
			return err
		}
		for _, name := range skills {
			skillID, err := t.ensureSkill(ctx, name)
			if err != nil {
				return err
			}
			_, err = t.q.ExecContext(ctx, t.d.rebind(
				`INSERT INTO workshop_skills (workshop_id, skill_id) VALUES (?, ?) ON CONFLICT DO NOTHING`),
				id, skillID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ensureSkill возвращает id навыка по имени, создавая его при необходимости.
func (t *txStore) ensureSkill(ctx context.Context, name string) (int64, error) {
	_, err := t.q.ExecContext(ctx, t.d.rebind(
		`INSERT INTO skills (name) VALUES (?) ON CONFLICT (name) DO NOTHING`), name)
	if err != nil {
		return 0, err
	}
	var id int64
	err = t.q.QueryRowContext(ctx, t.d.rebind(`SELECT id FROM skills WHERE name = ?`), name).Scan(&id)
	return id, err
}

// GetWorkshop возвращает воркшоп по id.
func (s *Storage) GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	const op = "storage.GetWorkshop"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + workshopColumns + ` FROM workshops w WHERE w.id = ?`
	w, err := scanWorkshop(s.DB.QueryRowContext(ctx, s.dialect.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrWorkshopNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// GetWorkshopView возвращает воркшоп с числом занятых мест и вакансиями.
func (s *Storage) GetWorkshopView(ctx context.Context, id int64) (*models.WorkshopView, error) {
	const op = "storage.GetWorkshopView"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := workshopViewQuery + ` WHERE w.id = ? GROUP BY w.id`
	v, err := scanWorkshopView(s.DB.QueryRowContext(ctx, s.dialect.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrWorkshopNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// ListWorkshops возвращает воркшопы с вакансиями. Если skills не пуст,
// остаются только воркшопы, требующие хотя бы один из перечисленных навыков.
func (s *Storage) ListWorkshops(ctx context.Context, skills []string) ([]models.WorkshopView, error) {
	const op = "storage.ListWorkshops"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := workshopViewQuery
	args := make([]any, 0, len(skills))
	if len(skills) > 0 {
		query += ` WHERE w.id IN (
				SELECT ws.workshop_id FROM workshop_skills ws
				JOIN skills sk ON sk.id = ws.skill_id
				WHERE sk.name IN (` + placeholders(len(skills)) + `))`
		for _, name := range skills {
			args = append(args, name)
		}
	}
	query += ` GROUP BY w.id ORDER BY w.starts_at, w.id`

	rows, err := s.DB.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectWorkshopViews(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListWorkshopsMatchingUserSkills возвращает воркшопы, все требуемые навыки
// которых есть у пользователя. Воркшопы без требований подходят всем.
func (s *Storage) ListWorkshopsMatchingUserSkills(ctx context.Context, userID int64) ([]models.WorkshopView, error) {
	const op = "storage.ListWorkshopsMatchingUserSkills"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := workshopViewQuery + ` WHERE NOT EXISTS (
				SELECT 1 FROM workshop_skills ws
				WHERE ws.workshop_id = w.id
				AND ws.skill_id NOT IN (SELECT us.skill_id FROM user_skills us WHERE us.user_id = ?))
			GROUP BY w.id ORDER BY w.starts_at, w.id`
	rows, err := s.DB.QueryContext(ctx, s.dialect.rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectWorkshopViews(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// WorkshopSkills возвращает имена навыков, требуемых воркшопом.
func (s *Storage) WorkshopSkills(ctx context.Context, workshopID int64) ([]string, error) {
	const op = "storage.WorkshopSkills"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT sk.name FROM skills sk
			  JOIN workshop_skills ws ON ws.skill_id = sk.id
			  WHERE ws.workshop_id = ?
			  ORDER BY sk.name`
	rows, err := s.DB.QueryContext(ctx, s.dialect.rebind(query), workshopID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AssignLeader назначает пользователя ведущим воркшопа. Повторное назначение не является ошибкой.
func (s *Storage) AssignLeader(ctx context.Context, workshopID, userID int64, at time.Time) error {
	const op = "storage.AssignLeader"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockWorkshop(ctx, workshopID); err != nil {
			return err
		}
		t := tx.(*txStore)
		ok, err := t.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
		_, err = t.q.ExecContext(ctx, t.d.rebind(
			`INSERT INTO workshop_leaders (workshop_id, user_id, assigned_at) VALUES (?, ?, ?)
			 ON CONFLICT (workshop_id, user_id) DO NOTHING`),
			workshopID, userID, at.UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsWorkshopLeader сообщает, назначен ли пользователь ведущим воркшопа.
func (s *Storage) IsWorkshopLeader(ctx context.Context, workshopID, userID int64) (bool, error) {
	const op = "storage.IsWorkshopLeader"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `SELECT EXISTS (SELECT 1 FROM workshop_leaders WHERE workshop_id = ? AND user_id = ?)`
	var ok bool
	if err := s.DB.QueryRowContext(ctx, s.dialect.rebind(query), workshopID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}
