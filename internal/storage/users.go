package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// UserExists сообщает, есть ли пользователь с таким id.
func (t *txStore) UserExists(ctx context.Context, id int64) (bool, error) {
	const op = "storage.UserExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`
	if err := t.q.QueryRowContext(ctx, t.d.rebind(query), id).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// CreateUser сохраняет локальную копию пользователя и возвращает его id.
// Занятый email возвращает ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.InTx(ctx, func(tx Tx) error {
		t := tx.(*txStore)
		var taken bool
		err := t.q.QueryRowContext(ctx, t.d.rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`), u.Email).
			Scan(&taken)
		if err != nil {
			return err
		}
		if taken {
			return ErrUserExists
		}

		query := `INSERT INTO users (email, name, role, created_at) VALUES (?, ?, ?, ?) RETURNING id`
		return t.q.QueryRowContext(ctx, t.d.rebind(query),
			u.Email, u.Name, string(u.Role), u.CreatedAt.UTC()).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUser возвращает пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var (
		u    models.User
		role string
	)
	query := `SELECT id, email, name, role, created_at FROM users WHERE id = ?`
	err := s.DB.QueryRowContext(ctx, s.dialect.rebind(query), id).
		Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Role, err = models.ParseRole(role); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ReplaceUserSkills заменяет весь набор навыков пользователя. Навыки ищутся по имени
// среди уже известных: неизвестное имя возвращает ErrUnknownSkill и ничего не меняет.
func (s *Storage) ReplaceUserSkills(ctx context.Context, userID int64, skills []models.SkillGrade) error {
	const op = "storage.ReplaceUserSkills"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.InTx(ctx, func(tx Tx) error {
		t := tx.(*txStore)
		ok, err := t.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}

		if _, err := t.q.ExecContext(ctx, t.d.rebind(`DELETE FROM user_skills WHERE user_id = ?`), userID); err != nil {
			return err
		}
		for _, sk := range skills {
			var skillID int64
			err := t.q.QueryRowContext(ctx, t.d.rebind(`SELECT id FROM skills WHERE name = ?`), sk.Name).Scan(&skillID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w %q", ErrUnknownSkill, sk.Name)
			}
			if err != nil {
				return err
			}
			_, err = t.q.ExecContext(ctx, t.d.rebind(
				`INSERT INTO user_skills (user_id, skill_id, grade) VALUES (?, ?, ?)`),
				userID, skillID, sk.Grade)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UserSkills возвращает навыки пользователя с оценками, упорядоченные по имени.
func (s *Storage) UserSkills(ctx context.Context, userID int64) ([]models.SkillGrade, error) {
	const op = "storage.UserSkills"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT sk.name, us.grade FROM user_skills us
			  JOIN skills sk ON sk.id = us.skill_id
			  WHERE us.user_id = ?
			  ORDER BY sk.name`
	rows, err := s.DB.QueryContext(ctx, s.dialect.rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.SkillGrade, 0)
	for rows.Next() {
		var sk models.SkillGrade
		if err := rows.Scan(&sk.Name, &sk.Grade); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
