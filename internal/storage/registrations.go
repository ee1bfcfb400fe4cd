package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

const workshopColumns = `w.id, w.title, w.description, w.starts_at, w.duration_min, w.capacity`

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkshop(row scanner) (*models.Workshop, error) {
	var w models.Workshop
	if err := row.Scan(&w.ID, &w.Title, &w.Description, &w.StartsAt, &w.DurationMin, &w.Capacity); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanRegistration(row scanner) (*models.Registration, error) {
	var (
		r      models.Registration
		status string
	)
	if err := row.Scan(&r.ID, &r.WorkshopID, &r.UserID, &status, &r.RegisteredAt); err != nil {
		return nil, err
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	r.Status = st
	return &r, nil
}

// LockWorkshop читает воркшоп и блокирует его строку до конца транзакции.
func (t *txStore) LockWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	const op = "storage.LockWorkshop"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + workshopColumns + ` FROM workshops w WHERE w.id = ?` + t.d.lockSuffix
	w, err := scanWorkshop(t.q.QueryRowContext(ctx, t.d.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrWorkshopNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// GetRegistration возвращает регистрацию пользователя на воркшоп в любом статусе.
func (t *txStore) GetRegistration(ctx context.Context, userID, workshopID int64) (*models.Registration, error) {
	const op = "storage.GetRegistration"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, workshop_id, user_id, status, registered_at
			  FROM registrations
			  WHERE user_id = ? AND workshop_id = ?`
	r, err := scanRegistration(t.q.QueryRowContext(ctx, t.d.rebind(query), userID, workshopID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrRegistrationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// CountRegistered считает регистрации со статусом REGISTERED.
func (t *txStore) CountRegistered(ctx context.Context, workshopID int64) (int, error) {
	const op = "storage.CountRegistered"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*) FROM registrations WHERE workshop_id = ? AND status = ?`
	var count int
	if err := t.q.QueryRowContext(ctx, t.d.rebind(query), workshopID, string(models.StatusRegistered)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListRegisteredForUser возвращает воркшопы со статусом REGISTERED у пользователя, кроме excludeWorkshopID.
func (t *txStore) ListRegisteredForUser(ctx context.Context, userID, excludeWorkshopID int64) ([]models.Workshop, error) {
	const op = "storage.ListRegisteredForUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + workshopColumns + `
			  FROM workshops w
			  JOIN registrations r ON r.workshop_id = w.id
			  WHERE r.user_id = ? AND r.status = ? AND w.id <> ?
			  ORDER BY w.starts_at, w.id`
	rows, err := t.q.QueryContext(ctx, t.d.rebind(query), userID, string(models.StatusRegistered), excludeWorkshopID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertRegistration создаёт регистрацию или, если строка для пары (пользователь, воркшоп)
// уже есть, обновляет её статус и время. Возвращает id строки.
func (t *txStore) UpsertRegistration(ctx context.Context, reg models.Registration) (int64, error) {
	const op = "storage.UpsertRegistration"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO registrations (workshop_id, user_id, status, registered_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT (user_id, workshop_id)
			  DO UPDATE SET status = excluded.status, registered_at = excluded.registered_at
			  RETURNING id`
	var id int64
	err := t.q.QueryRowContext(ctx, t.d.rebind(query),
		reg.WorkshopID, reg.UserID, string(reg.Status), reg.RegisteredAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateRegistrationStatus меняет статус регистрации и время её последнего изменения.
func (t *txStore) UpdateRegistrationStatus(ctx context.Context, id int64, status models.Status, at time.Time) error {
	const op = "storage.UpdateRegistrationStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE registrations SET status = ?, registered_at = ? WHERE id = ?`
	res, err := t.q.ExecContext(ctx, t.d.rebind(query), string(status), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrRegistrationNotFound)
	}
	return nil
}

// ListMostRecentRegistered возвращает до limit регистраций REGISTERED, начиная с самых поздних.
// При равном времени позже считается регистрация с большим id.
func (t *txStore) ListMostRecentRegistered(ctx context.Context, workshopID int64, limit int) ([]models.Registration, error) {
	const op = "storage.ListMostRecentRegistered"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, workshop_id, user_id, status, registered_at
			  FROM registrations
			  WHERE workshop_id = ? AND status = ?
			  ORDER BY registered_at DESC, id DESC
			  LIMIT ?`
	rows, err := t.q.QueryContext(ctx, t.d.rebind(query), workshopID, string(models.StatusRegistered), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateWorkshop сохраняет название, описание и вместимость воркшопа.
func (t *txStore) UpdateWorkshop(ctx context.Context, w models.Workshop) error {
	const op = "storage.UpdateWorkshop"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE workshops SET title = ?, description = ?, capacity = ? WHERE id = ?`
	res, err := t.q.ExecContext(ctx, t.d.rebind(query), w.Title, w.Description, w.Capacity, w.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrWorkshopNotFound)
	}
	return nil
}

// GetRegistration возвращает регистрацию пользователя на воркшоп вне транзакции.
func (s *Storage) GetRegistration(ctx context.Context, userID, workshopID int64) (*models.Registration, error) {
	return s.reader().GetRegistration(ctx, userID, workshopID)
}

// CountRegistered считает занятые места на воркшопе вне транзакции.
func (s *Storage) CountRegistered(ctx context.Context, workshopID int64) (int, error) {
	return s.reader().CountRegistered(ctx, workshopID)
}
