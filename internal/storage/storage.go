// Package storage реализует хранилище данных сервиса записи на воркшопы
// поверх database/sql. Поддерживаются PostgreSQL (драйвер pgx) и встроенный SQLite.
//
// Все изменения регистраций выполняются внутри InTx: транзакция сначала
// блокирует строку воркшопа (LockWorkshop), и только затем считает занятые места
// и пишет регистрацию. Так проверка вместимости и запись не разделены во времени.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Регистрация драйвера sqlite для использования с database/sql.
	_ "modernc.org/sqlite"

	"github.com/magabrotheeeer/workshop-registration/internal/config"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// Ошибки хранилища. Ошибки отсутствия записей оборачивают models.ErrNotFound.
var (
	ErrWorkshopNotFound     = fmt.Errorf("workshop %w", models.ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("registration %w", models.ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", models.ErrNotFound)
	ErrUserExists           = fmt.Errorf("user with this email %w", models.ErrAlreadyExists)
	ErrUnknownSkill         = fmt.Errorf("unknown skill: %w", models.ErrValidation)
)

// Tx — операции хранилища, доступные внутри одной транзакции.
type Tx interface {
	// LockWorkshop читает воркшоп и блокирует его строку до конца транзакции.
	LockWorkshop(ctx context.Context, id int64) (*models.Workshop, error)
	// GetRegistration возвращает регистрацию пользователя на воркшоп в любом статусе.
	GetRegistration(ctx context.Context, userID, workshopID int64) (*models.Registration, error)
	// CountRegistered считает регистрации со статусом REGISTERED.
	CountRegistered(ctx context.Context, workshopID int64) (int, error)
	// ListRegisteredForUser возвращает воркшопы, на которые пользователь записан (REGISTERED),
	// кроме excludeWorkshopID, упорядоченные по началу и id.
	ListRegisteredForUser(ctx context.Context, userID, excludeWorkshopID int64) ([]models.Workshop, error)
	// UpsertRegistration создаёт регистрацию или обновляет статус и время существующей.
	UpsertRegistration(ctx context.Context, reg models.Registration) (int64, error)
	// UpdateRegistrationStatus меняет статус регистрации и время её последнего изменения.
	UpdateRegistrationStatus(ctx context.Context, id int64, status models.Status, at time.Time) error
	// ListMostRecentRegistered возвращает до limit регистраций REGISTERED, начиная с самых поздних.
	ListMostRecentRegistered(ctx context.Context, workshopID int64, limit int) ([]models.Registration, error)
	// UpdateWorkshop сохраняет изменяемые поля воркшопа.
	UpdateWorkshop(ctx context.Context, w models.Workshop) error
	// UserExists сообщает, есть ли пользователь с таким id.
	UserExists(ctx context.Context, id int64) (bool, error)
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type dialect struct {
	numbered   bool
	lockSuffix string
}

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Storage инкапсулирует соединение с базой данных.
type Storage struct {
	DB      *sql.DB
	Driver  string
	dialect dialect
}

// New открывает соединение с базой данных выбранного драйвера.
func New(driver, dsn string) (*Storage, error) {
	const op = "storage.New"

	var (
		sqlDriver string
		d         dialect
	)
	switch driver {
	case config.DriverPostgres:
		sqlDriver = "pgx"
		d = dialect{numbered: true, lockSuffix: " FOR UPDATE"}
	case config.DriverSQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if driver == config.DriverSQLite {
		// Одно соединение сериализует транзакции: SQLite не поддерживает SELECT ... FOR UPDATE.
		db.SetMaxOpenConns(1)
		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB:      db,
		Driver:  driver,
		dialect: d,
	}, nil
}

// Close закрывает соединение с базой данных.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// InTx выполняет fn в одной транзакции. Ошибка fn откатывает транзакцию целиком.
// Внутри fn нельзя обращаться к методам Storage напрямую: для SQLite это взаимоблокировка
// на единственном соединении.
func (s *Storage) InTx(ctx context.Context, fn func(tx Tx) error) error {
	const op = "storage.InTx"

	sqlTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(&txStore{q: sqlTx, d: s.dialect}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) reader() *txStore {
	return &txStore{q: s.DB, d: s.dialect}
}

// txStore реализует Tx поверх *sql.Tx или *sql.DB.
type txStore struct {
	q queryer
	d dialect
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
