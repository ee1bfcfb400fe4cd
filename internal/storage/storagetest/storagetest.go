// Package storagetest поднимает хранилище с применёнными миграциями для тестов
// и содержит фабрику тестовых данных.
package storagetest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/magabrotheeeer/workshop-registration/internal/config"
	"github.com/magabrotheeeer/workshop-registration/internal/migrations"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// NewSQLite создаёт хранилище SQLite во временном каталоге теста.
func NewSQLite(t *testing.T) *storage.Storage {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "workshops.db")
	s, err := storage.New(config.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	require.NoError(t, migrations.Run(s.DB, config.DriverSQLite))
	return s
}

// NewPostgres запускает контейнер PostgreSQL и создаёт хранилище поверх него.
// В режиме -short тест пропускается.
func NewPostgres(t *testing.T) *storage.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var s *storage.Storage
	for range 10 {
		s, err = storage.New(config.DriverPostgres, dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() {
		_ = s.Close()
	})

	require.NoError(t, migrations.Run(s.DB, config.DriverPostgres))
	return s
}

// Factory создаёт тестовые данные.
type Factory struct {
	s   *storage.Storage
	seq atomic.Int64
}

// NewFactory создаёт фабрику тестовых данных.
func NewFactory(s *storage.Storage) *Factory {
	return &Factory{s: s}
}

// User создаёт пользователя с ролью role и возвращает его id.
func (f *Factory) User(t *testing.T, role models.Role) int64 {
	t.Helper()
	n := f.seq.Add(1)
	id, err := f.s.CreateUser(context.Background(), models.User{
		Email:     fmt.Sprintf("user%d@example.com", n),
		Name:      fmt.Sprintf("user %d", n),
		Role:      role,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return id
}

// Users создаёт n участников.
func (f *Factory) Users(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for range n {
		ids = append(ids, f.User(t, models.RoleParticipant))
	}
	return ids
}

// Workshop создаёт воркшоп с началом start, длительностью durationMin минут и вместимостью capacity.
func (f *Factory) Workshop(t *testing.T, start time.Time, durationMin, capacity int, skills ...string) int64 {
	t.Helper()
	n := f.seq.Add(1)
	id, err := f.s.CreateWorkshop(context.Background(), models.Workshop{
		Title:       fmt.Sprintf("workshop %d", n),
		Description: "test workshop",
		StartsAt:    start,
		DurationMin: durationMin,
		Capacity:    capacity,
	}, skills)
	require.NoError(t, err)
	return id
}

// Registration записывает регистрацию напрямую, минуя проверки.
func (f *Factory) Registration(t *testing.T, userID, workshopID int64, status models.Status, at time.Time) int64 {
	t.Helper()
	var id int64
	err := f.s.InTx(context.Background(), func(tx storage.Tx) error {
		var err error
		id, err = tx.UpsertRegistration(context.Background(), models.Registration{
			WorkshopID:   workshopID,
			UserID:       userID,
			Status:       status,
			RegisteredAt: at,
		})
		return err
	})
	require.NoError(t, err)
	return id
}

// StatusOf возвращает статус регистрации пользователя на воркшоп.
func (f *Factory) StatusOf(t *testing.T, userID, workshopID int64) models.Status {
	t.Helper()
	reg, err := f.s.GetRegistration(context.Background(), userID, workshopID)
	require.NoError(t, err)
	return reg.Status
}

// CountActive считает активные регистрации пользователя на воркшоп.
func (f *Factory) CountActive(t *testing.T, userID, workshopID int64) int {
	t.Helper()
	var n int
	err := f.s.DB.QueryRow(
		`SELECT COUNT(*) FROM registrations WHERE user_id = `+f.arg(1)+` AND workshop_id = `+f.arg(2)+
			` AND status IN ('REGISTERED', 'WAITLISTED')`,
		userID, workshopID).Scan(&n)
	require.NoError(t, err)
	return n
}

func (f *Factory) arg(n int) string {
	if f.s.Driver == config.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
