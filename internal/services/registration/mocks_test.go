package registration

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

type TxMock struct{ mock.Mock }

func (m *TxMock) LockWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workshop), args.Error(1)
}

func (m *TxMock) GetRegistration(ctx context.Context, userID, workshopID int64) (*models.Registration, error) {
	args := m.Called(ctx, userID, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

func (m *TxMock) CountRegistered(ctx context.Context, workshopID int64) (int, error) {
	args := m.Called(ctx, workshopID)
	return args.Int(0), args.Error(1)
}

func (m *TxMock) ListRegisteredForUser(ctx context.Context, userID, excludeWorkshopID int64) ([]models.Workshop, error) {
	args := m.Called(ctx, userID, excludeWorkshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Workshop), args.Error(1)
}

func (m *TxMock) UpsertRegistration(ctx context.Context, reg models.Registration) (int64, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TxMock) UpdateRegistrationStatus(ctx context.Context, id int64, status models.Status, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *TxMock) ListMostRecentRegistered(ctx context.Context, workshopID int64, limit int) ([]models.Registration, error) {
	args := m.Called(ctx, workshopID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Registration), args.Error(1)
}

func (m *TxMock) UpdateWorkshop(ctx context.Context, w models.Workshop) error {
	return m.Called(ctx, w).Error(0)
}

func (m *TxMock) UserExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// StoreMock выполняет fn сразу с TxMock.
type StoreMock struct {
	mock.Mock
	tx *TxMock
}

func (m *StoreMock) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	m.Called(ctx)
	return fn(m.tx)
}

func (m *StoreMock) GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workshop), args.Error(1)
}

func (m *StoreMock) GetRegistration(ctx context.Context, userID, workshopID int64) (*models.Registration, error) {
	args := m.Called(ctx, userID, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) NotifyWaitlistPromotionCandidates(ctx context.Context, workshopID int64) error {
	return m.Called(ctx, workshopID).Error(0)
}

func (m *NotifierMock) NotifyDemotedParticipants(ctx context.Context, workshopID int64, userIDs []int64) error {
	return m.Called(ctx, workshopID, userIDs).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newMockedService собирает сервис на моках с фиксированным временем.
func newMockedService() (*Service, *StoreMock, *TxMock, *NotifierMock) {
	tx := &TxMock{}
	store := &StoreMock{tx: tx}
	n := &NotifierMock{}
	rec := NewReconciler(n, nil, newNoopLogger())
	rec.now = func() time.Time { return fixedNow }
	svc := New(store, rec, nil, DefaultOverlapTolerance, newNoopLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, store, tx, n
}
