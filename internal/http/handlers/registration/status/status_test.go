package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, userID, workshopID int64) (*models.RegistrationState, error) {
	args := m.Called(ctx, userID, workshopID)
	if res := args.Get(0); res != nil {
		return res.(*models.RegistrationState), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	st := models.StatusWaitlisted
	at := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "waitlisted",
			id:   "2",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, int64(1), int64(2)).Return(&models.RegistrationState{
					Registered:   true,
					Status:       &st,
					RegisteredAt: &at,
					CanCancel:    true,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"registered":true,"status":"WAITLISTED","registered_at":"2026-03-01T08:30:00Z","can_cancel":true,"can_signup":false}}`,
		},
		{
			name: "never registered",
			id:   "2",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, int64(1), int64(2)).Return(&models.RegistrationState{CanSignup: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"registered":false,"can_cancel":false,"can_signup":true}}`,
		},
		{
			name: "workshop not found",
			id:   "2",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, int64(1), int64(2)).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:           "negative id",
			id:             "-2",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"id must be a positive integer"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(handlertest.NewNoopLogger(), svc)

			req := handlertest.NewRequest(t, http.MethodGet, "/api/v1/workshops/"+tt.id+"/registration", tt.id, nil, handlertest.Participant)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
